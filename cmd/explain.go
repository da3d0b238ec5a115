package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/pipeline"
	"github.com/spigell/resume-screener/internal/roles"
)

var explainCmd = &cobra.Command{
	Use:   "explain FILE",
	Short: "Fully evaluate a single resume and print the result record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), viper.GetString("log-file"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		// flags of this command are not bound to viper, the screen command owns those keys
		flags := cmd.Flags()
		if flags.Changed("role") {
			config.Screening.Role, _ = flags.GetString("role")
		}
		if flags.Changed("location") {
			config.Screening.Location, _ = flags.GetString("location")
		}
		if flags.Changed("threshold") {
			config.Screening.Threshold, _ = flags.GetFloat64("threshold")
		}

		registry, err := roles.Decode(config.Roles)
		if err != nil {
			logger.Fatal("loading role profiles", zap.Error(err))
		}

		profile, err := registry.Get(config.Screening.Role)
		if err != nil {
			logger.Fatal("resolving role", zap.Error(err), zap.Strings("roles", registry.Names()))
		}

		p := newPipeline(config, registry, extract.New(), cache.Nop{}, logger)
		result, err := p.EvaluateFile(context.Background(), args[0], pipeline.Request{
			Role:      profile.Name,
			Threshold: resolveThreshold(config.Screening, profile),
			Location:  config.Screening.Location,
		})
		if err != nil {
			logger.Fatal("evaluating resume", zap.Error(err))
		}

		pretty, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(pretty))
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)

	explainCmd.Flags().StringP("role", "r", "", "role profile to evaluate against")
	explainCmd.Flags().StringP("location", "l", "", "location the resume must mention")
	explainCmd.Flags().Float64P("threshold", "t", -1, "pass score 0-100, negative uses the role threshold")
}
