package cmd

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/normalize"
	"github.com/spigell/resume-screener/internal/pipeline"
	"github.com/spigell/resume-screener/internal/scoring"
)

const (
	app       = "resume-screener"
	envPrefix = "SCREENER"
)

type Config struct {
	Source    *SourceConfig    `mapstructure:"source"`
	Screening *ScreeningConfig `mapstructure:"screening"`
	Cache     *CacheConfig     `mapstructure:"cache"`
	Store     *StoreConfig     `mapstructure:"store"`
	Export    *ExportConfig    `mapstructure:"export"`
	Inbox     *InboxConfig     `mapstructure:"inbox"`
	Scoring   *ScoringConfig   `mapstructure:"scoring"`
	// Roles overrides or extends the built-in role profiles by name.
	Roles     map[string]any   `mapstructure:"roles"`
}

type SourceConfig struct {
	Dir        string   `mapstructure:"dir"`
	Formats    []string `mapstructure:"formats"`
	MaxFiles   int      `mapstructure:"max-files"`
	DateWindow string   `mapstructure:"date-window"`
}

type ScreeningConfig struct {
	Role          string  `mapstructure:"role"`
	Location      string  `mapstructure:"location"`
	Threshold     float64 `mapstructure:"threshold"`
	Strict        bool    `mapstructure:"strict"`
	Workers       int     `mapstructure:"workers"`
	Stage1Workers int     `mapstructure:"stage1-workers"`
	PrefixChars   int     `mapstructure:"prefix-chars"`
	MaxTextChars  int     `mapstructure:"max-text-chars"`
	MinTextChars  int     `mapstructure:"min-text-chars"`
	MaxFileSizeMB float64 `mapstructure:"max-file-size-mb"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type ExportConfig struct {
	Path string `mapstructure:"path"`
}

type InboxConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Dir         string `mapstructure:"dir"`
	DownloadDir string `mapstructure:"download-dir"`
	Max         int    `mapstructure:"max"`
}

type ScoringConfig struct {
	Bonus scoring.Bonus `mapstructure:"bonus"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener scores resumes against role profiles and shortlists the best matches",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))

	setDefaults(viper.GetViper())
}

// setDefaults registers every key so that environment variables reach nested sections.
func setDefaults(v *viper.Viper) {
	v.SetDefault("source.dir", "resumes")
	v.SetDefault("source.formats", []string{})
	v.SetDefault("source.max-files", 0)
	v.SetDefault("source.date-window", "All")

	v.SetDefault("screening.role", "")
	v.SetDefault("screening.location", "")
	// negative means the role threshold
	v.SetDefault("screening.threshold", -1)
	v.SetDefault("screening.strict", false)
	v.SetDefault("screening.workers", pipeline.DefaultWorkers)
	v.SetDefault("screening.stage1-workers", 1)
	v.SetDefault("screening.prefix-chars", normalize.PrefixChars)
	v.SetDefault("screening.max-text-chars", normalize.MaxTextChars)
	v.SetDefault("screening.min-text-chars", pipeline.DefaultMinTextChars)
	v.SetDefault("screening.max-file-size-mb", 3)

	v.SetDefault("cache.backend", cache.BackendDir)
	v.SetDefault("cache.path", cache.DefaultDir)

	v.SetDefault("store.path", "")
	v.SetDefault("export.path", "")

	v.SetDefault("inbox.enabled", false)
	v.SetDefault("inbox.dir", "")
	v.SetDefault("inbox.download-dir", "")
	v.SetDefault("inbox.max", 10)

	v.SetDefault("scoring.bonus.certifications", 0)
	v.SetDefault("scoring.bonus.projects", 0)
	v.SetDefault("scoring.bonus.objective", 0)
}

func initConfig() {
	// .env is optional, values already present in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing default config is fine, an explicit or broken one is not.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
