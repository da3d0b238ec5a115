package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/cache"
	"github.com/spigell/resume-screener/internal/export"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/filtering"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/pipeline"
	"github.com/spigell/resume-screener/internal/resume"
	"github.com/spigell/resume-screener/internal/roles"
	"github.com/spigell/resume-screener/internal/scoring"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/signals"
	"github.com/spigell/resume-screener/internal/store"
	"github.com/spigell/resume-screener/internal/utils"
)

const (
	PromptShowShortlisted = "Show shortlisted"
	PromptShowRejected    = "Show rejected"
	PromptSummary         = "Show summary"
	PromptExport          = "Export to Excel"
	PromptExit            = "Exit"

	defaultExportPath = "screening-report.xlsx"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowShortlisted, PromptShowRejected, PromptSummary, PromptExport, PromptExit},
}

var screenCmd = &cobra.Command{
	Use:   "screen [files...]",
	Short: "Screen resumes from the source directory or the given files",
	Run: func(cmd *cobra.Command, args []string) {
		screen(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringP("dir", "s", "", "directory with resumes (default resumes)")
	screenCmd.Flags().StringP("role", "r", "", "role profile to screen for, asked interactively when empty")
	screenCmd.Flags().StringP("location", "l", "", "keep only resumes mentioning the location (Any disables)")
	screenCmd.Flags().Float64P("threshold", "t", -1, "pass score 0-100, negative uses the role threshold")
	screenCmd.Flags().StringP("window", "w", "", "date window: "+strings.Join(filtering.WindowLabels, ", ")+" or a number of days")
	screenCmd.Flags().IntP("max", "m", 0, "maximum number of resumes to screen, 0 is unlimited")
	screenCmd.Flags().Bool("strict", false, "also reject on insufficient experience or missing skills")
	screenCmd.Flags().Int("workers", pipeline.DefaultWorkers, "full evaluation workers")
	screenCmd.Flags().String("cache", "", "cache backend: none, memory, dir or sqlite")
	screenCmd.Flags().StringP("export", "o", "", "write an Excel report to this path")
	screenCmd.Flags().String("store", "", "save candidates to this sqlite database")
	screenCmd.Flags().Bool("inbox", false, "fetch resume attachments from the inbox before screening")
	screenCmd.Flags().Duration("watch", 0, "repeat the inbox fetch and screening at this interval")
	screenCmd.Flags().BoolP("yes", "y", false, "do not show the interactive menu after screening")

	viper.BindPFlag("source.dir", screenCmd.Flags().Lookup("dir"))
	viper.BindPFlag("screening.role", screenCmd.Flags().Lookup("role"))
	viper.BindPFlag("screening.location", screenCmd.Flags().Lookup("location"))
	viper.BindPFlag("screening.threshold", screenCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("source.date-window", screenCmd.Flags().Lookup("window"))
	viper.BindPFlag("source.max-files", screenCmd.Flags().Lookup("max"))
	viper.BindPFlag("screening.strict", screenCmd.Flags().Lookup("strict"))
	viper.BindPFlag("screening.workers", screenCmd.Flags().Lookup("workers"))
	viper.BindPFlag("cache.backend", screenCmd.Flags().Lookup("cache"))
	viper.BindPFlag("export.path", screenCmd.Flags().Lookup("export"))
	viper.BindPFlag("store.path", screenCmd.Flags().Lookup("store"))
	viper.BindPFlag("inbox.enabled", screenCmd.Flags().Lookup("inbox"))
}

// screen is the main command for the cli.
func screen(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), viper.GetString("log-file"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	registry, err := roles.Decode(config.Roles)
	if err != nil {
		logger.Fatal("loading role profiles", zap.Error(err))
	}

	interactive := !flagBool(cmd, "yes")
	watch, _ := cmd.Flags().GetDuration("watch")

	role := strings.TrimSpace(config.Screening.Role)
	if role == "" {
		if !interactive {
			logger.Fatal("role is required", zap.Strings("roles", registry.Names()))
		}
		role, err = selectRole(registry)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	profile, err := registry.Get(role)
	if err != nil {
		logger.Fatal("resolving role", zap.Error(err), zap.Strings("roles", registry.Names()))
	}
	threshold := resolveThreshold(config.Screening, profile)

	resultCache, closer, err := cache.Open(ctx, config.Cache.Backend, config.Cache.Path)
	if err != nil {
		logger.Fatal("opening the cache", zap.Error(err))
	}
	defer closer.Close()

	var candidates *store.SQLite
	if config.Store.Path != "" {
		candidates, err = store.OpenSQLite(ctx, config.Store.Path, logger)
		if err != nil {
			logger.Fatal("opening the candidates store", zap.Error(err))
		}
		defer candidates.Close()
	}

	extractors := extract.New()
	p := newPipeline(config, registry, extractors, resultCache, logger)

	iteration := func(ctx context.Context) error {
		if config.Inbox.Enabled {
			if err := fetchInbox(ctx, config, logger); err != nil {
				return err
			}
		}

		files, err := collectFiles(ctx, config, args, extractors, logger)
		if err != nil {
			return err
		}
		if files.Len() == 0 {
			logger.Info("nothing to screen", zap.String("reason", "no resumes left after filters"))
			return nil
		}

		report, err := p.Run(ctx, pipeline.Request{
			Paths:     files.Paths(),
			Role:      profile.Name,
			Threshold: threshold,
			Location:  config.Screening.Location,
		})
		if report == nil {
			return err
		}
		if err != nil {
			logger.Warn("screening interrupted, showing partial results", zap.Error(err))
		}

		if err := export.Lines(os.Stdout, report.Results); err != nil {
			return fmt.Errorf("printing results: %w", err)
		}

		if candidates != nil {
			if err := store.SaveAll(ctx, candidates, report.Results); err != nil {
				logger.Error("saving candidates", zap.Error(err))
			}
		}

		if config.Export.Path != "" {
			if err := writeReport(config.Export.Path, report, config, logger); err != nil {
				return err
			}
		}

		if !interactive || watch > 0 || ctx.Err() != nil {
			return nil
		}
		return menu(report, config, logger)
	}

	if err := utils.Every(ctx, watch, iteration); err != nil && !errors.Is(err, errExit) {
		if errors.Is(err, context.Canceled) {
			logger.Info("exiting", zap.String("reason", "interrupted"))
			return
		}
		logger.Fatal("exiting", zap.Error(err))
	}
}

func menu(report *pipeline.Report, config *Config, logger *zap.Logger) error {
	for {
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := handleAction(action, report, config, logger); err != nil {
			return err
		}
	}
}

func handleAction(action string, report *pipeline.Report, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptShowShortlisted:
		return printResults(os.Stdout, report.Shortlisted(), logger)
	case PromptShowRejected:
		return printResults(os.Stdout, report.Rejected(), logger)
	case PromptSummary:
		pretty, _ := json.MarshalIndent(report.Stats, "", "  ")
		logger.Info(string(pretty), zap.String("role", report.Role), zap.Float64("threshold", report.Threshold))
		return nil
	case PromptExport:
		path := config.Export.Path
		if path == "" {
			path = defaultExportPath
		}
		return writeReport(path, report, config, logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func printResults(w io.Writer, results []screening.MatchResult, logger *zap.Logger) error {
	if len(results) == 0 {
		logger.Info("no candidates in this list")
		return nil
	}

	pretty, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}

func writeReport(path string, report *pipeline.Report, config *Config, logger *zap.Logger) error {
	written, err := export.WriteXLSX(path, report, export.Params{
		Generated: time.Now(),
		Window:    config.Source.DateWindow,
	})
	if err != nil {
		return fmt.Errorf("exporting report: %w", err)
	}
	logger.Info("report exported", zap.String("filename", written))
	return nil
}

func selectRole(registry *roles.Registry) (string, error) {
	rolePrompt := promptui.Select{
		Label: "Choose a role and press ENTER",
		Items: registry.Names(),
		Size:  10,
	}
	_, role, err := rolePrompt.Run()
	return role, err
}

func resolveThreshold(cfg *ScreeningConfig, profile roles.Profile) float64 {
	if cfg == nil || cfg.Threshold < 0 {
		return profile.Threshold
	}
	return cfg.Threshold
}

func newPipeline(config *Config, registry *roles.Registry, extractors *extract.Registry, c cache.Cache, lg *zap.Logger) *pipeline.Pipeline {
	sc := config.Screening
	lexicon := signals.DefaultLexicon(registry.Skills()...)

	return pipeline.New(extractors, signals.NewExtractor(lexicon), registry,
		pipeline.WithCache(c),
		pipeline.WithLogger(lg),
		pipeline.WithWorkers(sc.Workers),
		pipeline.WithStage1Workers(sc.Stage1Workers),
		pipeline.WithPrefixChars(sc.PrefixChars),
		pipeline.WithMaxTextChars(sc.MaxTextChars),
		pipeline.WithMinTextChars(sc.MinTextChars),
		pipeline.WithMaxFileSize(int64(sc.MaxFileSizeMB*(1<<20))),
		pipeline.WithStrict(sc.Strict),
		pipeline.WithScorer(scoringFor(config, lg)),
		pipeline.WithProgress(func(done, total int, file string) {
			lg.Debug("progress", zap.Int("done", done), zap.Int("total", total), zap.String(logger.FieldFile, file))
		}),
	)
}

func scoringFor(config *Config, logger *zap.Logger) scoring.Scorer {
	if config.Scoring == nil {
		return scoring.Scorer{}
	}
	if err := config.Scoring.Bonus.Validate(); err != nil {
		logger.Fatal("invalid scoring bonus", zap.Error(err))
	}
	return scoring.Scorer{Bonus: config.Scoring.Bonus}
}

// collectFiles returns the explicit files or scans the source directory,
// then applies the metadata filters.
func collectFiles(ctx context.Context, config *Config, args []string, extractors *extract.Registry, lg *zap.Logger) (*resume.Files, error) {
	steps := filtering.Defaults()
	files := &resume.Files{}

	if len(args) > 0 {
		// every explicit file gets a result, unsupported ones are rejected as unreadable
		filtering.DisableByName(steps, "extension", "explicit files")
		for _, path := range args {
			file, err := resume.Stat(path)
			if err != nil {
				lg.Warn("cannot stat file, it will be rejected", zap.String(logger.FieldFile, path), zap.Error(err))
				file = &resume.File{Path: path, Name: filepath.Base(path)}
			}
			files.Items = append(files.Items, file)
		}
	} else {
		scanned, stats, err := resume.Scan(config.Source.Dir, true)
		if err != nil {
			return nil, fmt.Errorf("scanning resumes: %w", err)
		}
		lg.Info("scanned source directory",
			zap.String("dir", config.Source.Dir),
			zap.Int("scanned", stats.Scanned),
			zap.Int("matched", stats.Matched),
			zap.Int("failed", stats.Failed),
		)
		files = scanned
	}

	formats := config.Source.Formats
	if len(formats) == 0 {
		formats = extractors.Formats()
	}

	filtered, err := filtering.Run(ctx, &filtering.Config{
		Formats:  formats,
		Window:   config.Source.DateWindow,
		MaxFiles: config.Source.MaxFiles,
	}, filtering.Deps{Logger: lg}, steps, files)
	if err != nil {
		return nil, fmt.Errorf("filtering resumes: %w", err)
	}

	for _, status := range filtering.Describe(steps) {
		lg.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return filtered, nil
}

func flagBool(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}
