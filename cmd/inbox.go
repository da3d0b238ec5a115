package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/inbox"
	"github.com/spigell/resume-screener/internal/logger"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Download resume attachments from the inbox into the source directory",
	Run: func(_ *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), viper.GetString("log-file"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		if err := fetchInbox(context.Background(), config, logger); err != nil {
			logger.Fatal("fetching the inbox", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(inboxCmd)

	inboxCmd.Flags().String("mailbox", "", "directory with .eml files or a Maildir")
	inboxCmd.Flags().Int("max-resumes", 0, "maximum number of resumes to download")

	viper.BindPFlag("inbox.dir", inboxCmd.Flags().Lookup("mailbox"))
	viper.BindPFlag("inbox.max", inboxCmd.Flags().Lookup("max-resumes"))
}

// fetchInbox saves new attachments next to the other resumes so the next scan picks them up.
func fetchInbox(ctx context.Context, config *Config, logger *zap.Logger) error {
	if config.Inbox.Dir == "" {
		return fmt.Errorf("inbox.dir is not configured")
	}

	dest := config.Inbox.DownloadDir
	if dest == "" {
		dest = config.Source.Dir
	}

	var fetcher inbox.Fetcher = inbox.NewMaildirFetcher(config.Inbox.Dir, dest, logger)
	fetched, err := fetcher.Fetch(ctx, config.Inbox.Max)
	if err != nil {
		return fmt.Errorf("fetching resumes: %w", err)
	}

	logger.Info("downloaded resumes from the inbox",
		zap.Int("emails_checked", fetched.Checked),
		zap.Strings("files", fetched.Files),
	)
	return nil
}
