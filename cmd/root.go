package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"escrowbot/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

// Execute runs the escrowbot command line
func Execute() error {
	root := &cobra.Command{
		Use:           "escrowbot",
		Short:         "Custodial escrow betting bot for Solana",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(logLevel, os.Getenv("ENVIRONMENT"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(runCmd(), migrateCmd(), deriveCmd())

	err := root.Execute()
	if err != nil {
		log.WithError(err).Error("Command failed")
	}
	return err
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and process commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
}

// runBot runs the bot until SIGINT or SIGTERM
func runBot() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	cfg := config.Get()
	if err := configureLogging(logLevelFor(logLevel, cfg), cfg.Environment); err != nil {
		return err
	}
	return Run(ctx, cfg)
}

// logLevelFor prefers an explicit --log-level over the configured level
func logLevelFor(flagLevel string, cfg *config.Config) string {
	if flagLevel != "" {
		return flagLevel
	}
	return cfg.LogLevel
}

func configureLogging(level, environment string) error {
	if level == "" {
		level = "info"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(parsed)

	if environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
