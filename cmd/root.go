package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/capture"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/config"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/dispatcher"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/listener"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/logging"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/server"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/webhook"
)

const version = "1.0.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "n8n-webhook-watcher",
	Short: "Relay n8n workflow changes from PostgreSQL to a webhook",
	Long: `n8n-webhook-watcher watches an n8n PostgreSQL database for workflow
changes and forwards each one to a configured webhook endpoint.

A trigger installed on the workflow_entity table emits a NOTIFY for every
insert, update, and delete. The watcher holds a dedicated LISTEN connection,
translates each notification into a JSON payload, and POSTs it to the
webhook. Running it with no subcommand starts the relay.`,
	Version:      version,
	RunE:         runWatch,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if cfg.Debug {
		// The debug flag implies debug-level output regardless of the
		// configured level, otherwise payload logging would be silent.
		level = slog.LevelDebug
	}
	logger := logging.New(level, cfg.Logging.Format)
	logging.SetDefault(logger)

	logger.Info("starting n8n-webhook-watcher",
		slog.String("version", version),
		logging.URL(cfg.Webhook.URL),
		logging.Channel(capture.Channel),
		logging.Table(capture.TableName),
	)

	client := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout,
		cfg.Webhook.AuthHeaderName, cfg.Webhook.AuthHeaderValue)
	d := dispatcher.New(client, logger, cfg.Debug)

	l := listener.New(
		listener.Dial(cfg.Database.ConnString()),
		d,
		listener.Config{
			MaxAttempts: cfg.Reconnect.MaxAttempts,
			Delay:       cfg.Reconnect.Delay,
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ops *server.Server
	if cfg.Server.Port > 0 {
		ops = server.New(cfg.Server, l, logger)
		ops.Start()
	}

	runErr := l.Run(ctx)

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops server shutdown failed", logging.Error(err))
		}
	}

	if runErr != nil {
		logger.Error("watcher stopped with error", logging.Error(runErr))
		return runErr
	}

	logger.Info("watcher stopped")
	return nil
}
