package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/capture"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/config"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/listener"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the change-capture trigger and exit",
	Long: `Connects to the n8n database, installs the notify function and the
workflow_entity trigger, and exits.

The watcher installs the trigger itself on every connect; this command
exists for provisioning ahead of time and for verifying database
permissions without starting the relay.`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dial := listener.Dial(cfg.Database.ConnString())
	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(context.Background())

	if err := capture.Install(ctx, conn); err != nil {
		return err
	}

	fmt.Printf("installed trigger %s on table %s, notifying channel %s\n",
		capture.TriggerName, capture.TableName, capture.Channel)
	return nil
}
