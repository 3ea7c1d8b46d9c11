package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/config"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/models"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/webhook"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Send a synthetic test event to the webhook",
	Long: `Builds a webhook payload for a synthetic workflow change and delivers
it to the configured endpoint. Exits non-zero when the endpoint is
unreachable or rejects the delivery.

The test event carries a workflow_id prefixed with "check-" so receivers
can recognize and discard it.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Webhook.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	event := &models.ChangeEvent{
		Action:       models.ActionUpdate,
		WorkflowID:   "check-" + uuid.NewString(),
		WorkflowName: "connectivity check",
		Active:       false,
		UpdatedAt:    now,
		Timestamp:    now,
	}

	client := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout,
		cfg.Webhook.AuthHeaderName, cfg.Webhook.AuthHeaderValue)

	result, err := client.Send(context.Background(), models.NewWebhookPayload(event))
	if err != nil {
		return fmt.Errorf("webhook unreachable: %w", err)
	}
	if !result.Success() {
		return fmt.Errorf("webhook rejected the test event: status %d: %s",
			result.StatusCode, result.Body)
	}

	fmt.Printf("webhook accepted the test event (status %d in %s)\n",
		result.StatusCode, result.Duration.Round(time.Millisecond))
	return nil
}
