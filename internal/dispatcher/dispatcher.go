package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/logging"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/metrics"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/models"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/webhook"
)

// Sender delivers a webhook payload. Implemented by webhook.Client.
type Sender interface {
	Send(ctx context.Context, payload *models.WebhookPayload) (*webhook.Result, error)
}

// Dispatcher converts raw channel notifications into webhook deliveries.
// Every outcome is terminal: malformed payloads are dropped, failed or
// rejected deliveries are logged and never retried. Nothing that happens
// here may disturb the listen loop.
type Dispatcher struct {
	sender Sender
	logger *logging.Logger
	debug  bool
}

// New creates a Dispatcher. When debug is true the full serialized payload
// of every delivery is logged.
func New(sender Sender, logger *logging.Logger, debug bool) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: logger,
		debug:  debug,
	}
}

// HandleNotification processes one raw notification payload end to end.
func (d *Dispatcher) HandleNotification(ctx context.Context, raw string) {
	metrics.NotificationsTotal.Inc()

	event, err := models.ParseChangeEvent([]byte(raw))
	if err != nil {
		metrics.NotificationsDropped.Inc()
		d.logger.Warn("dropping malformed notification", logging.Error(err))
		return
	}

	d.logger.Info("workflow change received",
		logging.Action(string(event.Action)),
		logging.WorkflowID(event.WorkflowID),
	)

	payload := models.NewWebhookPayload(event)

	if d.debug {
		if data, err := json.Marshal(payload); err == nil {
			d.logger.Debug("webhook payload", "payload", string(data))
		}
	}

	result, err := d.sender.Send(ctx, payload)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues(metrics.OutcomeFailed).Inc()
		d.logger.Error("webhook delivery failed",
			logging.Action(string(event.Action)),
			logging.WorkflowID(event.WorkflowID),
			logging.Error(err),
		)
		return
	}

	metrics.WebhookDuration.Observe(result.Duration.Seconds())

	if !result.Success() {
		metrics.WebhookDeliveries.WithLabelValues(metrics.OutcomeRejected).Inc()
		d.logger.Warn("webhook rejected delivery",
			logging.Action(string(event.Action)),
			logging.WorkflowID(event.WorkflowID),
			logging.Status(result.StatusCode),
			"response", result.Body,
		)
		return
	}

	metrics.WebhookDeliveries.WithLabelValues(metrics.OutcomeDelivered).Inc()
	d.logger.Info("webhook delivered",
		logging.Action(string(event.Action)),
		logging.WorkflowID(event.WorkflowID),
		logging.Status(result.StatusCode),
		logging.Duration(result.Duration.Milliseconds()),
	)
}
