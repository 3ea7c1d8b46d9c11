package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Notification metrics
	NotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watcher_notifications_total",
			Help: "Total number of notifications received on the workflow_changed channel",
		},
	)

	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watcher_notifications_dropped_total",
			Help: "Total number of notifications dropped as malformed",
		},
	)

	// Webhook delivery metrics
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watcher_webhook_deliveries_total",
			Help: "Total number of webhook delivery attempts by outcome",
		},
		[]string{"outcome"},
	)

	WebhookDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watcher_webhook_duration_seconds",
			Help:    "Duration of webhook POST requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Connection metrics
	ReconnectAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watcher_reconnect_attempts_total",
			Help: "Total number of database reconnection attempts",
		},
	)

	ConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watcher_connection_state",
			Help: "Current connection state (0=disconnected 1=connecting 2=listening 3=reconnecting 4=failed)",
		},
	)
)

// Webhook delivery outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)
