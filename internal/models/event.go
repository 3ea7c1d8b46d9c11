package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Source identifies this service in outbound webhook payloads.
const Source = "n8n-webhook-watcher"

// Action represents the row-level operation reported by the database trigger.
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// IsValid checks if the action is one reported by the trigger.
func (a Action) IsValid() bool {
	switch a {
	case ActionInsert, ActionUpdate, ActionDelete:
		return true
	default:
		return false
	}
}

// Lower returns the action in the lowercase form used in webhook payloads.
func (a Action) Lower() string {
	return strings.ToLower(string(a))
}

// ChangeEvent is the JSON payload published on the workflow_changed channel
// by the notify_workflow_change trigger function. Timestamps are carried as
// the strings the database rendered; the watcher never reinterprets them.
type ChangeEvent struct {
	Action       Action `json:"action"`
	WorkflowID   string `json:"workflow_id"`
	WorkflowName string `json:"workflow_name"`
	Active       bool   `json:"active"`
	UpdatedAt    string `json:"updated_at"`
	Timestamp    string `json:"timestamp"`
}

// Validate validates a ChangeEvent
func (e *ChangeEvent) Validate() error {
	if !e.Action.IsValid() {
		return fmt.Errorf("invalid action: %q", e.Action)
	}
	if e.WorkflowID == "" {
		return fmt.Errorf("workflow_id is required")
	}
	return nil
}

// ParseChangeEvent decodes and validates a raw notification payload.
func ParseChangeEvent(raw []byte) (*ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("decode change event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid change event: %w", err)
	}
	return &event, nil
}

// WorkflowSummary is the nested workflow object of a webhook payload.
type WorkflowSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	UpdatedAt string `json:"updated_at"`
}

// WebhookPayload is the body POSTed to the configured webhook for each
// change event. It is derived, sent once, and never persisted.
type WebhookPayload struct {
	Action    string          `json:"action"`
	Workflow  WorkflowSummary `json:"workflow"`
	Timestamp string          `json:"timestamp"`
	Source    string          `json:"source"`
}

// NewWebhookPayload maps a validated ChangeEvent to the outbound payload.
func NewWebhookPayload(event *ChangeEvent) *WebhookPayload {
	return &WebhookPayload{
		Action: event.Action.Lower(),
		Workflow: WorkflowSummary{
			ID:        event.WorkflowID,
			Name:      event.WorkflowName,
			Active:    event.Active,
			UpdatedAt: event.UpdatedAt,
		},
		Timestamp: event.Timestamp,
		Source:    Source,
	}
}
