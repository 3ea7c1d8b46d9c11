package logging

import "log/slog"

// Common field names for consistent logging across the watcher.
const (
	FieldService    = "service"
	FieldChannel    = "channel"
	FieldTable      = "table"
	FieldAction     = "action"
	FieldWorkflowID = "workflow_id"
	FieldSessionID  = "session_id"
	FieldAttempt    = "attempt"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldURL        = "url"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Channel returns a slog attribute for the NOTIFY channel name.
func Channel(name string) slog.Attr {
	return slog.String(FieldChannel, name)
}

// Table returns a slog attribute for the watched table name.
func Table(name string) slog.Attr {
	return slog.String(FieldTable, name)
}

// Action returns a slog attribute for the change action.
func Action(action string) slog.Attr {
	return slog.String(FieldAction, action)
}

// WorkflowID returns a slog attribute for the workflow ID.
func WorkflowID(id string) slog.Attr {
	return slog.String(FieldWorkflowID, id)
}

// SessionID returns a slog attribute for the listen session ID.
func SessionID(id string) slog.Attr {
	return slog.String(FieldSessionID, id)
}

// Attempt returns a slog attribute for a reconnect attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int(FieldAttempt, n)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// URL returns a slog attribute for the webhook URL.
func URL(url string) slog.Attr {
	return slog.String(FieldURL, url)
}
