package capture

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Names of the database objects the watcher installs on the n8n database.
const (
	Channel      = "workflow_changed"
	FunctionName = "notify_workflow_change"
	TriggerName  = "n8n_workflow_change_trigger"
	TableName    = "workflow_entity"
)

// Execer is the slice of pgx.Conn required to install the capture objects.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// The trigger function serializes the changed row into the notification
// payload. DELETE reports the old row; INSERT and UPDATE report the new one.
// n8n names its timestamp column in camelCase, hence the quoted "updatedAt".
const createFunctionSQL = `
CREATE OR REPLACE FUNCTION notify_workflow_change() RETURNS trigger AS $$
DECLARE
    row_data RECORD;
    payload TEXT;
BEGIN
    IF (TG_OP = 'DELETE') THEN
        row_data := OLD;
    ELSE
        row_data := NEW;
    END IF;

    payload := json_build_object(
        'action', TG_OP,
        'workflow_id', row_data.id,
        'workflow_name', row_data.name,
        'active', row_data.active,
        'updated_at', row_data."updatedAt",
        'timestamp', now()
    )::text;

    PERFORM pg_notify('workflow_changed', payload);

    RETURN COALESCE(NEW, OLD);
END;
$$ LANGUAGE plpgsql
`

const dropTriggerSQL = `DROP TRIGGER IF EXISTS n8n_workflow_change_trigger ON workflow_entity`

const createTriggerSQL = `
CREATE TRIGGER n8n_workflow_change_trigger
    AFTER INSERT OR UPDATE OR DELETE ON workflow_entity
    FOR EACH ROW EXECUTE FUNCTION notify_workflow_change()
`

// Install creates or replaces the notify function and recreates the trigger
// on workflow_entity. It is safe to run on every connect: an existing
// installation is replaced in place and fires exactly once per row change.
func Install(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, createFunctionSQL); err != nil {
		return fmt.Errorf("failed to create notify function: %w", err)
	}
	if _, err := db.Exec(ctx, dropTriggerSQL); err != nil {
		return fmt.Errorf("failed to drop existing trigger: %w", err)
	}
	if _, err := db.Exec(ctx, createTriggerSQL); err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}
	return nil
}
