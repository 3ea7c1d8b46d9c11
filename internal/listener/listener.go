package listener

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/capture"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/logging"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/metrics"
)

// ErrRetriesExhausted is returned by Run when every reconnection attempt
// in the configured budget has failed.
var ErrRetriesExhausted = errors.New("reconnection attempts exhausted")

// cleanupTimeout bounds the best-effort UNLISTEN and close on shutdown,
// which run on a fresh context because the run context is already canceled.
const cleanupTimeout = 5 * time.Second

// Conn is the slice of pgx.Conn the listener needs. The LISTEN subscription
// is bound to a single session, so a pool is never used here.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// DialFunc opens a new database connection.
type DialFunc func(ctx context.Context) (Conn, error)

// Dial returns a DialFunc for the given pgx connection string.
func Dial(connString string) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return conn, nil
	}
}

// Handler consumes one raw notification payload. Implementations must not
// return; any failure is theirs to absorb.
type Handler interface {
	HandleNotification(ctx context.Context, payload string)
}

// Config configures the reconnection policy.
type Config struct {
	// MaxAttempts is the ceiling on consecutive failed reconnection
	// attempts before the listener gives up.
	MaxAttempts int
	// Delay is the fixed wait before each reconnection attempt.
	Delay time.Duration
}

// Listener owns the single database connection subscribed to the
// workflow_changed channel and feeds every notification to the handler,
// one at a time, in arrival order.
type Listener struct {
	dial    DialFunc
	handler Handler
	logger  *logging.Logger

	maxAttempts int
	delay       time.Duration

	state     atomic.Int32
	sessionID string
}

// New creates a Listener.
func New(dial DialFunc, handler Handler, cfg Config, logger *logging.Logger) *Listener {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}

	return &Listener{
		dial:        dial,
		handler:     handler,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		delay:       cfg.Delay,
	}
}

// State returns the current connection state. Safe for concurrent use.
func (l *Listener) State() State {
	return State(l.state.Load())
}

func (l *Listener) setState(s State) {
	l.state.Store(int32(s))
	metrics.ConnectionState.Set(float64(s))
}

// Run connects, installs the capture objects, and consumes notifications
// until ctx is canceled or the reconnection budget is exhausted. The initial
// connect is not retried: a broken configuration should fail fast.
func (l *Listener) Run(ctx context.Context) error {
	l.setState(StateConnecting)

	conn, err := l.connect(ctx)
	if err != nil {
		l.setState(StateFailed)
		return err
	}
	l.markListening()

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.shutdown(conn)
				return nil
			}

			l.setState(StateDisconnected)
			l.logger.Warn("database connection lost", logging.Error(err))
			l.closeQuietly(conn)

			conn, err = l.reconnect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				l.setState(StateFailed)
				l.logger.Error("giving up after exhausting reconnection attempts",
					logging.Attempt(l.maxAttempts), logging.Error(err))
				return err
			}
			l.markListening()
			continue
		}

		l.handler.HandleNotification(ctx, notification.Payload)
	}
}

// connect dials the database, installs the trigger and function, and
// subscribes to the channel. Any failure closes the fresh connection.
func (l *Listener) connect(ctx context.Context) (Conn, error) {
	conn, err := l.dial(ctx)
	if err != nil {
		return nil, err
	}

	if err := capture.Install(ctx, conn); err != nil {
		l.closeQuietly(conn)
		return nil, err
	}

	if _, err := conn.Exec(ctx, "listen "+capture.Channel); err != nil {
		l.closeQuietly(conn)
		return nil, fmt.Errorf("failed to listen on %s: %w", capture.Channel, err)
	}

	return conn, nil
}

// reconnect waits the configured delay, then retries connect with the same
// fixed delay before every attempt. A success hands back a subscribed
// connection and resets the budget for the next outage.
func (l *Listener) reconnect(ctx context.Context) (Conn, error) {
	l.setState(StateReconnecting)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(l.delay):
	}

	var conn Conn
	attempt := 0
	err := retry.Do(
		func() error {
			attempt++
			metrics.ReconnectAttempts.Inc()
			l.logger.Info("reconnecting to database",
				logging.Attempt(attempt), "max_attempts", l.maxAttempts)

			var err error
			conn, err = l.connect(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(l.maxAttempts)),
		retry.Delay(l.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Warn("reconnect attempt failed",
				logging.Attempt(int(n)+1), logging.Error(err))
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %d attempts failed, last error: %v",
			ErrRetriesExhausted, l.maxAttempts, err)
	}

	return conn, nil
}

func (l *Listener) markListening() {
	l.sessionID = uuid.NewString()
	l.setState(StateListening)
	l.logger.Info("listening for workflow changes",
		logging.SessionID(l.sessionID),
		logging.Channel(capture.Channel),
		logging.Table(capture.TableName),
	)
}

// shutdown unsubscribes and closes the connection on graceful stop.
// Both steps are best effort; a failed goodbye is logged and swallowed.
func (l *Listener) shutdown(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	if _, err := conn.Exec(ctx, "unlisten "+capture.Channel); err != nil {
		l.logger.Warn("unlisten failed during shutdown", logging.Error(err))
	}
	if err := conn.Close(ctx); err != nil {
		l.logger.Warn("connection close failed during shutdown", logging.Error(err))
	}

	l.setState(StateDisconnected)
	l.logger.Info("listener stopped", logging.SessionID(l.sessionID))
}

func (l *Listener) closeQuietly(conn Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	_ = conn.Close(ctx)
}
