// Package server exposes the operational HTTP surface of the watcher:
// liveness, readiness keyed to the listener state, and Prometheus metrics.
// The relay itself never serves HTTP traffic; this server is auxiliary and
// its failure does not stop event delivery.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cedric-bidet/n8n-webhook-watcher/internal/config"
	"github.com/cedric-bidet/n8n-webhook-watcher/internal/logging"
)

type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

func New(cfg config.ServerConfig, reporter StateReporter, logger *logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      NewRouter(NewHandler(reporter)),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Start serves in a background goroutine. Listen errors are logged, not
// fatal: losing the ops endpoints must not take the relay down with it.
func (s *Server) Start() {
	go func() {
		s.logger.Info("ops server listening", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("ops server error", logging.Error(err))
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
