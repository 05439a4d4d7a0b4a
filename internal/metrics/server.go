// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes /metrics over HTTP on a background listener. It is
// an auxiliary component: its failures are logged, never fatal to a
// running test.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds a Server bound to addr. Call Start to begin
// listening; a zero-value addr disables the exporter entirely and
// Start becomes a no-op.
func NewServer(addr string, logger *slog.Logger) *Server {
	if addr == "" {
		return nil
	}
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger.With("component", "metrics"),
	}
}

// Start begins serving in the background. A nil receiver is a no-op,
// so callers can always invoke Start unconditionally.
func (s *Server) Start() {
	if s == nil {
		return
	}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server stopped", "error", err)
		}
	}()
}

// Stop shuts the exporter down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
