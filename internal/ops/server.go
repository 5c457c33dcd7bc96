// Package ops serves the operational HTTP endpoints: health, readiness and
// prometheus metrics.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fwcd/socha-client-2020/internal/health"
	"github.com/fwcd/socha-client-2020/internal/log"
)

// Server exposes the ops endpoints on a dedicated listener.
type Server struct {
	http *http.Server
}

// NewServer builds the ops server on addr.
func NewServer(addr string, manager *health.Manager) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           Router(manager),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Router builds the ops route tree.
func Router(manager *health.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/healthz", manager.ServeHealth)
	r.Get("/readyz", manager.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	return otelhttp.NewHandler(r, "ops")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := log.WithComponent("ops")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("event", "ops.listening").Str("addr", s.http.Addr).Msg("ops server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Str("event", "ops.shutdown_error").Msg("ops server shutdown failed")
		return err
	}
	logger.Info().Str("event", "ops.stopped").Msg("ops server stopped")
	return nil
}
