package opsserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// Check is one named readiness probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// RouterOption configures Router.
type RouterOption func(*router)

type router struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithRouterLogger sets the logger used for failed checks.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCheckTimeout bounds each readiness check.
func WithCheckTimeout(d time.Duration) RouterOption {
	return func(r *router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Router mounts health and metrics endpoints. Metrics are served from gatherer.
func Router(gatherer prometheus.Gatherer, checks []Check, opts ...RouterOption) http.Handler {
	cfg := router{logger: slog.Default(), timeout: 2 * time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/readyz", readiness(cfg, checks))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func readiness(cfg router, checks []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			ctx, cancel := context.WithTimeout(r.Context(), cfg.timeout)
			err := c.Fn(ctx)
			cancel()
			if err != nil {
				cfg.logger.ErrorContext(r.Context(), "readiness check failed",
					logger.Component("opsserver"),
					slog.String("check", c.Name),
					logger.Error(err),
				)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
