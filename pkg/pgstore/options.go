package pgstore

import (
	"log/slog"

	"github.com/dmitrymomot/tenantkit/pkg/metrics"
)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	kind    string
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records optimistic conflicts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithKind names the aggregate type in logs. Defaults to the table name.
func WithKind(kind string) Option {
	return func(o *options) {
		if kind != "" {
			o.kind = kind
		}
	}
}
