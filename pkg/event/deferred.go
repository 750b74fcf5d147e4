package event

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/tenantkit/pkg/correlation"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

// Deferred publishes events after the active unit of work commits.
type Deferred struct {
	next     Publisher
	failures FailureHandler
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// DeferredOption configures a Deferred publisher.
type DeferredOption func(*Deferred)

// WithLogger sets the logger used for publication failures.
func WithLogger(l *slog.Logger) DeferredOption {
	return func(d *Deferred) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithFailureHandler sets where undeliverable events go.
func WithFailureHandler(h FailureHandler) DeferredOption {
	return func(d *Deferred) { d.failures = h }
}

// WithMetrics records publication outcomes.
func WithMetrics(m *metrics.Metrics) DeferredOption {
	return func(d *Deferred) { d.metrics = m }
}

// NewDeferred wraps next.
func NewDeferred(next Publisher, opts ...DeferredOption) *Deferred {
	d := &Deferred{next: next, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Publish delivers events now when ctx carries no open unit of work, and after
// its commit otherwise. It only returns an error for invalid input: delivery
// failures are logged and passed to the failure handler.
func (d *Deferred) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	// The caller may reuse its slice; the hook must see the events as they were.
	batch := slices.Clone(events)
	if id := correlation.FromContext(ctx); id != "" {
		for i := range batch {
			if batch[i].CorrelationID() == "" {
				batch[i] = batch[i].WithCorrelationID(id)
			}
		}
	}

	u, ok := uow.FromContext(ctx)
	if !ok {
		d.deliver(ctx, batch)
		return nil
	}

	err := u.AfterCommit(func(ctx context.Context) {
		d.deliver(ctx, batch)
	})
	if errors.Is(err, uow.ErrClosed) {
		// Completed between the lookup and the registration. Nothing can be
		// published safely without knowing the outcome, so drop the batch.
		d.metrics.EventsDiscarded(len(batch))
		d.logger.WarnContext(ctx, "unit of work closed before events were registered",
			logger.Component("event"),
			logger.EventCount(len(batch)),
		)
		return nil
	}
	return err
}

func (d *Deferred) deliver(ctx context.Context, batch []Event) {
	err := d.next.Publish(ctx, batch...)
	if err == nil {
		d.metrics.EventsPublished(len(batch))
		return
	}

	err = errors.Join(ErrPublishFailed, err)
	d.metrics.EventsFailed(len(batch))
	d.logger.ErrorContext(ctx, "event publication failed",
		logger.Component("event"),
		logger.TenantID(batch[0].TenantID),
		logger.EventType(batch[0].Type),
		logger.EventCount(len(batch)),
		logger.Error(err),
	)

	if d.failures == nil {
		return
	}
	if herr := d.failures.HandleFailure(ctx, batch, err); herr != nil {
		d.logger.ErrorContext(ctx, "event redelivery hand-off failed",
			logger.Component("event"),
			logger.EventCount(len(batch)),
			logger.Error(herr),
		)
	}
}
