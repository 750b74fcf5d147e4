package repocache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

// Store is a byte cache with TTL. cache.MemoryStore and redis.Store implement it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Option configures a Decorator.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WithLogger sets the logger used for swallowed cache errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records hits, misses and errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Decorator caches point lookups of a wrapped repository.
type Decorator[T any, A interface {
	*T
	aggregate.Aggregate
}] struct {
	next      aggregate.Repository[A]
	store     Store
	namespace string
	ttl       time.Duration
	opts      options
}

var _ aggregate.Repository[*aggregate.Root] = (*Decorator[aggregate.Root, *aggregate.Root])(nil)

// New wraps next. A non-positive ttl falls back to DefaultTTL.
func New[T any, A interface {
	*T
	aggregate.Aggregate
}](next aggregate.Repository[A], store Store, namespace string, ttl time.Duration, opts ...Option) (*Decorator[T, A], error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decorator[T, A]{next: next, store: store, namespace: namespace, ttl: ttl, opts: o}, nil
}

// FindByID serves from the cache when possible. Inside a unit of work a miss is
// not cached: the row read may be uncommitted.
func (d *Decorator[T, A]) FindByID(ctx context.Context, scope tenant.Scope, id string) (A, error) {
	scope, err := tenant.Effective(ctx, scope)
	if err != nil {
		return nil, err
	}
	key, err := Key(scope.TenantID(), d.namespace, id)
	if err != nil {
		return nil, err
	}

	if agg, ok := d.lookup(ctx, scope, key); ok {
		d.opts.metrics.CacheHit(d.namespace)
		return agg, nil
	}
	d.opts.metrics.CacheMiss(d.namespace)

	agg, err := d.next.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if !uow.Active(ctx) {
		d.put(ctx, key, agg)
	}
	return agg, nil
}

// Save writes to storage, then refreshes the cache with the stored snapshot.
func (d *Decorator[T, A]) Save(ctx context.Context, scope tenant.Scope, agg A) (A, error) {
	saved, err := d.next.Save(ctx, scope, agg)
	if err != nil {
		if errors.Is(err, aggregate.ErrOptimisticConflict) && agg != nil {
			// The cached copy is likely the stale one the caller started from.
			if key, kerr := Key(agg.Base().TenantID, d.namespace, agg.Base().ID); kerr == nil {
				d.evict(ctx, key)
			}
		}
		return nil, err
	}

	key, err := Key(saved.Base().TenantID, d.namespace, saved.Base().ID)
	if err != nil {
		d.logFailure(ctx, "key", err)
		return saved, nil
	}
	d.afterWrite(ctx, key, func(ctx context.Context) { d.put(ctx, key, saved) })
	return saved, nil
}

// DeleteByID deletes from storage, then evicts the entry.
func (d *Decorator[T, A]) DeleteByID(ctx context.Context, scope tenant.Scope, id string) error {
	scope, err := tenant.Effective(ctx, scope)
	if err != nil {
		return err
	}
	err = d.next.DeleteByID(ctx, scope, id)
	if err != nil && !errors.Is(err, aggregate.ErrNotFound) {
		return err
	}

	if key, kerr := Key(scope.TenantID(), d.namespace, id); kerr == nil {
		d.afterWrite(ctx, key, func(ctx context.Context) { d.evict(ctx, key) })
	}
	return err
}

// FindByFilter always reads storage.
func (d *Decorator[T, A]) FindByFilter(ctx context.Context, scope tenant.Scope, filter aggregate.Filter) ([]A, error) {
	return d.next.FindByFilter(ctx, scope, filter)
}

// Search always reads storage.
func (d *Decorator[T, A]) Search(ctx context.Context, scope tenant.Scope, text string, limit int) ([]A, error) {
	return d.next.Search(ctx, scope, text, limit)
}

func (d *Decorator[T, A]) lookup(ctx context.Context, scope tenant.Scope, key string) (A, bool) {
	b, ok, err := d.store.Get(ctx, key)
	if err != nil {
		d.logFailure(ctx, "get", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	agg := A(new(T))
	if err := json.Unmarshal(b, agg); err != nil {
		d.logFailure(ctx, "decode", err)
		d.evict(ctx, key)
		return nil, false
	}
	if agg.Base().TenantID != scope.TenantID() {
		d.opts.logger.ErrorContext(ctx, "cached snapshot belongs to another tenant",
			logger.Component("repocache"),
			logger.TenantID(scope.TenantID().String()),
			logger.CacheKey(key),
		)
		d.evict(ctx, key)
		return nil, false
	}
	return agg, true
}

// afterWrite applies fn now, or after commit when ctx carries a unit of work.
// Inside a unit of work the key is evicted at once so readers fall through to storage.
func (d *Decorator[T, A]) afterWrite(ctx context.Context, key string, fn uow.Hook) {
	u, ok := uow.FromContext(ctx)
	if !ok {
		fn(ctx)
		return
	}
	d.evict(ctx, key)
	if err := u.AfterCommit(fn); err != nil {
		d.logFailure(ctx, "register", err)
	}
}

// put stores a snapshot. Pending events are not part of the JSON form.
func (d *Decorator[T, A]) put(ctx context.Context, key string, agg A) {
	b, err := json.Marshal(agg)
	if err != nil {
		d.logFailure(ctx, "encode", err)
		d.evict(ctx, key)
		return
	}
	if err := d.store.Set(ctx, key, b, d.ttl); err != nil {
		d.logFailure(ctx, "set", err)
		// An older snapshot may still be there.
		d.evict(ctx, key)
	}
}

func (d *Decorator[T, A]) evict(ctx context.Context, key string) {
	if err := d.store.Delete(ctx, key); err != nil {
		d.logFailure(ctx, "delete", err)
	}
}

func (d *Decorator[T, A]) logFailure(ctx context.Context, op string, err error) {
	d.opts.metrics.CacheError(d.namespace, op)
	d.opts.logger.WarnContext(ctx, "cache operation failed, falling back to storage",
		logger.Component("repocache"),
		slog.String("cache_namespace", d.namespace),
		slog.String("op", op),
		logger.Error(errors.Join(ErrCacheUnavailable, err)),
	)
}
