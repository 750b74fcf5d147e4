package tenantkit

import (
	"context"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/fanout"
	"github.com/dmitrymomot/tenantkit/pkg/pgstore"
	"github.com/dmitrymomot/tenantkit/pkg/repocache"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

// NewRepository returns a PostgreSQL repository for table, cached under
// namespace when the kit has a cache backend. The TTL comes from the cache policy.
func NewRepository[T any, A interface {
	*T
	aggregate.Aggregate
}](k *Kit, table, namespace string) (aggregate.Repository[A], error) {
	store, err := pgstore.New[T, A](k.Gateway, table,
		pgstore.WithLogger(k.Logger),
		pgstore.WithMetrics(k.Metrics),
		pgstore.WithKind(namespace),
	)
	if err != nil {
		return nil, err
	}
	if k.cache == nil {
		return store, nil
	}
	return repocache.New[T, A](store, k.cache, namespace, k.policy.TTL(namespace),
		repocache.WithLogger(k.Logger),
		repocache.WithMetrics(k.Metrics),
	)
}

// SaveAndPublish saves agg and publishes the events it recorded once the
// change is committed. Events are taken before the save because the stored
// copy comes back without them. On success the events are cleared from agg.
func SaveAndPublish[A aggregate.Aggregate](ctx context.Context, k *Kit, repo aggregate.Repository[A], scope tenant.Scope, agg A) (A, error) {
	var saved A
	err := k.Gateway.Write(ctx, scope, agg.Base().TenantID, func(ctx context.Context, _ *uow.UnitOfWork) error {
		events := agg.Base().PendingEvents()

		var err error
		saved, err = repo.Save(ctx, scope, agg)
		if err != nil {
			return err
		}
		return k.Events.Publish(ctx, events...)
	})
	if err != nil {
		var zero A
		return zero, err
	}
	agg.Base().ClearEvents()
	return saved, nil
}

// FanOut runs filter against table in every tenant schema.
func FanOut[T any, A interface {
	*T
	aggregate.Aggregate
}](ctx context.Context, k *Kit, table string, filter aggregate.Filter) ([]fanout.Row[A], error) {
	return fanout.Query[T, A](ctx, k.Pool, table, filter,
		fanout.WithLogger(k.Logger),
		fanout.WithMetrics(k.Metrics),
	)
}
