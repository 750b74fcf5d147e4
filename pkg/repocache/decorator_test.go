package repocache_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/cache"
	"github.com/dmitrymomot/tenantkit/pkg/event"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
	"github.com/dmitrymomot/tenantkit/pkg/repocache"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

func scopeOf(t *testing.T, id string) tenant.Scope {
	t.Helper()
	s, err := tenant.NewScope(tenant.ID(id))
	require.NoError(t, err)
	return s
}

func newDecorator(t *testing.T, repo *memoryRepo, store repocache.Store, opts ...repocache.Option) *repocache.Decorator[item, *item] {
	t.Helper()
	opts = append([]repocache.Option{repocache.WithLogger(logger.Discard())}, opts...)
	d, err := repocache.New[item](repo, store, "item", time.Minute, opts...)
	require.NoError(t, err)
	return d
}

func TestDecorator_FindByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("miss populates, hit skips storage", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		reg := prometheus.NewRegistry()
		d := newDecorator(t, repo, cache.NewMemoryStore(100), repocache.WithMetrics(metrics.MustNew(reg)))
		acme := scopeOf(t, "acme")

		_, err := repo.Save(ctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}, Name: "pallet"})
		require.NoError(t, err)

		first, err := d.FindByID(ctx, acme, "1")
		require.NoError(t, err)
		second, err := d.FindByID(ctx, acme, "1")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, repo.count("find"))

		n, err := testutil.GatherAndCount(reg, "tenantkit_cache_requests_total")
		require.NoError(t, err)
		assert.Equal(t, 2, n, "one hit series and one miss series")
	})

	t.Run("not found is not cached", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		d := newDecorator(t, repo, cache.NewMemoryStore(100))

		_, err := d.FindByID(ctx, scopeOf(t, "acme"), "missing")
		require.ErrorIs(t, err, aggregate.ErrNotFound)
		_, err = d.FindByID(ctx, scopeOf(t, "acme"), "missing")
		require.ErrorIs(t, err, aggregate.ErrNotFound)
		assert.Equal(t, 2, repo.count("find"))
	})

	t.Run("tenants never share entries", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		d := newDecorator(t, repo, cache.NewMemoryStore(100))

		_, err := d.Save(ctx, scopeOf(t, "acme"), &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}, Name: "acme's"})
		require.NoError(t, err)

		_, err = d.FindByID(ctx, scopeOf(t, "globex"), "1")
		require.ErrorIs(t, err, aggregate.ErrNotFound)
	})

	t.Run("foreign snapshot under a tenant key is evicted", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		store := cache.NewMemoryStore(100)
		d := newDecorator(t, repo, store)
		acme := scopeOf(t, "acme")

		_, err := repo.Save(ctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}, Name: "real"})
		require.NoError(t, err)

		key, err := repocache.Key("acme", "item", "1")
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, key, []byte(`{"id":"1","tenant_id":"globex","name":"leak"}`), time.Minute))

		got, err := d.FindByID(ctx, acme, "1")
		require.NoError(t, err)
		assert.Equal(t, "real", got.Name)
		assert.Equal(t, 1, repo.count("find"))
	})

	t.Run("backend outage degrades to storage", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		reg := prometheus.NewRegistry()
		d := newDecorator(t, repo, brokenStore{}, repocache.WithMetrics(metrics.MustNew(reg)))
		acme := scopeOf(t, "acme")

		saved, err := d.Save(ctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}, Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), saved.Version)

		got, err := d.FindByID(ctx, acme, "1")
		require.NoError(t, err)
		assert.Equal(t, "x", got.Name)

		n, err := testutil.GatherAndCount(reg, "tenantkit_cache_errors_total")
		require.NoError(t, err)
		assert.Positive(t, n)
	})

	t.Run("requires tenant context", func(t *testing.T) {
		t.Parallel()

		d := newDecorator(t, newMemoryRepo(), cache.NewMemoryStore(10))
		_, err := d.FindByID(ctx, tenant.Scope{}, "1")
		require.ErrorIs(t, err, tenant.ErrMissingTenantContext)
	})
}

func TestDecorator_Save(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("read your own write from cache", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		store := cache.NewMemoryStore(100)
		d := newDecorator(t, repo, store)
		acme := scopeOf(t, "acme")

		a := &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}, Name: "v1"}
		e, err := event.New("item.created", "item", nil)
		require.NoError(t, err)
		a.Record(e)

		saved, err := d.Save(ctx, acme, a)
		require.NoError(t, err)

		key, err := repocache.Key("acme", "item", "1")
		require.NoError(t, err)
		raw, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotContains(t, string(raw), "item.created")

		got, err := d.FindByID(ctx, acme, "1")
		require.NoError(t, err)
		assert.Equal(t, saved.Version, got.Version)
		assert.Equal(t, "v1", got.Name)
		assert.Zero(t, repo.count("find"))

		saved.Name = "v2"
		again, err := d.Save(ctx, acme, saved)
		require.NoError(t, err)
		got, err = d.FindByID(ctx, acme, "1")
		require.NoError(t, err)
		assert.Equal(t, again.Version, got.Version)
		assert.Equal(t, "v2", got.Name)
	})

	t.Run("conflict evicts the stale entry", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		store := cache.NewMemoryStore(100)
		d := newDecorator(t, repo, store)
		acme := scopeOf(t, "acme")

		saved, err := d.Save(ctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}})
		require.NoError(t, err)
		_, err = d.Save(ctx, acme, saved)
		require.NoError(t, err)

		_, err = d.Save(ctx, acme, saved)
		require.ErrorIs(t, err, aggregate.ErrOptimisticConflict)

		key, _ := repocache.Key("acme", "item", "1")
		_, ok, _ := store.Get(ctx, key)
		assert.False(t, ok)
	})

	t.Run("inside a unit of work the cache waits for commit", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		store := cache.NewMemoryStore(100)
		d := newDecorator(t, repo, store)
		acme := scopeOf(t, "acme")
		key, _ := repocache.Key("acme", "item", "1")

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		t.Cleanup(mock.Close)

		mock.ExpectBegin()
		mock.ExpectRollback()
		tx, err := mock.Begin(ctx)
		require.NoError(t, err)
		u := uow.New(acme, "tenant_acme_schema", tx)
		uctx := uow.WithContext(ctx, u)

		_, err = d.Save(uctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}})
		require.NoError(t, err)
		_, ok, _ := store.Get(ctx, key)
		assert.False(t, ok, "nothing cached before commit")

		require.NoError(t, u.Rollback(ctx))
		_, ok, _ = store.Get(ctx, key)
		assert.False(t, ok, "nothing cached after rollback")

		mock.ExpectBegin()
		mock.ExpectCommit()
		tx, err = mock.Begin(ctx)
		require.NoError(t, err)
		u = uow.New(acme, "tenant_acme_schema", tx)
		uctx = uow.WithContext(ctx, u)

		_, err = d.Save(uctx, acme, &item{Root: aggregate.Root{ID: "2", TenantID: "acme"}})
		require.NoError(t, err)
		require.NoError(t, u.Commit(ctx))

		key2, _ := repocache.Key("acme", "item", "2")
		_, ok, _ = store.Get(ctx, key2)
		assert.True(t, ok, "cached after commit")
	})

	t.Run("reads inside a unit of work never cache uncommitted rows", func(t *testing.T) {
		t.Parallel()

		repo := newMemoryRepo()
		store := cache.NewMemoryStore(100)
		d := newDecorator(t, repo, store)
		acme := scopeOf(t, "acme")
		key, _ := repocache.Key("acme", "item", "1")

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		t.Cleanup(mock.Close)

		mock.ExpectBegin()
		mock.ExpectRollback()
		tx, err := mock.Begin(ctx)
		require.NoError(t, err)
		u := uow.New(acme, "tenant_acme_schema", tx)
		uctx := uow.WithContext(ctx, u)

		_, err = d.Save(uctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}, Name: "uncommitted"})
		require.NoError(t, err)
		got, err := d.FindByID(uctx, acme, "1")
		require.NoError(t, err)
		assert.Equal(t, "uncommitted", got.Name)

		require.NoError(t, u.Rollback(ctx))
		_, ok, _ := store.Get(ctx, key)
		assert.False(t, ok, "rolled back state must not be cached")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDecorator_DeleteByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemoryRepo()
	store := cache.NewMemoryStore(100)
	d := newDecorator(t, repo, store)
	acme := scopeOf(t, "acme")

	_, err := d.Save(ctx, acme, &item{Root: aggregate.Root{ID: "1", TenantID: "acme"}})
	require.NoError(t, err)

	require.NoError(t, d.DeleteByID(ctx, acme, "1"))
	key, _ := repocache.Key("acme", "item", "1")
	_, ok, _ := store.Get(ctx, key)
	assert.False(t, ok)

	_, err = d.FindByID(ctx, acme, "1")
	require.ErrorIs(t, err, aggregate.ErrNotFound)
	require.ErrorIs(t, d.DeleteByID(ctx, acme, "1"), aggregate.ErrNotFound)
}

func TestDecorator_CollectionsBypassCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newMemoryRepo()
	d := newDecorator(t, repo, cache.NewMemoryStore(100))
	acme := scopeOf(t, "acme")

	for range 2 {
		_, err := d.FindByFilter(ctx, acme, aggregate.Filter{})
		require.NoError(t, err)
		_, err = d.Search(ctx, acme, "pallet", 10)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.count("filter"))
	assert.Equal(t, 2, repo.count("search"))
}
