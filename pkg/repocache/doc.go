// Package repocache decorates any aggregate.Repository with a cache.
//
// Point lookups are cache-aside: FindByID reads the cache first and, on a miss,
// loads from the wrapped repository and stores the snapshot with the namespace's
// TTL. Writes are write-through: Save and DeleteByID go to storage first and only
// then update or evict the cache entry. When the write runs inside a unit of work
// the entry is evicted at once and refreshed only after commit, so a rollback
// never leaves uncommitted state in the cache. FindByFilter and Search always go
// to storage: their result sets are too volatile to cache safely.
//
// Keys have the form tk:<tenant>:<namespace>:<id>. Tenant ids and namespaces
// cannot contain ':', so keys of different tenants never collide.
//
// The cache is never a source of failure. Backend errors are logged, counted and
// answered from storage.
//
//	repo := repocache.New[StockItem](items, store, "stock_item", policy.TTL("stock_item"),
//		repocache.WithLogger(log))
package repocache
