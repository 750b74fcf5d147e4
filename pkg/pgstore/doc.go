// Package pgstore is a generic aggregate.Repository that keeps each aggregate as
// a JSONB document in a per-tenant table, reached through the session gateway.
//
// The table layout is created by schema.PostgresBootstrapper:
//
//	id TEXT PRIMARY KEY, tenant_id TEXT, version BIGINT, data JSONB,
//	created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ
//
// Saves are optimistic. A new aggregate (version 0) is inserted with version 1;
// an existing one is updated only if its stored version still matches, and the
// version is bumped by one. A lost race returns aggregate.ErrOptimisticConflict.
// Save always returns a copy decoded from the row the database returned.
//
//	items, err := pgstore.New[StockItem](gw, "stock_items")
//	saved, err := items.Save(ctx, scope, item)
package pgstore
