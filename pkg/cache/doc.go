// Package cache provides an in-process, thread-safe byte store with per-entry
// TTL and least-recently-used eviction. It backs the repository cache when no
// Redis is configured and in tests.
//
//	store := cache.NewMemoryStore(10_000)
//	_ = store.Set(ctx, "tk:acme:stock_item:42", payload, 15*time.Minute)
//	b, ok, _ := store.Get(ctx, "tk:acme:stock_item:42")
//
// Expired entries are dropped lazily when read and are the first to go when the
// store is full. Get, Set and Delete are O(1).
package cache
