// Package fanout runs one privileged query across every tenant schema.
//
// Schema names come from the database catalog and are treated as untrusted:
// each one is re-validated, quoted as an identifier in FROM, and passed as a bind
// parameter where it appears as a value. Names failing validation are logged and
// skipped. The per-schema branches are joined with UNION ALL; every row carries
// its schema so branches can never collapse into each other, which makes the
// result the set union of the per-schema matches.
//
//	rows, err := fanout.Query[StockItem](ctx, pool, "stock_items", aggregate.Filter{
//		Match: map[string]any{"status": "backordered"},
//	})
//
// An empty schema set yields an empty result and no error.
package fanout
