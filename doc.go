// Package tenantkit wires the building blocks of a multi-tenant service with
// one PostgreSQL schema per tenant.
//
// A Kit owns the connection pool, the schema provisioner, the session
// gateway, the cache backend and the deferred event publisher. Repositories
// are built per aggregate type:
//
//	var cfg tenantkit.Config
//	config.MustLoad(&cfg)
//
//	kit, err := tenantkit.New(ctx, cfg, tenantkit.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer kit.Close()
//
//	items, err := tenantkit.NewRepository[StockItem](kit, "documents", "stock_item")
//	if err != nil {
//		return err
//	}
//
//	err = tenant.Run(ctx, "acme", func(ctx context.Context, scope tenant.Scope) error {
//		item := &StockItem{Root: aggregate.NewRoot(scope.TenantID()), SKU: "SKU-1"}
//		_, err := tenantkit.SaveAndPublish(ctx, kit, items, scope, item)
//		return err
//	})
//
// Reports across tenants go through FanOut, which reads every tenant schema
// found in the catalog in a single query.
package tenantkit
