// Package schema maps tenants to PostgreSQL schemas and makes sure those schemas exist.
//
// Every tenant owns one schema named tenant_<id>_schema; platform data lives in
// public. Resolve is a pure function of the tenant id and its output is re-validated
// against the allow-list (^tenant_[A-Za-z0-9_]+_schema$ or "public") right before
// it reaches SQL through Name.Ident or Name.Qualify, which quote it with
// pgx.Identifier. There is no fallback schema: a name that fails validation aborts
// the request with ErrInvalidSchemaName.
//
// The Provisioner creates schemas lazily on first use:
//
//	boot, _ := schema.NewPostgresBootstrapper(pool, []string{"locations"}, migrationsFS,
//		func(ctx context.Context, s string, fsys fs.FS) error {
//			return pg.MigrateSchema(ctx, pool, s, cfg.TenantMigrationsTable, fsys, log)
//		})
//	prov := schema.NewProvisioner(boot, schema.WithLogger(log))
//
//	name, _ := schema.Resolve(scope.TenantID())
//	if err := prov.EnsureReady(ctx, name); err != nil { ... }
//
// Readiness is memoized per process. Concurrent first requests for the same
// schema share one bootstrap run (golang.org/x/sync/singleflight) and a failed run
// is never memoized.
package schema
