// Package pg wires PostgreSQL through the pgx/v5 driver: connection pooling with
// retry, goose/v3 migrations for the platform (public) schema and for individual
// tenant schemas, health checks and SQLSTATE classification helpers.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//
// Tenant schemas are migrated lazily by schema.Provisioner through MigrateSchema,
// which opens a dedicated database/sql handle whose search_path is the tenant schema.
// Each schema keeps its own version table and advisory lock, so tenants migrate
// independently and concurrently.
//
// # Error Handling
//
// IsDuplicateObjectError, IsSerializationFailure, IsDuplicateKeyError and friends
// unwrap *pgconn.PgError and compare SQLSTATE codes.
package pg
