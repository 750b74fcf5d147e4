package pg

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"
	"io/fs"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/pressly/goose/v3/lock"
)

// Migrate applies the platform migrations found in cfg.MigrationsPath to the public schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log logger) error {
	if cfg.MigrationsPath == "" {
		return errors.Join(ErrFailedToApplyMigrations, ErrMigrationPathNotProvided)
	}
	if _, err := os.Stat(cfg.MigrationsPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer closeDB(ctx, db, log)

	return up(ctx, db, os.DirFS(cfg.MigrationsPath), cfg.MigrationsTable, "public", log)
}

// MigrateSchema applies migrations inside one tenant schema. The schema name must
// already be validated; it is passed as the search_path runtime parameter of a
// dedicated connection, never spliced into SQL text. The version table lives in the
// tenant schema as well, so every schema migrates independently.
func MigrateSchema(ctx context.Context, pool *pgxpool.Pool, schema, table string, migrations fs.FS, log logger) error {
	connCfg := pool.Config().ConnConfig.Copy()
	if connCfg.RuntimeParams == nil {
		connCfg.RuntimeParams = make(map[string]string)
	}
	connCfg.RuntimeParams["search_path"] = pgx.Identifier{schema}.Sanitize()

	db := stdlib.OpenDB(*connCfg)
	defer closeDB(ctx, db, log)

	return up(ctx, db, migrations, table, schema, log)
}

func up(ctx context.Context, db *sql.DB, fsys fs.FS, table, scope string, log logger) error {
	store, err := database.NewStore(database.DialectPostgres, table)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	locker, err := lock.NewPostgresSessionLocker(lock.WithLockID(lockID(scope)))
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	provider, err := goose.NewProvider("", db, fsys,
		goose.WithStore(store),
		goose.WithSessionLocker(locker),
	)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			"schema", scope,
			"version", r.Source.Version,
			"duration", r.Duration,
		)
	}
	return nil
}

// lockID derives a per-schema advisory lock id so different schemas migrate in parallel.
func lockID(scope string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("tenantkit:migrate:" + scope))
	return int64(h.Sum64() >> 1)
}

func closeDB(ctx context.Context, db *sql.DB, log logger) {
	if err := db.Close(); err != nil {
		log.ErrorContext(ctx, "failed to close migration connection", "error", err)
	}
}
