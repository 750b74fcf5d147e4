package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
)

// TxStarter is satisfied by *pgxpool.Pool.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// MigrateFunc applies service migrations inside one schema. pg.MigrateSchema
// bound to a pool satisfies it.
type MigrateFunc func(ctx context.Context, schema string, migrations fs.FS) error

// PostgresBootstrapper creates the schema, the document tables used by pgstore
// and, optionally, the service's own goose migrations.
type PostgresBootstrapper struct {
	db         TxStarter
	tables     []string
	migrations fs.FS
	migrate    MigrateFunc
}

// NewPostgresBootstrapper validates table names up front so a bad name fails at startup.
func NewPostgresBootstrapper(db TxStarter, tables []string, migrations fs.FS, migrate MigrateFunc) (*PostgresBootstrapper, error) {
	for _, t := range tables {
		if err := ValidateTable(t); err != nil {
			return nil, errors.Join(err, fmt.Errorf("table %q", t))
		}
	}
	if migrations != nil && migrate == nil {
		return nil, errors.New("schema: migrations provided without a migrate func")
	}
	return &PostgresBootstrapper{db: db, tables: tables, migrations: migrations, migrate: migrate}, nil
}

// Bootstrap runs the DDL in one transaction guarded by an advisory lock keyed on
// the schema name, so concurrent creators in other processes serialize and every
// statement is IF NOT EXISTS.
func (b *PostgresBootstrapper) Bootstrap(ctx context.Context, name Name) error {
	stmts, err := DDL(name, b.tables)
	if err != nil {
		return err
	}

	err = b.createTables(ctx, name, stmts)
	if pg.IsDuplicateObjectError(err) {
		// A concurrent creator won a catalog race and the transaction rolled back.
		// Later statements never ran, so run them again.
		err = b.createTables(ctx, name, stmts)
	}
	if err != nil {
		return err
	}

	if b.migrations != nil {
		if err := b.migrate(ctx, name.String(), b.migrations); err != nil {
			return err
		}
	}
	return nil
}

func (b *PostgresBootstrapper) createTables(ctx context.Context, name Name, stmts []string) error {
	tx, err := b.db.Begin(ctx)
	if err != nil {
		return err
	}

	exec := func() error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", name.String()); err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
	if err := exec(); err != nil {
		return errors.Join(err, tx.Rollback(ctx))
	}
	return tx.Commit(ctx)
}

// DDL returns the idempotent statements that create a schema and its document tables.
// Every identifier goes through Name.Qualify.
func DDL(name Name, tables []string) ([]string, error) {
	ident, err := name.Ident()
	if err != nil {
		return nil, err
	}

	stmts := []string{"CREATE SCHEMA IF NOT EXISTS " + ident}
	for _, table := range tables {
		qualified, err := name.Qualify(table)
		if err != nil {
			return nil, err
		}
		tenantIdx := pgx.Identifier{table + "_tenant_idx"}.Sanitize()
		dataIdx := pgx.Identifier{table + "_data_idx"}.Sanitize()
		stmts = append(stmts,
			`CREATE TABLE IF NOT EXISTS `+qualified+` (
	id         TEXT        PRIMARY KEY,
	tenant_id  TEXT        NOT NULL,
	version    BIGINT      NOT NULL DEFAULT 1,
	data       JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
			`CREATE INDEX IF NOT EXISTS `+tenantIdx+` ON `+qualified+` (tenant_id)`,
			`CREATE INDEX IF NOT EXISTS `+dataIdx+` ON `+qualified+` USING GIN (data jsonb_path_ops)`,
		)
	}
	return stmts, nil
}
