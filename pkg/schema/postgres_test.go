package schema_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/schema"
)

const lockSQL = "SELECT pg_advisory_xact_lock(hashtext($1))"

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestDDL(t *testing.T) {
	t.Parallel()

	stmts, err := schema.DDL("tenant_acme_schema", []string{"locations", "orders"})
	require.NoError(t, err)
	require.Len(t, stmts, 7)
	assert.Equal(t, `CREATE SCHEMA IF NOT EXISTS "tenant_acme_schema"`, stmts[0])
	assert.Contains(t, stmts[1], `CREATE TABLE IF NOT EXISTS "tenant_acme_schema"."locations"`)
	assert.Contains(t, stmts[3], `USING GIN (data jsonb_path_ops)`)
	assert.Contains(t, stmts[4], `"tenant_acme_schema"."orders"`)

	_, err = schema.DDL("tenant_acme_schema", []string{"Orders"})
	assert.ErrorIs(t, err, schema.ErrInvalidTableName)

	_, err = schema.DDL(`bad"name`, nil)
	assert.ErrorIs(t, err, schema.ErrInvalidSchemaName)
}

func TestPostgresBootstrapper(t *testing.T) {
	t.Parallel()

	t.Run("runs ddl under an advisory lock", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		name := schema.Name("tenant_acme_schema")
		stmts, err := schema.DDL(name, []string{"locations"})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs(name.String()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
		for _, stmt := range stmts {
			mock.ExpectExec(stmt).WillReturnResult(pgxmock.NewResult("CREATE", 0))
		}
		mock.ExpectCommit()

		b, err := schema.NewPostgresBootstrapper(mock, []string{"locations"}, nil, nil)
		require.NoError(t, err)
		require.NoError(t, b.Bootstrap(context.Background(), name))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		name := schema.Name("tenant_acme_schema")
		boom := errors.New("disk full")

		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs(name.String()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "tenant_acme_schema"`).WillReturnError(boom)
		mock.ExpectRollback()

		b, err := schema.NewPostgresBootstrapper(mock, nil, nil, nil)
		require.NoError(t, err)
		err = b.Bootstrap(context.Background(), name)
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reruns the ddl after losing a race to a concurrent creator", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		name := schema.Name("tenant_acme_schema")
		stmts, err := schema.DDL(name, []string{"locations"})
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs(name.String()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec(stmts[0]).WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec(stmts[1]).WillReturnError(&pgconn.PgError{Code: "42P07"})
		mock.ExpectRollback()

		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs(name.String()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
		for _, stmt := range stmts {
			mock.ExpectExec(stmt).WillReturnResult(pgxmock.NewResult("CREATE", 0))
		}
		mock.ExpectCommit()

		b, err := schema.NewPostgresBootstrapper(mock, []string{"locations"}, nil, nil)
		require.NoError(t, err)
		require.NoError(t, b.Bootstrap(context.Background(), name))
		require.NoError(t, mock.ExpectationsWereMet(), "every table must exist before the schema counts as ready")
	})

	t.Run("fails when the rerun fails too", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		name := schema.Name("tenant_acme_schema")

		for range 2 {
			mock.ExpectBegin()
			mock.ExpectExec(lockSQL).WithArgs(name.String()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
			mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "tenant_acme_schema"`).
				WillReturnError(&pgconn.PgError{Code: "42P06"})
			mock.ExpectRollback()
		}

		b, err := schema.NewPostgresBootstrapper(mock, nil, nil, nil)
		require.NoError(t, err)
		err = b.Bootstrap(context.Background(), name)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs migrations after ddl", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		name := schema.Name("tenant_acme_schema")
		migrations := fstest.MapFS{"00001_init.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}}

		mock.ExpectBegin()
		mock.ExpectExec(lockSQL).WithArgs(name.String()).WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS "tenant_acme_schema"`).WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectCommit()

		var migrated string
		migrate := func(_ context.Context, s string, fsys fs.FS) error {
			migrated = s
			_, err := fs.Stat(fsys, "00001_init.sql")
			return err
		}
		b, err := schema.NewPostgresBootstrapper(mock, nil, migrations, migrate)
		require.NoError(t, err)
		require.NoError(t, b.Bootstrap(context.Background(), name))
		assert.Equal(t, "tenant_acme_schema", migrated)
	})

	t.Run("validates configuration", func(t *testing.T) {
		t.Parallel()

		_, err := schema.NewPostgresBootstrapper(nil, []string{"bad table"}, nil, nil)
		assert.ErrorIs(t, err, schema.ErrInvalidTableName)

		_, err = schema.NewPostgresBootstrapper(nil, nil, fstest.MapFS{}, nil)
		assert.Error(t, err)
	})
}
