package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/schema"
)

const catalogSQL = `SELECT nspname FROM pg_catalog.pg_namespace WHERE nspname LIKE 'tenant\_%\_schema' ORDER BY nspname`

func TestCatalog(t *testing.T) {
	t.Parallel()

	t.Run("keeps only valid names", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(catalogSQL).WillReturnRows(
			pgxmock.NewRows([]string{"nspname"}).
				AddRow("tenant_a_schema").
				AddRow(`tenant_x"; DROP TABLE t;--_schema`).
				AddRow("tenant_b_schema"),
		)

		names, rejected, err := schema.Catalog(context.Background(), mock)
		require.NoError(t, err)
		assert.Equal(t, []schema.Name{"tenant_a_schema", "tenant_b_schema"}, names)
		assert.Equal(t, []string{`tenant_x"; DROP TABLE t;--_schema`}, rejected)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty catalog", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(catalogSQL).WillReturnRows(pgxmock.NewRows([]string{"nspname"}))

		names, rejected, err := schema.Catalog(context.Background(), mock)
		require.NoError(t, err)
		assert.Empty(t, names)
		assert.Empty(t, rejected)
	})

	t.Run("query errors are wrapped", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(catalogSQL).WillReturnError(errors.New("conn reset"))

		_, _, err := schema.Catalog(context.Background(), mock)
		assert.ErrorIs(t, err, schema.ErrCatalogQuery)
	})
}
