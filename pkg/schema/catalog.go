package schema

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const catalogQuery = `SELECT nspname FROM pg_catalog.pg_namespace WHERE nspname LIKE 'tenant\_%\_schema' ORDER BY nspname`

// Catalog lists tenant schemas from the store's catalog. Catalog names are
// untrusted: valid ones are returned, the rest come back in rejected.
func Catalog(ctx context.Context, q Querier) (names []Name, rejected []string, err error) {
	rows, err := q.Query(ctx, catalogQuery)
	if err != nil {
		return nil, nil, errors.Join(ErrCatalogQuery, err)
	}
	raw, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, nil, errors.Join(ErrCatalogQuery, err)
	}

	names = make([]Name, 0, len(raw))
	for _, candidate := range raw {
		name, err := Validate(candidate)
		if err != nil || name == Public {
			rejected = append(rejected, candidate)
			continue
		}
		names = append(names, name)
	}
	return names, rejected, nil
}
