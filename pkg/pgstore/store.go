package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/pg"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/session"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

// Gateway is satisfied by *session.Gateway.
type Gateway interface {
	Read(ctx context.Context, scope tenant.Scope, fn session.Func) error
	Write(ctx context.Context, scope tenant.Scope, owner tenant.ID, fn session.Func) error
}

// Store implements aggregate.Repository over a JSONB document table.
type Store[T any, A interface {
	*T
	aggregate.Aggregate
}] struct {
	gw    Gateway
	table string
	opts  options
}

// New creates a store for table. The table name is validated here so a bad
// name fails at startup.
func New[T any, A interface {
	*T
	aggregate.Aggregate
}](gw Gateway, table string, opts ...Option) (*Store[T, A], error) {
	if err := schema.ValidateTable(table); err != nil {
		return nil, err
	}
	o := options{logger: slog.Default(), kind: table}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, A]{gw: gw, table: table, opts: o}, nil
}

// Table returns the document table name.
func (s *Store[T, A]) Table() string { return s.table }

// Save inserts or updates agg and returns the stored copy.
func (s *Store[T, A]) Save(ctx context.Context, scope tenant.Scope, agg A) (A, error) {
	if agg == nil {
		return nil, aggregate.ErrInvalidAggregate
	}
	root := agg.Base()
	if err := root.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(agg)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}

	var saved A
	err = s.gw.Write(ctx, scope, root.TenantID, func(ctx context.Context, u *uow.UnitOfWork) error {
		table, err := u.Schema().Qualify(s.table)
		if err != nil {
			return err
		}

		var (
			sql  string
			args []any
		)
		if root.IsNew() {
			sql = `INSERT INTO ` + table + ` (id, tenant_id, version, data, created_at, updated_at)
VALUES ($1, $2, 1, $3, now(), now())
ON CONFLICT (id) DO NOTHING
RETURNING ` + Columns
			args = []any{root.ID, root.TenantID.String(), data}
		} else {
			sql = `UPDATE ` + table + `
SET data = $1, version = version + 1, updated_at = now()
WHERE id = $2 AND tenant_id = $3 AND version = $4
RETURNING ` + Columns
			args = []any{data, root.ID, root.TenantID.String(), root.Version}
		}

		rec, err := queryOne(ctx, u.Tx(), sql, args...)
		if pg.IsNotFoundError(err) {
			s.opts.metrics.OptimisticConflict(s.table)
			s.opts.logger.InfoContext(ctx, "optimistic conflict",
				logger.Component("pgstore"),
				logger.TenantID(root.TenantID.String()),
				logger.Aggregate(s.opts.kind, root.ID),
				slog.Int64("version", root.Version),
			)
			return aggregate.ErrOptimisticConflict
		}
		if err != nil {
			return err
		}

		saved, err = Decode[T, A](rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// FindByID returns the aggregate with id in the scope's schema.
func (s *Store[T, A]) FindByID(ctx context.Context, scope tenant.Scope, id string) (A, error) {
	var found A
	err := s.gw.Read(ctx, scope, func(ctx context.Context, u *uow.UnitOfWork) error {
		table, err := u.Schema().Qualify(s.table)
		if err != nil {
			return err
		}
		owner := u.Scope().TenantID()

		rec, err := queryOne(ctx, u.Tx(),
			`SELECT `+Columns+` FROM `+table+` WHERE id = $1 AND tenant_id = $2`,
			id, owner.String())
		if pg.IsNotFoundError(err) {
			return aggregate.ErrNotFound
		}
		if err != nil {
			return err
		}

		found, err = s.decodeOwned(rec, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindByFilter returns aggregates whose document contains filter.Match.
func (s *Store[T, A]) FindByFilter(ctx context.Context, scope tenant.Scope, filter aggregate.Filter) ([]A, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	match, err := MatchJSON(filter)
	if err != nil {
		return nil, err
	}

	var out []A
	err = s.gw.Read(ctx, scope, func(ctx context.Context, u *uow.UnitOfWork) error {
		table, err := u.Schema().Qualify(s.table)
		if err != nil {
			return err
		}
		owner := u.Scope().TenantID()

		sql := `SELECT ` + Columns + ` FROM ` + table + `
WHERE tenant_id = $1 AND data @> $2::jsonb
` + OrderClause(filter) + `
LIMIT $3`
		out, err = s.queryOwned(ctx, u.Tx(), owner, sql, owner.String(), match, filter.EffectiveLimit())
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches text case-insensitively against the serialized document.
func (s *Store[T, A]) Search(ctx context.Context, scope tenant.Scope, text string, limit int) ([]A, error) {
	if limit <= 0 || limit > aggregate.MaxLimit {
		limit = aggregate.MaxLimit
	}

	var out []A
	err := s.gw.Read(ctx, scope, func(ctx context.Context, u *uow.UnitOfWork) error {
		table, err := u.Schema().Qualify(s.table)
		if err != nil {
			return err
		}
		owner := u.Scope().TenantID()

		sql := `SELECT ` + Columns + ` FROM ` + table + `
WHERE tenant_id = $1 AND data::text ILIKE $2
ORDER BY updated_at DESC, id
LIMIT $3`
		out, err = s.queryOwned(ctx, u.Tx(), owner, sql, owner.String(), likePattern(text), limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID removes the aggregate. Deleting a missing id returns aggregate.ErrNotFound.
func (s *Store[T, A]) DeleteByID(ctx context.Context, scope tenant.Scope, id string) error {
	scope, err := tenant.Effective(ctx, scope)
	if err != nil {
		return err
	}
	return s.gw.Write(ctx, scope, scope.TenantID(), func(ctx context.Context, u *uow.UnitOfWork) error {
		table, err := u.Schema().Qualify(s.table)
		if err != nil {
			return err
		}
		tag, err := u.Tx().Exec(ctx, `DELETE FROM `+table+` WHERE id = $1 AND tenant_id = $2`,
			id, scope.TenantID().String())
		if err != nil {
			return errors.Join(ErrQuery, err)
		}
		if tag.RowsAffected() == 0 {
			return aggregate.ErrNotFound
		}
		return nil
	})
}

func (s *Store[T, A]) queryOwned(ctx context.Context, q querier, owner tenant.ID, sql string, args ...any) ([]A, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Record])
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}

	out := make([]A, 0, len(recs))
	for _, rec := range recs {
		agg, err := s.decodeOwned(rec, owner)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

// decodeOwned decodes rec and refuses rows owned by another tenant.
func (s *Store[T, A]) decodeOwned(rec Record, owner tenant.ID) (A, error) {
	if tenant.ID(rec.TenantID) != owner {
		s.opts.logger.Error("row owned by another tenant in tenant schema",
			logger.Component("pgstore"),
			logger.TenantID(owner.String()),
			logger.Aggregate(s.opts.kind, rec.ID),
		)
		return nil, tenant.ErrTenantMismatch
	}
	return Decode[T, A](rec)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryOne(ctx context.Context, q querier, sql string, args ...any) (Record, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return Record{}, errors.Join(ErrQuery, err)
	}
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[Record])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, errors.Join(ErrQuery, err)
	}
	return rec, nil
}

// MatchJSON encodes the containment document for filter. An empty match is {}.
func MatchJSON(filter aggregate.Filter) ([]byte, error) {
	if len(filter.Match) == 0 {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(filter.Match)
	if err != nil {
		return nil, errors.Join(aggregate.ErrInvalidFilter, err)
	}
	return b, nil
}

// OrderClause renders a validated filter's ordering. Fields come from a fixed
// set, so nothing from the caller reaches the statement text.
func OrderClause(filter aggregate.Filter) string {
	if len(filter.OrderBy) == 0 {
		return "ORDER BY created_at, id"
	}
	terms := make([]string, 0, len(filter.OrderBy))
	for _, o := range filter.OrderBy {
		col := pgx.Identifier{o.Field}.Sanitize()
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		terms = append(terms, fmt.Sprintf("%s %s", col, dir))
	}
	return "ORDER BY " + strings.Join(terms, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}
