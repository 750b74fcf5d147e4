package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
	"github.com/dmitrymomot/tenantkit/pkg/pgstore"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Querier is satisfied by *pgxpool.Pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Row is one match together with the schema it came from.
type Row[A aggregate.Aggregate] struct {
	Schema    schema.Name
	Aggregate A
}

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a fan-out query.
type Option func(*options)

// WithLogger sets the logger used for rejected catalog names.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records the number of schemas covered.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Query lists tenant schemas from the catalog and runs the filter across all of them.
func Query[T any, A interface {
	*T
	aggregate.Aggregate
}](ctx context.Context, db Querier, table string, filter aggregate.Filter, opts ...Option) ([]Row[A], error) {
	o := buildOptions(opts)

	names, rejected, err := schema.Catalog(ctx, db)
	if err != nil {
		return nil, err
	}
	for _, bad := range rejected {
		o.logger.WarnContext(ctx, "skipping catalog schema that fails validation",
			logger.Component("fanout"),
			slog.String("candidate", bad),
		)
	}
	return QuerySchemas[T, A](ctx, db, names, table, filter, opts...)
}

// QuerySchemas runs the filter across the given schemas in one round trip.
// Without filter.Limit the whole union is returned or ErrResultTooLarge; it is
// never silently truncated.
func QuerySchemas[T any, A interface {
	*T
	aggregate.Aggregate
}](ctx context.Context, db Querier, schemas []schema.Name, table string, filter aggregate.Filter, opts ...Option) ([]Row[A], error) {
	o := buildOptions(opts)
	o.metrics.FanoutSchemas(len(schemas))

	sql, args, err := BuildUnion(schemas, table, filter)
	if err != nil {
		return nil, err
	}
	if sql == "" {
		return []Row[A]{}, nil
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[record])
	if err != nil {
		return nil, errors.Join(ErrQuery, err)
	}
	if filter.Limit == 0 && len(recs) > aggregate.MaxLimit {
		return nil, errors.Join(ErrResultTooLarge, fmt.Errorf("more than %d rows across %d schemas", aggregate.MaxLimit, len(schemas)))
	}

	out := make([]Row[A], 0, len(recs))
	for _, rec := range recs {
		name := schema.Name(rec.SchemaName)
		if owner, err := schema.TenantOf(name); err == nil && owner != tenant.ID(rec.TenantID) {
			o.logger.ErrorContext(ctx, "row tenant does not match its schema",
				logger.Component("fanout"),
				logger.Schema(rec.SchemaName),
				logger.TenantID(rec.TenantID),
			)
			return nil, tenant.ErrTenantMismatch
		}

		agg, err := pgstore.Decode[T, A](rec.toRecord())
		if err != nil {
			return nil, err
		}
		out = append(out, Row[A]{Schema: name, Aggregate: agg})
	}
	return out, nil
}

type record struct {
	SchemaName string
	ID         string
	TenantID   string
	Version    int64
	Data       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r record) toRecord() pgstore.Record {
	return pgstore.Record{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Version:   r.Version,
		Data:      r.Data,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
