package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
	"github.com/dmitrymomot/tenantkit/pkg/uow"
)

const tracerName = "github.com/dmitrymomot/tenantkit/pkg/session"

const bindSQL = "SELECT set_config('search_path', $1, true)"

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// Provisioner makes sure a schema exists before it is bound.
type Provisioner interface {
	EnsureReady(ctx context.Context, name schema.Name) error
}

// Func is the work done inside a unit of work. ctx carries u.
type Func func(ctx context.Context, u *uow.UnitOfWork) error

// Gateway runs tenant-scoped work inside schema-bound transactions.
type Gateway struct {
	db          DB
	provisioner Provisioner
	logger      *slog.Logger
	tracer      trace.Tracer
	txOptions   pgx.TxOptions
}

// New creates a gateway.
func New(db DB, provisioner Provisioner, opts ...Option) *Gateway {
	g := &Gateway{
		db:          db,
		provisioner: provisioner,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Read runs fn in the tenant's schema.
func (g *Gateway) Read(ctx context.Context, scope tenant.Scope, fn Func) error {
	return g.run(ctx, "session.read", scope, nil, fn)
}

// Write runs fn in the tenant's schema after checking that owner is the tenant in scope.
func (g *Gateway) Write(ctx context.Context, scope tenant.Scope, owner tenant.ID, fn Func) error {
	return g.run(ctx, "session.write", scope, &owner, fn)
}

// Schema resolves the tenant's schema and makes sure it exists, without opening a transaction.
func (g *Gateway) Schema(ctx context.Context, scope tenant.Scope) (schema.Name, error) {
	scope, err := tenant.Effective(ctx, scope)
	if err != nil {
		return "", err
	}
	return g.prepare(ctx, scope)
}

func (g *Gateway) run(ctx context.Context, op string, scope tenant.Scope, owner *tenant.ID, fn Func) error {
	if fn == nil {
		return ErrNilOperation
	}

	scope, err := tenant.Effective(ctx, scope)
	if err != nil {
		return err
	}
	if owner != nil && !scope.Owns(*owner) {
		return tenant.ErrTenantMismatch
	}

	if outer, ok := uow.FromContext(ctx); ok {
		if outer.Scope().TenantID() != scope.TenantID() {
			return tenant.ErrTenantMismatch
		}
		return fn(ctx, outer)
	}

	name, err := g.prepare(ctx, scope)
	if err != nil {
		return err
	}

	ctx, span := g.tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tenant.id", scope.TenantID().String()),
			attribute.String("db.schema", name.String()),
		),
	)
	defer span.End()

	if err := g.transact(ctx, scope, name, fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (g *Gateway) prepare(ctx context.Context, scope tenant.Scope) (schema.Name, error) {
	name, err := schema.Resolve(scope.TenantID())
	if err != nil {
		return "", err
	}
	if err := g.provisioner.EnsureReady(ctx, name); err != nil {
		return "", err
	}
	return name, nil
}

func (g *Gateway) transact(ctx context.Context, scope tenant.Scope, name schema.Name, fn Func) error {
	ident, err := name.Ident()
	if err != nil {
		return err
	}

	tx, err := g.db.BeginTx(ctx, g.txOptions)
	if err != nil {
		return errors.Join(ErrBeginFailed, err)
	}
	u := uow.New(scope, name, tx)

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if _, err := tx.Exec(ctx, bindSQL, ident); err != nil {
		return errors.Join(ErrBindSchema, err, u.Rollback(context.WithoutCancel(ctx)))
	}

	if err := fn(tenant.WithScope(uow.WithContext(ctx, u), scope), u); err != nil {
		return errors.Join(err, u.Rollback(context.WithoutCancel(ctx)))
	}

	if err := u.Commit(ctx); err != nil {
		g.logger.ErrorContext(ctx, "unit of work commit failed",
			logger.Component("session"),
			logger.TenantID(scope.TenantID().String()),
			logger.Schema(name.String()),
			logger.Error(err),
		)
		return err
	}
	return nil
}
