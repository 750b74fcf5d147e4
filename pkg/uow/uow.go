package uow

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantkit/pkg/schema"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Hook runs after a successful commit. Its context is detached from the
// caller's cancellation since the change is already durable.
type Hook func(ctx context.Context)

type state uint8

const (
	stateOpen state = iota
	stateCommitted
	stateRolledBack
)

// UnitOfWork is one transaction bound to a tenant scope and schema.
type UnitOfWork struct {
	scope  tenant.Scope
	schema schema.Name
	tx     pgx.Tx

	mu    sync.Mutex
	state state
	hooks []Hook
}

// New wraps an open transaction.
func New(scope tenant.Scope, name schema.Name, tx pgx.Tx) *UnitOfWork {
	return &UnitOfWork{scope: scope, schema: name, tx: tx}
}

// Scope returns the tenant scope the unit of work was opened for.
func (u *UnitOfWork) Scope() tenant.Scope { return u.scope }

// Schema returns the schema bound to the transaction.
func (u *UnitOfWork) Schema() schema.Name { return u.schema }

// Tx returns the underlying transaction.
func (u *UnitOfWork) Tx() pgx.Tx { return u.tx }

// AfterCommit registers fn to run once after a successful commit.
func (u *UnitOfWork) AfterCommit(fn Hook) error {
	if fn == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != stateOpen {
		return ErrClosed
	}
	u.hooks = append(u.hooks, fn)
	return nil
}

// Done reports whether the unit of work has committed or rolled back.
func (u *UnitOfWork) Done() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state != stateOpen
}

// Commit commits the transaction and then runs the registered hooks.
// If the commit fails the hooks are discarded and never run.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	if u.state != stateOpen {
		u.mu.Unlock()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		u.mu.Unlock()
		return errors.Join(ErrCommitFailed, err, u.Rollback(context.WithoutCancel(ctx)))
	}

	if err := u.tx.Commit(ctx); err != nil {
		u.state = stateRolledBack
		u.hooks = nil
		u.mu.Unlock()
		return errors.Join(ErrCommitFailed, err)
	}
	u.state = stateCommitted
	hooks := u.hooks
	u.hooks = nil
	u.mu.Unlock()

	hookCtx := context.WithoutCancel(ctx)
	for _, h := range hooks {
		h(hookCtx)
	}
	return nil
}

// Rollback aborts the transaction and discards the hooks. Rolling back a
// completed unit of work is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	if u.state != stateOpen {
		u.mu.Unlock()
		return nil
	}
	u.state = stateRolledBack
	u.hooks = nil
	u.mu.Unlock()

	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying u.
func WithContext(ctx context.Context, u *UnitOfWork) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the unit of work carried by ctx if it is still open.
func FromContext(ctx context.Context) (*UnitOfWork, bool) {
	u, ok := ctx.Value(contextKey{}).(*UnitOfWork)
	if !ok || u == nil || u.Done() {
		return nil, false
	}
	return u, true
}

// Active reports whether ctx carries an open unit of work.
func Active(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}
