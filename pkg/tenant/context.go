package tenant

import (
	"context"
	"errors"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithScope stores the scope in the context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// ScopeFromContext retrieves the scope from the context.
// Returns the zero scope and false if none is set.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(contextKey{}).(Scope)
	if !ok || scope.IsZero() {
		return Scope{}, false
	}
	return scope, true
}

// RequireScope returns the scope from the context or ErrMissingTenantContext.
func RequireScope(ctx context.Context) (Scope, error) {
	scope, ok := ScopeFromContext(ctx)
	if !ok {
		return Scope{}, ErrMissingTenantContext
	}
	return scope, nil
}

// IDFromContext retrieves just the tenant ID from the context.
func IDFromContext(ctx context.Context) (ID, bool) {
	scope, ok := ScopeFromContext(ctx)
	return scope.TenantID(), ok
}

// Run executes op pinned to the given tenant. The raw id is validated first,
// the scope is set exactly once and is gone when op returns.
//
// Running nested under another tenant's scope fails with ErrTenantMismatch;
// nesting under the same tenant reuses the outer scope.
func Run(ctx context.Context, rawID string, op func(ctx context.Context, scope Scope) error) error {
	id, err := ParseID(rawID)
	if err != nil {
		return err
	}

	if outer, ok := ScopeFromContext(ctx); ok {
		if outer.TenantID() != id {
			return errors.Join(ErrTenantMismatch, errors.New("nested operation for a different tenant"))
		}
		return op(ctx, outer)
	}

	scope := Scope{id: id}
	return op(WithScope(ctx, scope), scope)
}

// Effective returns the scope an operation should run under: the explicit scope
// when set, otherwise the one in ctx. Both present and different is a mismatch.
func Effective(ctx context.Context, scope Scope) (Scope, error) {
	fromCtx, ok := ScopeFromContext(ctx)
	switch {
	case scope.IsZero() && !ok:
		return Scope{}, ErrMissingTenantContext
	case scope.IsZero():
		return fromCtx, nil
	case ok && fromCtx.TenantID() != scope.TenantID():
		return Scope{}, ErrTenantMismatch
	default:
		return scope, nil
	}
}

// LoggerExtractor returns a ContextExtractor for the logger that extracts tenant ID from context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
