package aggregate

import (
	"context"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Repository is the tenant-scoped persistence contract for one aggregate type.
// Every method fails with tenant.ErrMissingTenantContext for a zero scope and
// never returns an aggregate owned by another tenant.
type Repository[A Aggregate] interface {
	// Save inserts (version 0) or updates (version n) the aggregate and returns
	// a freshly loaded copy carrying server-assigned fields.
	Save(ctx context.Context, scope tenant.Scope, agg A) (A, error)
	FindByID(ctx context.Context, scope tenant.Scope, id string) (A, error)
	FindByFilter(ctx context.Context, scope tenant.Scope, filter Filter) ([]A, error)
	// Search matches text against the whole document.
	Search(ctx context.Context, scope tenant.Scope, text string, limit int) ([]A, error)
	DeleteByID(ctx context.Context, scope tenant.Scope, id string) error
}
