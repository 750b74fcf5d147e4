// Package tenant carries the caller's tenant identity through a tenant-scoped operation.
//
// Tenant identity is modelled as an explicit value rather than hidden global state:
// a validated ID is wrapped in a Scope, created once per inbound operation and passed
// to every gateway and repository call. The scope is additionally stored in the
// context so deeply nested code and the logger can read it.
//
// # Usage
//
//	err := tenant.Run(ctx, "acme", func(ctx context.Context, scope tenant.Scope) error {
//		loc, err := locations.FindByID(ctx, scope, "A-01-03")
//		...
//	})
//
// HTTP services resolve the identifier with one of the Resolver strategies
// (header, subdomain, path, chi URL parameter or a composite of them):
//
//	r.Use(tenant.Middleware(tenant.NewHeaderResolver("X-Tenant-ID")))
//	r.With(tenant.RequireTenant(nil)).Get("/locations/{id}", handler)
//
// # Error Handling
//
//   - ErrMissingTenantContext: a tenant-scoped call was made without a scope. Fatal.
//   - ErrInvalidIdentifier: the raw identifier does not match [A-Za-z0-9_-]+ or its escaped form exceeds MaxIDLength.
//   - ErrTenantMismatch: a record or nested operation belongs to another tenant.
package tenant
