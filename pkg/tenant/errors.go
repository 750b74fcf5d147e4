package tenant

import "errors"

var (
	// ErrMissingTenantContext is returned when a tenant-scoped operation runs without a scope.
	// It always indicates a programming error and must never be defaulted.
	ErrMissingTenantContext = errors.New("missing tenant context")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrTenantMismatch is returned when a record, nested operation or cached value
	// belongs to a tenant other than the one in scope.
	ErrTenantMismatch = errors.New("tenant mismatch")
)
