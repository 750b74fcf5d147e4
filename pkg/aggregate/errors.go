package aggregate

import "errors"

var (
	// ErrNotFound is returned when no aggregate with the id exists in the tenant's schema.
	ErrNotFound = errors.New("aggregate not found")

	// ErrOptimisticConflict is returned when a save was based on a stale version.
	// The caller may reload and retry.
	ErrOptimisticConflict = errors.New("optimistic concurrency conflict")

	// ErrInvalidAggregate is returned for aggregates without an id or tenant.
	ErrInvalidAggregate = errors.New("invalid aggregate")

	// ErrInvalidFilter is returned for filters using fields outside the allowed set.
	ErrInvalidFilter = errors.New("invalid filter")
)
