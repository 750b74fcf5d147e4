package aggregate

import (
	"errors"
	"fmt"
)

// MaxLimit caps the number of rows any collection query returns.
const MaxLimit = 1000

// Sortable fields. Anything else is rejected so order clauses never carry caller text.
const (
	SortID        = "id"
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortVersion   = "version"
)

// Order is one ORDER BY term.
type Order struct {
	Field string
	Desc  bool
}

// Filter selects aggregates by JSON containment on their document.
// Match {"status": "open"} selects documents whose status is "open".
type Filter struct {
	Match   map[string]any
	OrderBy []Order
	Limit   int
}

// Validate checks the order fields and the limit range.
func (f Filter) Validate() error {
	for _, o := range f.OrderBy {
		switch o.Field {
		case SortID, SortCreatedAt, SortUpdatedAt, SortVersion:
		default:
			return errors.Join(ErrInvalidFilter, fmt.Errorf("cannot order by %q", o.Field))
		}
	}
	if f.Limit < 0 || f.Limit > MaxLimit {
		return errors.Join(ErrInvalidFilter, fmt.Errorf("limit %d out of range", f.Limit))
	}
	return nil
}

// EffectiveLimit returns Limit, or MaxLimit when unset. Single-tenant queries
// without a limit return at most MaxLimit rows; page with an explicit Limit.
func (f Filter) EffectiveLimit() int {
	if f.Limit == 0 {
		return MaxLimit
	}
	return f.Limit
}
