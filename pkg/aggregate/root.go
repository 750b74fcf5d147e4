package aggregate

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/event"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Aggregate is implemented by any pointer to a struct embedding Root.
type Aggregate interface {
	Base() *Root
}

// Root holds the fields every stored aggregate has. Version is 0 until the
// first save and is maintained by the store afterwards.
type Root struct {
	ID        string    `json:"id"`
	TenantID  tenant.ID `json:"tenant_id"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	events []event.Event
}

// NewRoot returns a root with a fresh id owned by tenantID.
func NewRoot(tenantID tenant.ID) Root {
	return Root{ID: uuid.NewString(), TenantID: tenantID}
}

// Base implements Aggregate.
func (r *Root) Base() *Root { return r }

// IsNew reports whether the aggregate has never been saved.
func (r *Root) IsNew() bool { return r.Version == 0 }

// Validate checks the identity fields.
func (r *Root) Validate() error {
	switch {
	case r.ID == "":
		return errors.Join(ErrInvalidAggregate, errors.New("empty id"))
	case !r.TenantID.Valid():
		return errors.Join(ErrInvalidAggregate, tenant.ErrInvalidIdentifier)
	case r.Version < 0:
		return errors.Join(ErrInvalidAggregate, errors.New("negative version"))
	}
	return nil
}

// Record appends e to the pending events, filling in the aggregate id and tenant.
func (r *Root) Record(e event.Event) {
	if e.AggregateID == "" {
		e.AggregateID = r.ID
	}
	if e.TenantID == "" {
		e.TenantID = r.TenantID.String()
	}
	r.events = append(r.events, e)
}

// PendingEvents returns a copy of the events recorded since the last ClearEvents.
func (r *Root) PendingEvents() []event.Event {
	return slices.Clone(r.events)
}

// ClearEvents drops the pending events.
func (r *Root) ClearEvents() {
	r.events = nil
}
