package tenant

// Scope is the explicit handle of one tenant-scoped operation.
// It is created once per inbound operation by Run (or the HTTP middleware)
// and passed to every gateway and repository call.
// The zero value means "no tenant".
type Scope struct {
	id ID
}

// NewScope builds a scope for an already validated id.
func NewScope(id ID) (Scope, error) {
	if !id.Valid() {
		return Scope{}, ErrInvalidIdentifier
	}
	return Scope{id: id}, nil
}

// TenantID returns the tenant the scope is pinned to.
func (s Scope) TenantID() ID { return s.id }

// IsZero reports whether the scope carries no tenant.
func (s Scope) IsZero() bool { return s.id == "" }

// Require returns ErrMissingTenantContext for the zero scope.
func (s Scope) Require() (ID, error) {
	if s.IsZero() {
		return "", ErrMissingTenantContext
	}
	return s.id, nil
}

// Owns reports whether a record owned by id may be touched through this scope.
func (s Scope) Owns(id ID) bool {
	return !s.IsZero() && s.id == id
}
