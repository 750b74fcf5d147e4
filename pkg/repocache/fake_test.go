package repocache_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

type item struct {
	aggregate.Root
	Name string `json:"name"`
}

// memoryRepo is a minimal tenant-partitioned repository that counts calls.
type memoryRepo struct {
	mu    sync.Mutex
	rows  map[tenant.ID]map[string]item
	calls map[string]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[tenant.ID]map[string]item), calls: make(map[string]int)}
}

func (r *memoryRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *memoryRepo) Save(_ context.Context, scope tenant.Scope, a *item) (*item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["save"]++

	if a.TenantID != scope.TenantID() {
		return nil, tenant.ErrTenantMismatch
	}
	rows := r.rows[scope.TenantID()]
	if rows == nil {
		rows = make(map[string]item)
		r.rows[scope.TenantID()] = rows
	}
	if cur, ok := rows[a.ID]; ok && cur.Version != a.Version || !ok && a.Version != 0 {
		return nil, aggregate.ErrOptimisticConflict
	}
	stored := *a
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	stored.ClearEvents()
	rows[a.ID] = stored
	out := stored
	return &out, nil
}

func (r *memoryRepo) FindByID(_ context.Context, scope tenant.Scope, id string) (*item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["find"]++

	row, ok := r.rows[scope.TenantID()][id]
	if !ok {
		return nil, aggregate.ErrNotFound
	}
	return &row, nil
}

func (r *memoryRepo) FindByFilter(context.Context, tenant.Scope, aggregate.Filter) ([]*item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["filter"]++
	return nil, nil
}

func (r *memoryRepo) Search(context.Context, tenant.Scope, string, int) ([]*item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["search"]++
	return nil, nil
}

func (r *memoryRepo) DeleteByID(_ context.Context, scope tenant.Scope, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls["delete"]++

	if _, ok := r.rows[scope.TenantID()][id]; !ok {
		return aggregate.ErrNotFound
	}
	delete(r.rows[scope.TenantID()], id)
	return nil
}

// brokenStore fails every call.
type brokenStore struct{}

var errBroken = errors.New("connection refused")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errBroken
}
func (brokenStore) Delete(context.Context, ...string) error { return errBroken }
