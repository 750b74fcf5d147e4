package pgstore

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/aggregate"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// Columns is the select list shared by every query on a document table.
const Columns = "id, tenant_id, version, data, created_at, updated_at"

// Record is one row of a document table.
type Record struct {
	ID        string
	TenantID  string
	Version   int64
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Decode builds an aggregate from a row. Column values win over the copies
// inside the document, so version and timestamps are always the stored ones.
func Decode[T any, A interface {
	*T
	aggregate.Aggregate
}](rec Record) (A, error) {
	agg := A(new(T))
	if err := json.Unmarshal(rec.Data, agg); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	b := agg.Base()
	b.ID = rec.ID
	b.TenantID = tenant.ID(rec.TenantID)
	b.Version = rec.Version
	b.CreatedAt = rec.CreatedAt
	b.UpdatedAt = rec.UpdatedAt
	b.ClearEvents()
	return agg, nil
}
