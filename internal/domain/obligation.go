package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentObligation is either a persisted RentRecord or a projection of rent
// that is owed for an elapsed due date but has no record yet.
type RentObligation interface {
	obligation()
	Tenant() uuid.UUID
	Due() time.Time
}

// Persisted wraps a real ledger record.
type Persisted struct {
	Record *RentRecord
}

// Projected is an implied, unpersisted overdue obligation. It always carries
// status overdue with nothing paid and no late fees.
type Projected struct {
	ManagerID       uuid.UUID
	TenantID        uuid.UUID
	DueDate         time.Time
	Amount          decimal.Decimal
	TenantName      string
	PropertyAddress string
	Unit            string
}

func (Persisted) obligation() {}
func (Projected) obligation() {}

func (p Persisted) Tenant() uuid.UUID { return p.Record.TenantID }
func (p Persisted) Due() time.Time    { return p.Record.DueDate }
func (p Projected) Tenant() uuid.UUID { return p.TenantID }
func (p Projected) Due() time.Time    { return p.DueDate }

// Status is always overdue for a projection.
func (Projected) Status() RentStatus { return RentStatusOverdue }

// Ref returns the reference that materializes this projection.
func (p Projected) Ref() ObligationRef {
	return ObligationRef{TenantID: p.TenantID, DueDate: p.DueDate}
}

// ObligationRef addresses an obligation from the outside. A set RecordID
// names a persisted record; otherwise TenantID and DueDate name a projection.
type ObligationRef struct {
	RecordID *uuid.UUID
	TenantID uuid.UUID
	DueDate  time.Time // zero falls back to today on materialization
}

// RecordRef references a persisted record.
func RecordRef(id uuid.UUID) ObligationRef {
	return ObligationRef{RecordID: &id}
}

// IsProjected reports whether the reference names an unpersisted obligation.
func (r ObligationRef) IsProjected() bool {
	return r.RecordID == nil
}

// Validate checks the reference is well formed.
func (r ObligationRef) Validate() error {
	if r.RecordID != nil {
		if *r.RecordID == uuid.Nil {
			return Invalid("record_id", "must not be the nil id")
		}
		return nil
	}
	if r.TenantID == uuid.Nil {
		return Invalid("tenant_id", "is required for a projected obligation")
	}
	return nil
}
