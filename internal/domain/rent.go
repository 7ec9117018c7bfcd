package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RentStatus string

const (
	RentStatusPending RentStatus = "pending"
	RentStatusPartial RentStatus = "partial"
	RentStatusPaid    RentStatus = "paid"
	RentStatusOverdue RentStatus = "overdue"
)

// Valid reports whether s is a known rent status.
func (s RentStatus) Valid() bool {
	switch s {
	case RentStatusPending, RentStatusPartial, RentStatusPaid, RentStatusOverdue:
		return true
	default:
		return false
	}
}

// ValidTransition checks if a rent status transition is allowed.
// Allowed: pending->{paid,overdue,partial}, overdue->{paid,partial}, partial->paid.
// Paid is terminal for its period.
func (s RentStatus) ValidTransition(to RentStatus) bool {
	switch s {
	case RentStatusPending:
		return to == RentStatusPaid || to == RentStatusOverdue || to == RentStatusPartial
	case RentStatusOverdue:
		return to == RentStatusPaid || to == RentStatusPartial
	case RentStatusPartial:
		return to == RentStatusPaid
	default:
		return false
	}
}

var ErrInvalidTransition = errors.New("domain: invalid state transition")

// RentRecord is one persisted ledger line: one tenant, one due date.
// At most one record exists per tenant per calendar month (keyed by Period).
type RentRecord struct {
	ID            uuid.UUID
	ManagerID     uuid.UUID
	TenantID      uuid.UUID
	DueDate       time.Time
	Period        time.Time // first day of the due date's month
	AmountDue     decimal.Decimal
	AmountPaid    decimal.Decimal
	LateFees      decimal.Decimal
	Status        RentStatus
	PaidDate      *time.Time
	PaymentMethod *string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalDue is the rent plus any late fees.
func (r *RentRecord) TotalDue() decimal.Decimal {
	return r.AmountDue.Add(r.LateFees)
}

// Outstanding is the unpaid balance, never negative.
func (r *RentRecord) Outstanding() decimal.Decimal {
	bal := r.TotalDue().Sub(r.AmountPaid)
	if bal.IsNegative() {
		return decimal.Zero
	}
	return bal
}

// StatusFor derives the status a record with the given amounts should carry
// on the civil date today.
func StatusFor(amountDue, amountPaid, lateFees decimal.Decimal, dueDate, today time.Time) RentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(amountDue.Add(lateFees)):
		return RentStatusPaid
	case amountPaid.IsPositive():
		return RentStatusPartial
	case dueDate.Before(today):
		return RentStatusOverdue
	default:
		return RentStatusPending
	}
}

type RentRecordRepository interface {
	Create(ctx context.Context, r *RentRecord) error
	// Upsert inserts r unless a record already exists for (r.TenantID, r.Period),
	// in which case the existing record is returned and created is false.
	Upsert(ctx context.Context, r *RentRecord) (rec *RentRecord, created bool, err error)
	GetByID(ctx context.Context, managerID, id uuid.UUID) (*RentRecord, error)
	GetByPeriod(ctx context.Context, managerID, tenantID uuid.UUID, period time.Time) (*RentRecord, error)
	ListByManager(ctx context.Context, managerID uuid.UUID) ([]*RentRecord, error)
	ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*RentRecord, error)
	Update(ctx context.Context, r *RentRecord) error
	// MarkOverdue flips pending records due before the given date to overdue.
	MarkOverdue(ctx context.Context, managerID uuid.UUID, before time.Time) (int64, error)
}
