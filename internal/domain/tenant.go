package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenant is a lessee and the lease terms the ledger derives obligations from.
type Tenant struct {
	ID              uuid.UUID
	ManagerID       uuid.UUID
	Name            string
	Email           string // optional
	Phone           string // optional
	PropertyAddress string
	Unit            string // optional
	RentAmount      decimal.Decimal
	RentDueDay      int // day of month, 1-31
	LeaseStart      *time.Time
	LeaseEnd        *time.Time
	SecurityDeposit *decimal.Decimal
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate checks the lease terms required by the ledger.
func (t *Tenant) Validate() error {
	if t.ManagerID == uuid.Nil {
		return Invalid("manager_id", "is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return Invalid("name", "is required")
	}
	if strings.TrimSpace(t.PropertyAddress) == "" {
		return Invalid("property_address", "is required")
	}
	if !t.RentAmount.IsPositive() {
		return Invalid("rent_amount", "must be positive")
	}
	if err := CheckMoney("rent_amount", t.RentAmount); err != nil {
		return err
	}
	if t.RentDueDay < 1 || t.RentDueDay > 31 {
		return Invalid("rent_due_date", "must be between 1 and 31")
	}
	if t.SecurityDeposit != nil && t.SecurityDeposit.IsNegative() {
		return Invalid("security_deposit", "must not be negative")
	}
	if t.SecurityDeposit != nil {
		if err := CheckMoney("security_deposit", *t.SecurityDeposit); err != nil {
			return err
		}
	}
	if t.LeaseStart != nil && t.LeaseEnd != nil && t.LeaseEnd.Before(*t.LeaseStart) {
		return Invalid("lease_end", "must not precede lease_start")
	}
	return nil
}

// DueDateIn returns the tenant's due date for the given month. Due days past
// the end of a short month clamp to its last day (31 in February -> 28 or 29).
func (t *Tenant) DueDateIn(year int, month time.Month) time.Time {
	day := t.RentDueDay
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date(year, month, day)
}

// DisplayAddress joins the property address and unit for notices and views.
func (t *Tenant) DisplayAddress() string {
	if t.Unit == "" {
		return t.PropertyAddress
	}
	return t.PropertyAddress + ", Unit " + t.Unit
}

type TenantRepository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, managerID, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context, managerID uuid.UUID) ([]*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	Delete(ctx context.Context, managerID, id uuid.UUID) error
}
