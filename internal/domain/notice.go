package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NoticeType string

const NoticeTypePayOrQuit NoticeType = "pay_or_quit"

type NoticeStatus string

const (
	NoticeStatusGenerated NoticeStatus = "generated"
	NoticeStatusServed    NoticeStatus = "served"
	NoticeStatusResolved  NoticeStatus = "resolved"
	NoticeStatusExpired   NoticeStatus = "expired"
)

// ValidTransition checks if a notice status transition is allowed. Notices
// only move forward: generated->{served,resolved}, served->{resolved,expired}.
func (s NoticeStatus) ValidTransition(to NoticeStatus) bool {
	switch s {
	case NoticeStatusGenerated:
		return to == NoticeStatusServed || to == NoticeStatusResolved
	case NoticeStatusServed:
		return to == NoticeStatusResolved || to == NoticeStatusExpired
	default:
		return false
	}
}

// Active reports whether the notice still demands payment.
func (s NoticeStatus) Active() bool {
	return s == NoticeStatusGenerated || s == NoticeStatusServed
}

// DeliveryAction is an audit event against a notice document.
type DeliveryAction string

const (
	DeliveryGenerated  DeliveryAction = "generated"
	DeliveryDownloaded DeliveryAction = "downloaded"
	DeliverySent       DeliveryAction = "sent"
)

func (a DeliveryAction) Valid() bool {
	return a == DeliveryGenerated || a == DeliveryDownloaded || a == DeliverySent
}

// LegalNotice is a demand tied to one persisted rent record. AmountOwed is
// fixed at generation and never recomputed. Notices are never deleted.
type LegalNotice struct {
	ID            uuid.UUID
	ManagerID     uuid.UUID
	TenantID      uuid.UUID
	RentRecordID  uuid.UUID
	NoticeType    NoticeType
	Jurisdiction  string
	AmountOwed    decimal.Decimal
	DaysToPay     int
	GeneratedDate time.Time
	ServedDate    *time.Time
	Status        NoticeStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Deadline is the last day of the cure period.
func (n *LegalNotice) Deadline() time.Time {
	return n.GeneratedDate.AddDate(0, 0, n.DaysToPay)
}

type NoticeRepository interface {
	Create(ctx context.Context, n *LegalNotice) error
	GetByID(ctx context.Context, managerID, id uuid.UUID) (*LegalNotice, error)
	ListByRecord(ctx context.Context, managerID, recordID uuid.UUID) ([]*LegalNotice, error)
	ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*LegalNotice, error)
	ListActive(ctx context.Context, managerID uuid.UUID) ([]*LegalNotice, error)
	// UpdateStatus sets status and served date, guarded by the expected current status.
	UpdateStatus(ctx context.Context, managerID, id uuid.UUID, from, to NoticeStatus, servedDate *time.Time) error
}
