package v1

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/leasehold/internal/auth"
	"github.com/gosuda/leasehold/internal/domain"
	"github.com/gosuda/leasehold/internal/ledger"
	"github.com/gosuda/leasehold/internal/notice"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Tenants() domain.TenantRepository
}

// AuthService abstracts manager account operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, reg auth.Registration) (*domain.Manager, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	GetManager(ctx context.Context, managerID uuid.UUID) (*domain.Manager, error)
	UpdateProfile(ctx context.Context, managerID uuid.UUID, p auth.Profile) (*domain.Manager, error)
}

// LedgerService abstracts rent ledger operations for handler testing.
// *ledger.Service satisfies this interface.
type LedgerService interface {
	Location() *time.Location
	CurrentEntries(ctx context.Context, managerID uuid.UUID, asOf time.Time) ([]ledger.Entry, error)
	Summary(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*ledger.PeriodSummary, error)
	RecordPayment(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef, p ledger.Payment) (*domain.RentRecord, error)
	UpsertPeriodRecord(ctx context.Context, managerID uuid.UUID, e ledger.ManualEntry) (*domain.RentRecord, bool, error)
	RefreshOverdue(ctx context.Context, managerID uuid.UUID, asOf time.Time) (int64, error)
	Get(ctx context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error)
	ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error)
}

// NoticeService abstracts notice operations for handler testing.
// *notice.Engine satisfies this interface.
type NoticeService interface {
	Location() *time.Location
	Jurisdictions() *notice.Registry
	GenerateNotice(ctx context.Context, managerID uuid.UUID, req notice.Request) (*domain.LegalNotice, error)
	RecordDeliveryAction(ctx context.Context, managerID, noticeID uuid.UUID, action domain.DeliveryAction) (*domain.LegalNotice, error)
	Transition(ctx context.Context, managerID, noticeID uuid.UUID, to domain.NoticeStatus) (*domain.LegalNotice, error)
	Reconcile(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*notice.ReconcileResult, error)
	Document(ctx context.Context, managerID, noticeID uuid.UUID) (*notice.Document, error)
	Get(ctx context.Context, managerID, noticeID uuid.UUID) (*domain.LegalNotice, error)
	ListByRecord(ctx context.Context, managerID, recordID uuid.UUID) ([]*domain.LegalNotice, error)
	ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.LegalNotice, error)
	ListActive(ctx context.Context, managerID uuid.UUID) ([]*domain.LegalNotice, error)
}
