package v1_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/auth"
	"github.com/gosuda/leasehold/internal/domain"
	"github.com/gosuda/leasehold/internal/ledger"
	"github.com/gosuda/leasehold/internal/notice"
	"github.com/gosuda/leasehold/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers: inject the manager scope for *Ctx requests
// ---------------------------------------------------------------------------

func managerCtx(managerID uuid.UUID) context.Context {
	return middleware.WithManager(context.Background(), managerID, "pm@example.com")
}

func fixedManagerID() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
}

func sampleTenant(managerID uuid.UUID) *domain.Tenant {
	return &domain.Tenant{
		ID:              uuid.New(),
		ManagerID:       managerID,
		Name:            "Ada Lovelace",
		PropertyAddress: "12 Elm St",
		Unit:            "4B",
		RentAmount:      decimal.NewFromInt(1500),
		RentDueDay:      1,
	}
}

func sampleRecord(tenant *domain.Tenant, status domain.RentStatus) *domain.RentRecord {
	due := domain.Date(2024, time.March, 1)
	return &domain.RentRecord{
		ID:         uuid.New(),
		ManagerID:  tenant.ManagerID,
		TenantID:   tenant.ID,
		DueDate:    due,
		Period:     due,
		AmountDue:  tenant.RentAmount,
		AmountPaid: decimal.Zero,
		LateFees:   decimal.Zero,
		Status:     status,
	}
}

func sampleNotice(rec *domain.RentRecord) *domain.LegalNotice {
	return &domain.LegalNotice{
		ID:            uuid.New(),
		ManagerID:     rec.ManagerID,
		TenantID:      rec.TenantID,
		RentRecordID:  rec.ID,
		NoticeType:    domain.NoticeTypePayOrQuit,
		Jurisdiction:  notice.GenericJurisdiction,
		AmountOwed:    decimal.NewFromInt(1500),
		DaysToPay:     30,
		GeneratedDate: domain.Date(2024, time.March, 15),
		Status:        domain.NoticeStatusGenerated,
	}
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	tenants domain.TenantRepository
}

func (m *mockDataStore) Tenants() domain.TenantRepository { return m.tenants }

// ---------------------------------------------------------------------------
// Mock TenantRepository
// ---------------------------------------------------------------------------

type mockTenantRepo struct {
	createFunc  func(ctx context.Context, t *domain.Tenant) error
	getByIDFunc func(ctx context.Context, managerID, id uuid.UUID) (*domain.Tenant, error)
	listFunc    func(ctx context.Context, managerID uuid.UUID) ([]*domain.Tenant, error)
	updateFunc  func(ctx context.Context, t *domain.Tenant) error
	deleteFunc  func(ctx context.Context, managerID, id uuid.UUID) error
}

func (m *mockTenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	return m.createFunc(ctx, t)
}

func (m *mockTenantRepo) GetByID(ctx context.Context, managerID, id uuid.UUID) (*domain.Tenant, error) {
	return m.getByIDFunc(ctx, managerID, id)
}

func (m *mockTenantRepo) List(ctx context.Context, managerID uuid.UUID) ([]*domain.Tenant, error) {
	return m.listFunc(ctx, managerID)
}

func (m *mockTenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTenantRepo) Delete(ctx context.Context, managerID, id uuid.UUID) error {
	return m.deleteFunc(ctx, managerID, id)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc      func(ctx context.Context, reg auth.Registration) (*domain.Manager, error)
	loginFunc         func(ctx context.Context, email, password string) (string, string, error)
	refreshTokenFunc  func(ctx context.Context, refreshToken string) (string, error)
	getManagerFunc    func(ctx context.Context, managerID uuid.UUID) (*domain.Manager, error)
	updateProfileFunc func(ctx context.Context, managerID uuid.UUID, p auth.Profile) (*domain.Manager, error)
}

func (m *mockAuthService) Register(ctx context.Context, reg auth.Registration) (*domain.Manager, error) {
	return m.registerFunc(ctx, reg)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

func (m *mockAuthService) GetManager(ctx context.Context, managerID uuid.UUID) (*domain.Manager, error) {
	return m.getManagerFunc(ctx, managerID)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, managerID uuid.UUID, p auth.Profile) (*domain.Manager, error) {
	return m.updateProfileFunc(ctx, managerID, p)
}

// ---------------------------------------------------------------------------
// Mock LedgerService
// ---------------------------------------------------------------------------

type mockLedgerService struct {
	currentEntriesFunc func(ctx context.Context, managerID uuid.UUID, asOf time.Time) ([]ledger.Entry, error)
	summaryFunc        func(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*ledger.PeriodSummary, error)
	recordPaymentFunc  func(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef, p ledger.Payment) (*domain.RentRecord, error)
	upsertFunc         func(ctx context.Context, managerID uuid.UUID, e ledger.ManualEntry) (*domain.RentRecord, bool, error)
	refreshOverdueFunc func(ctx context.Context, managerID uuid.UUID, asOf time.Time) (int64, error)
	getFunc            func(ctx context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error)
	listByTenantFunc   func(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error)
}

func (m *mockLedgerService) Location() *time.Location { return time.UTC }

func (m *mockLedgerService) CurrentEntries(ctx context.Context, managerID uuid.UUID, asOf time.Time) ([]ledger.Entry, error) {
	return m.currentEntriesFunc(ctx, managerID, asOf)
}

func (m *mockLedgerService) Summary(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*ledger.PeriodSummary, error) {
	return m.summaryFunc(ctx, managerID, asOf)
}

func (m *mockLedgerService) RecordPayment(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef, p ledger.Payment) (*domain.RentRecord, error) {
	return m.recordPaymentFunc(ctx, managerID, ref, p)
}

func (m *mockLedgerService) UpsertPeriodRecord(ctx context.Context, managerID uuid.UUID, e ledger.ManualEntry) (*domain.RentRecord, bool, error) {
	return m.upsertFunc(ctx, managerID, e)
}

func (m *mockLedgerService) RefreshOverdue(ctx context.Context, managerID uuid.UUID, asOf time.Time) (int64, error) {
	return m.refreshOverdueFunc(ctx, managerID, asOf)
}

func (m *mockLedgerService) Get(ctx context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error) {
	return m.getFunc(ctx, managerID, id)
}

func (m *mockLedgerService) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error) {
	return m.listByTenantFunc(ctx, managerID, tenantID)
}

// ---------------------------------------------------------------------------
// Mock NoticeService
// ---------------------------------------------------------------------------

type mockNoticeService struct {
	generateFunc     func(ctx context.Context, managerID uuid.UUID, req notice.Request) (*domain.LegalNotice, error)
	deliveryFunc     func(ctx context.Context, managerID, noticeID uuid.UUID, action domain.DeliveryAction) (*domain.LegalNotice, error)
	transitionFunc   func(ctx context.Context, managerID, noticeID uuid.UUID, to domain.NoticeStatus) (*domain.LegalNotice, error)
	reconcileFunc    func(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*notice.ReconcileResult, error)
	documentFunc     func(ctx context.Context, managerID, noticeID uuid.UUID) (*notice.Document, error)
	getFunc          func(ctx context.Context, managerID, noticeID uuid.UUID) (*domain.LegalNotice, error)
	listByRecordFunc func(ctx context.Context, managerID, recordID uuid.UUID) ([]*domain.LegalNotice, error)
	listByTenantFunc func(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.LegalNotice, error)
	listActiveFunc   func(ctx context.Context, managerID uuid.UUID) ([]*domain.LegalNotice, error)
}

func (m *mockNoticeService) Location() *time.Location { return time.UTC }

func (m *mockNoticeService) Jurisdictions() *notice.Registry { return notice.NewRegistry() }

func (m *mockNoticeService) GenerateNotice(ctx context.Context, managerID uuid.UUID, req notice.Request) (*domain.LegalNotice, error) {
	return m.generateFunc(ctx, managerID, req)
}

func (m *mockNoticeService) RecordDeliveryAction(ctx context.Context, managerID, noticeID uuid.UUID, action domain.DeliveryAction) (*domain.LegalNotice, error) {
	return m.deliveryFunc(ctx, managerID, noticeID, action)
}

func (m *mockNoticeService) Transition(ctx context.Context, managerID, noticeID uuid.UUID, to domain.NoticeStatus) (*domain.LegalNotice, error) {
	return m.transitionFunc(ctx, managerID, noticeID, to)
}

func (m *mockNoticeService) Reconcile(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*notice.ReconcileResult, error) {
	return m.reconcileFunc(ctx, managerID, asOf)
}

func (m *mockNoticeService) Document(ctx context.Context, managerID, noticeID uuid.UUID) (*notice.Document, error) {
	return m.documentFunc(ctx, managerID, noticeID)
}

func (m *mockNoticeService) Get(ctx context.Context, managerID, noticeID uuid.UUID) (*domain.LegalNotice, error) {
	return m.getFunc(ctx, managerID, noticeID)
}

func (m *mockNoticeService) ListByRecord(ctx context.Context, managerID, recordID uuid.UUID) ([]*domain.LegalNotice, error) {
	return m.listByRecordFunc(ctx, managerID, recordID)
}

func (m *mockNoticeService) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.LegalNotice, error) {
	return m.listByTenantFunc(ctx, managerID, tenantID)
}

func (m *mockNoticeService) ListActive(ctx context.Context, managerID uuid.UUID) ([]*domain.LegalNotice, error) {
	return m.listActiveFunc(ctx, managerID)
}
