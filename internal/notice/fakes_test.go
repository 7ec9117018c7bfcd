package notice_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/domain"
)

// ---------------------------------------------------------------------------
// Materializer backed by a record map
// ---------------------------------------------------------------------------

type fakeLedger struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*domain.Tenant
	records map[uuid.UUID]*domain.RentRecord
	created int
	calls   int
}

func (f *fakeLedger) Materialize(_ context.Context, managerID uuid.UUID, ref domain.ObligationRef) (*domain.RentRecord, bool, error) {
	if err := ref.Validate(); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if !ref.IsProjected() {
		r, ok := f.records[*ref.RecordID]
		if !ok || r.ManagerID != managerID {
			return nil, false, domain.ErrNotFound
		}
		return r, false, nil
	}
	for _, r := range f.records {
		if r.TenantID == ref.TenantID && domain.SamePeriod(r.DueDate, ref.DueDate) {
			return r, false, nil
		}
	}
	t, ok := f.tenants[ref.TenantID]
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	r := &domain.RentRecord{
		ID:        uuid.New(),
		ManagerID: managerID,
		TenantID:  t.ID,
		DueDate:   ref.DueDate,
		Period:    domain.PeriodOf(ref.DueDate),
		AmountDue: t.RentAmount,
		Status:    domain.RentStatusOverdue,
	}
	f.records[r.ID] = r
	f.created++
	return r, true, nil
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type memTenants struct {
	tenants map[uuid.UUID]*domain.Tenant
}

func (m *memTenants) Create(context.Context, *domain.Tenant) error { return nil }
func (m *memTenants) GetByID(_ context.Context, managerID, id uuid.UUID) (*domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok || t.ManagerID != managerID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
func (m *memTenants) List(context.Context, uuid.UUID) ([]*domain.Tenant, error) { return nil, nil }
func (m *memTenants) Update(context.Context, *domain.Tenant) error              { return nil }
func (m *memTenants) Delete(context.Context, uuid.UUID, uuid.UUID) error        { return nil }

// memRecords shares the fake ledger's record map so the real ledger service
// and the engine see the same rows.
type memRecords struct {
	ledger *fakeLedger
}

func (m *memRecords) Create(_ context.Context, r *domain.RentRecord) error {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	cp := *r
	m.ledger.records[r.ID] = &cp
	return nil
}

func (m *memRecords) Upsert(_ context.Context, r *domain.RentRecord) (*domain.RentRecord, bool, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	for _, existing := range m.ledger.records {
		if existing.TenantID == r.TenantID && existing.Period.Equal(r.Period) {
			cp := *existing
			return &cp, false, nil
		}
	}
	cp := *r
	m.ledger.records[r.ID] = &cp
	m.ledger.created++
	return r, true, nil
}

func (m *memRecords) GetByID(_ context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	r, ok := m.ledger.records[id]
	if !ok || r.ManagerID != managerID {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) GetByPeriod(_ context.Context, managerID, tenantID uuid.UUID, period time.Time) (*domain.RentRecord, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	for _, r := range m.ledger.records {
		if r.ManagerID == managerID && r.TenantID == tenantID && r.Period.Equal(period) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRecords) ListByManager(_ context.Context, managerID uuid.UUID) ([]*domain.RentRecord, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	var out []*domain.RentRecord
	for _, r := range m.ledger.records {
		if r.ManagerID == managerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRecords) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error) {
	all, _ := m.ListByManager(ctx, managerID)
	var out []*domain.RentRecord
	for _, r := range all {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRecords) Update(_ context.Context, r *domain.RentRecord) error {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	if _, ok := m.ledger.records[r.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *r
	m.ledger.records[r.ID] = &cp
	return nil
}

func (m *memRecords) MarkOverdue(context.Context, uuid.UUID, time.Time) (int64, error) {
	return 0, nil
}

func (m *memRecords) count() int {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	return len(m.ledger.records)
}

type memNotices struct {
	mu      sync.Mutex
	notices map[uuid.UUID]*domain.LegalNotice
	order   []uuid.UUID
}

func newMemNotices() *memNotices {
	return &memNotices{notices: make(map[uuid.UUID]*domain.LegalNotice)}
}

func (m *memNotices) Create(_ context.Context, n *domain.LegalNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notices[n.ID] = &cp
	m.order = append(m.order, n.ID)
	return nil
}

func (m *memNotices) GetByID(_ context.Context, managerID, id uuid.UUID) (*domain.LegalNotice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[id]
	if !ok || n.ManagerID != managerID {
		return nil, domain.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memNotices) filter(keep func(*domain.LegalNotice) bool) []*domain.LegalNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.LegalNotice
	for _, id := range m.order {
		if n := m.notices[id]; keep(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out
}

func (m *memNotices) ListByRecord(_ context.Context, managerID, recordID uuid.UUID) ([]*domain.LegalNotice, error) {
	return m.filter(func(n *domain.LegalNotice) bool {
		return n.ManagerID == managerID && n.RentRecordID == recordID
	}), nil
}

func (m *memNotices) ListByTenant(_ context.Context, managerID, tenantID uuid.UUID) ([]*domain.LegalNotice, error) {
	return m.filter(func(n *domain.LegalNotice) bool {
		return n.ManagerID == managerID && n.TenantID == tenantID
	}), nil
}

func (m *memNotices) ListActive(_ context.Context, managerID uuid.UUID) ([]*domain.LegalNotice, error) {
	return m.filter(func(n *domain.LegalNotice) bool {
		return n.ManagerID == managerID && n.Status.Active()
	}), nil
}

func (m *memNotices) UpdateStatus(_ context.Context, managerID, id uuid.UUID, from, to domain.NoticeStatus, servedDate *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notices[id]
	if !ok || n.ManagerID != managerID {
		return domain.ErrNotFound
	}
	if n.Status != from {
		return domain.ErrConflict
	}
	n.Status = to
	n.ServedDate = servedDate
	return nil
}

func (m *memNotices) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notices)
}

type memManagers struct {
	managers map[uuid.UUID]*domain.Manager
}

func (m *memManagers) Create(context.Context, *domain.Manager) error { return nil }
func (m *memManagers) GetByID(_ context.Context, id uuid.UUID) (*domain.Manager, error) {
	mg, ok := m.managers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return mg, nil
}
func (m *memManagers) GetByEmail(context.Context, string) (*domain.Manager, error) {
	return nil, domain.ErrNotFound
}
func (m *memManagers) Update(context.Context, *domain.Manager) error { return nil }

type memAudit struct {
	mu      sync.Mutex
	actions []string
}

func (m *memAudit) Record(_ context.Context, e *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, e.Action)
	return nil
}
func (m *memAudit) ListByManager(context.Context, uuid.UUID, int, int) ([]*domain.AuditEntry, error) {
	return nil, nil
}
func (m *memAudit) ListByResource(context.Context, uuid.UUID, string, uuid.UUID) ([]*domain.AuditEntry, error) {
	return nil, nil
}

type memEvents struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *memEvents) PublishEvent(_ context.Context, _ uuid.UUID, ev domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func sampleTenant(managerID uuid.UUID) *domain.Tenant {
	return &domain.Tenant{
		ID:              uuid.New(),
		ManagerID:       managerID,
		Name:            "Ada Lovelace",
		PropertyAddress: "12 Elm St, Springfield",
		Unit:            "4B",
		RentAmount:      decimal.RequireFromString("1500"),
		RentDueDay:      1,
	}
}

func sampleManager(id uuid.UUID) *domain.Manager {
	return &domain.Manager{
		ID:             id,
		Email:          "pm@example.com",
		Name:           "Grace Hopper",
		CompanyName:    "Hopper Property Management",
		MailingAddress: "1 Main St, Springfield",
		Phone:          "555-0100",
	}
}
