package ledger_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/leasehold/internal/domain"
)

// ---------------------------------------------------------------------------
// In-memory TenantRepository
// ---------------------------------------------------------------------------

type memTenants struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]*domain.Tenant
	listErr error
}

func newMemTenants(ts ...*domain.Tenant) *memTenants {
	m := &memTenants{tenants: make(map[uuid.UUID]*domain.Tenant)}
	for _, t := range ts {
		m.tenants[t.ID] = t
	}
	return m
}

func (m *memTenants) Create(_ context.Context, t *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
	return nil
}

func (m *memTenants) GetByID(_ context.Context, managerID, id uuid.UUID) (*domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok || t.ManagerID != managerID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTenants) List(_ context.Context, managerID uuid.UUID) ([]*domain.Tenant, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Tenant
	for _, t := range m.tenants {
		if t.ManagerID == managerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memTenants) Update(_ context.Context, t *domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tenants[t.ID] = t
	return nil
}

func (m *memTenants) Delete(_ context.Context, _, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tenants, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory RentRecordRepository enforcing one record per (tenant, period)
// ---------------------------------------------------------------------------

type memRecords struct {
	mu        sync.Mutex
	records   map[uuid.UUID]*domain.RentRecord
	inserts   int
	updates   int
	updateErr error
}

func newMemRecords(rs ...*domain.RentRecord) *memRecords {
	m := &memRecords{records: make(map[uuid.UUID]*domain.RentRecord)}
	for _, r := range rs {
		m.records[r.ID] = r
	}
	return m
}

func (m *memRecords) byPeriodLocked(tenantID uuid.UUID, period time.Time) *domain.RentRecord {
	for _, r := range m.records {
		if r.TenantID == tenantID && domain.SamePeriod(r.DueDate, period) {
			return r
		}
	}
	return nil
}

func (m *memRecords) Create(_ context.Context, r *domain.RentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byPeriodLocked(r.TenantID, r.Period) != nil {
		return domain.ErrConflict
	}
	cp := *r
	m.records[r.ID] = &cp
	m.inserts++
	return nil
}

func (m *memRecords) Upsert(_ context.Context, r *domain.RentRecord) (*domain.RentRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.byPeriodLocked(r.TenantID, r.Period); existing != nil {
		cp := *existing
		return &cp, false, nil
	}
	cp := *r
	m.records[r.ID] = &cp
	m.inserts++
	out := cp
	return &out, true, nil
}

func (m *memRecords) GetByID(_ context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok || r.ManagerID != managerID {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) GetByPeriod(_ context.Context, managerID, tenantID uuid.UUID, period time.Time) (*domain.RentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.byPeriodLocked(tenantID, period)
	if r == nil || r.ManagerID != managerID {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRecords) ListByManager(_ context.Context, managerID uuid.UUID) ([]*domain.RentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RentRecord
	for _, r := range m.records {
		if r.ManagerID == managerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRecords) ListByTenant(_ context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RentRecord
	for _, r := range m.records {
		if r.ManagerID == managerID && r.TenantID == tenantID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.After(out[j].DueDate) })
	return out, nil
}

func (m *memRecords) Update(_ context.Context, r *domain.RentRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *r
	m.records[r.ID] = &cp
	m.updates++
	return nil
}

func (m *memRecords) MarkOverdue(_ context.Context, managerID uuid.UUID, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.records {
		if r.ManagerID == managerID && r.Status == domain.RentStatusPending && r.DueDate.Before(before) {
			r.Status = domain.RentStatusOverdue
			n++
		}
	}
	return n, nil
}

func (m *memRecords) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ---------------------------------------------------------------------------
// Audit and event recorders
// ---------------------------------------------------------------------------

type memAudit struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
	err     error
}

func (m *memAudit) Record(_ context.Context, e *domain.AuditEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAudit) ListByManager(context.Context, uuid.UUID, int, int) ([]*domain.AuditEntry, error) {
	return m.entries, nil
}

func (m *memAudit) ListByResource(context.Context, uuid.UUID, string, uuid.UUID) ([]*domain.AuditEntry, error) {
	return m.entries, nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action)
	}
	return out
}

type memEvents struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (m *memEvents) PublishEvent(_ context.Context, _ uuid.UUID, ev domain.Event) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

var errBoom = errors.New("connection reset")
