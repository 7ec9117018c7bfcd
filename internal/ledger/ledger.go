package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/domain"
)

// Service owns the tenant -> rent record derivation and the payment status
// lifecycle. It holds no per-call state; every operation runs against the
// repositories and returns.
type Service struct {
	tenants domain.TenantRepository
	records domain.RentRecordRepository
	audit   domain.AuditRepository
	events  domain.EventPublisher
	loc     *time.Location
	now     func() time.Time
}

// NewService creates a ledger service. loc is the zone in which calendar
// months and "today" are observed; nil means UTC. audit and events may be nil.
func NewService(
	tenants domain.TenantRepository,
	records domain.RentRecordRepository,
	audit domain.AuditRepository,
	events domain.EventPublisher,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		tenants: tenants,
		records: records,
		audit:   audit,
		events:  events,
		loc:     loc,
		now:     time.Now,
	}
}

// SetClock replaces the wall clock used for "today" and timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location returns the zone used for calendar arithmetic.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) today() time.Time {
	return domain.DateOf(s.now(), s.loc)
}

// dueAt is midnight of the calendar date due in the ledger's location.
func (s *Service) dueAt(due time.Time) time.Time {
	return time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, s.loc)
}

// Payment is money received by other means and logged against an obligation.
type Payment struct {
	Amount   decimal.Decimal
	PaidDate time.Time
	Method   string
	Notes    string
	// SettleInFull marks the record paid whatever the amount, for managers
	// who log a payment only once the period is settled.
	SettleInFull bool
}

func (p Payment) validate() error {
	if !p.Amount.IsPositive() {
		return domain.Invalid("amount_paid", "must be a positive amount")
	}
	if err := domain.CheckMoney("amount_paid", p.Amount); err != nil {
		return err
	}
	if p.PaidDate.IsZero() {
		return domain.Invalid("paid_date", "must be a valid date")
	}
	return nil
}

// ManualEntry is a direct ledger write not tied to a detected overdue gap.
type ManualEntry struct {
	TenantID      uuid.UUID
	DueDate       time.Time
	AmountDue     *decimal.Decimal // nil uses the tenant's rent amount
	AmountPaid    decimal.Decimal
	LateFees      decimal.Decimal
	PaidDate      *time.Time
	PaymentMethod string
	Notes         string
}

func (e ManualEntry) validate() error {
	if e.TenantID == uuid.Nil {
		return domain.Invalid("tenant_id", "is required")
	}
	if e.DueDate.IsZero() {
		return domain.Invalid("due_date", "must be a valid date")
	}
	if e.AmountDue != nil && !e.AmountDue.IsPositive() {
		return domain.Invalid("amount_due", "must be positive")
	}
	if e.AmountPaid.IsNegative() {
		return domain.Invalid("amount_paid", "must not be negative")
	}
	if e.LateFees.IsNegative() {
		return domain.Invalid("late_fees", "must not be negative")
	}
	if e.AmountDue != nil {
		if err := domain.CheckMoney("amount_due", *e.AmountDue); err != nil {
			return err
		}
	}
	if err := domain.CheckMoney("amount_paid", e.AmountPaid); err != nil {
		return err
	}
	return domain.CheckMoney("late_fees", e.LateFees)
}

// DeriveCurrentPeriodView returns every persisted record for the manager plus
// one projected overdue obligation for each tenant that has no record in the
// calendar month of asOf and whose due date in that month is strictly before
// asOf. Nothing is written. Results are ordered by due date, newest first.
func (s *Service) DeriveCurrentPeriodView(ctx context.Context, managerID uuid.UUID, asOf time.Time) ([]domain.RentObligation, error) {
	view, _, err := s.derive(ctx, managerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("ledger.Service.DeriveCurrentPeriodView: %w", err)
	}
	return view, nil
}

func (s *Service) derive(ctx context.Context, managerID uuid.UUID, asOf time.Time) ([]domain.RentObligation, map[uuid.UUID]*domain.Tenant, error) {
	records, err := s.records.ListByManager(ctx, managerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: %w", err)
	}

	tenants, err := s.tenants.List(ctx, managerID)
	if err != nil {
		return nil, nil, fmt.Errorf("list tenants: %w", err)
	}

	local := asOf.In(s.loc)
	year, month := local.Year(), local.Month()
	period := domain.Date(year, month, 1)

	covered := make(map[uuid.UUID]bool, len(records))
	view := make([]domain.RentObligation, 0, len(records)+len(tenants))
	for _, r := range records {
		if domain.SamePeriod(r.DueDate, period) {
			covered[r.TenantID] = true
		}
		view = append(view, domain.Persisted{Record: r})
	}

	byID := make(map[uuid.UUID]*domain.Tenant, len(tenants))
	for _, t := range tenants {
		byID[t.ID] = t
		if covered[t.ID] {
			continue
		}

		due := t.DueDateIn(year, month)
		if !s.dueAt(due).Before(asOf) {
			continue
		}

		view = append(view, domain.Projected{
			ManagerID:       managerID,
			TenantID:        t.ID,
			DueDate:         due,
			Amount:          t.RentAmount,
			TenantName:      t.Name,
			PropertyAddress: t.PropertyAddress,
			Unit:            t.Unit,
		})
	}

	sort.SliceStable(view, func(i, j int) bool {
		di, dj := view[i].Due(), view[j].Due()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return tenantName(byID, view[i]) < tenantName(byID, view[j])
	})

	return view, byID, nil
}

func tenantName(byID map[uuid.UUID]*domain.Tenant, o domain.RentObligation) string {
	if p, ok := o.(domain.Projected); ok {
		return p.TenantName
	}
	if t := byID[o.Tenant()]; t != nil {
		return t.Name
	}
	return ""
}

// CurrentEntries is DeriveCurrentPeriodView flattened into display rows.
func (s *Service) CurrentEntries(ctx context.Context, managerID uuid.UUID, asOf time.Time) ([]Entry, error) {
	view, tenants, err := s.derive(ctx, managerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("ledger.Service.CurrentEntries: %w", err)
	}
	return Entries(view, tenants), nil
}

// Summary totals the obligations due in the calendar month of asOf.
func (s *Service) Summary(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*PeriodSummary, error) {
	view, tenants, err := s.derive(ctx, managerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("ledger.Service.Summary: %w", err)
	}

	local := asOf.In(s.loc)
	period := domain.Date(local.Year(), local.Month(), 1)

	var current []Entry
	for _, e := range Entries(view, tenants) {
		if domain.SamePeriod(e.dueDate, period) {
			current = append(current, e)
		}
	}
	return Summarize(period, current), nil
}

// Materialize turns an obligation reference into a persisted record. A
// reference to a persisted record returns it unchanged. A projection is
// inserted as an overdue record for the tenant's rent amount unless a record
// already exists for that tenant and month, in which case the existing one is
// returned and created is false. A projection without a due date falls back
// to today.
func (s *Service) Materialize(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef) (*domain.RentRecord, bool, error) {
	if err := ref.Validate(); err != nil {
		return nil, false, fmt.Errorf("ledger.Service.Materialize: %w", err)
	}

	if !ref.IsProjected() {
		rec, err := s.records.GetByID(ctx, managerID, *ref.RecordID)
		if err != nil {
			return nil, false, fmt.Errorf("ledger.Service.Materialize: get record: %w", err)
		}
		return rec, false, nil
	}

	tenant, err := s.tenants.GetByID(ctx, managerID, ref.TenantID)
	if err != nil {
		return nil, false, fmt.Errorf("ledger.Service.Materialize: get tenant: %w", err)
	}

	due := ref.DueDate
	if due.IsZero() {
		due = s.today()
	} else {
		due = domain.Date(due.Date())
		if !due.Equal(tenant.DueDateIn(due.Year(), due.Month())) {
			return nil, false, fmt.Errorf("ledger.Service.Materialize: %w",
				domain.Invalid("due_date", "must be the tenant's due date for that month"))
		}
		if !s.dueAt(due).Before(s.now()) {
			return nil, false, fmt.Errorf("ledger.Service.Materialize: %w",
				domain.Invalid("due_date", "is not yet due"))
		}
	}

	now := s.now()
	candidate := &domain.RentRecord{
		ID:         uuid.New(),
		ManagerID:  managerID,
		TenantID:   tenant.ID,
		DueDate:    due,
		Period:     domain.PeriodOf(due),
		AmountDue:  tenant.RentAmount,
		AmountPaid: decimal.Zero,
		LateFees:   decimal.Zero,
		Status:     domain.RentStatusOverdue,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	rec, created, err := s.records.Upsert(ctx, candidate)
	if err != nil {
		return nil, false, fmt.Errorf("ledger.Service.Materialize: upsert: %w", err)
	}

	if created {
		s.record(ctx, managerID, "ledger.record_materialized", rec.ID, map[string]any{
			"tenant_id": rec.TenantID.String(),
			"due_date":  rec.DueDate.Format(time.DateOnly),
		})
		s.publish(ctx, managerID, domain.Event{
			Type:     domain.EventRecordCreated,
			TenantID: rec.TenantID,
			RecordID: &rec.ID,
			Status:   string(rec.Status),
		})
	}

	return rec, created, nil
}

// RecordPayment applies a payment to an obligation, materializing it first if
// it is projected. Payments accumulate; the record becomes paid once the rent
// and late fees are covered (or SettleInFull is set) and partial otherwise.
// Paid records accept no further payments.
func (s *Service) RecordPayment(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef, p Payment) (*domain.RentRecord, error) {
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: %w", err)
	}

	rec, _, err := s.Materialize(ctx, managerID, ref)
	if err != nil {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: %w", err)
	}

	if _, err := s.tenants.GetByID(ctx, managerID, rec.TenantID); err != nil {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: get tenant: %w", err)
	}

	if rec.Status == domain.RentStatusPaid {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: record already paid: %w", domain.ErrInvalidTransition)
	}

	paid := rec.AmountPaid.Add(p.Amount)
	if err := domain.CheckMoney("amount_paid", paid); err != nil {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: %w", err)
	}
	status := domain.RentStatusPartial
	if p.SettleInFull || paid.GreaterThanOrEqual(rec.TotalDue()) {
		status = domain.RentStatusPaid
	}
	if status != rec.Status && !rec.Status.ValidTransition(status) {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: %s -> %s: %w", rec.Status, status, domain.ErrInvalidTransition)
	}

	paidDate := domain.Date(p.PaidDate.Date())
	rec.AmountPaid = paid
	rec.Status = status
	rec.PaidDate = &paidDate
	if method := strings.TrimSpace(p.Method); method != "" {
		rec.PaymentMethod = &method
	}
	if notes := strings.TrimSpace(p.Notes); notes != "" {
		rec.Notes = notes
	}
	rec.UpdatedAt = s.now()

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("ledger.Service.RecordPayment: update: %w", err)
	}

	s.record(ctx, managerID, "ledger.payment_recorded", rec.ID, map[string]any{
		"amount":    p.Amount.StringFixed(2),
		"paid_date": paidDate.Format(time.DateOnly),
		"method":    p.Method,
		"status":    string(rec.Status),
	})
	s.publish(ctx, managerID, domain.Event{
		Type:     domain.EventPaymentRecorded,
		TenantID: rec.TenantID,
		RecordID: &rec.ID,
		Status:   string(rec.Status),
	})

	return rec, nil
}

// UpsertPeriodRecord writes a manual ledger entry. When the tenant already has
// a record for the entry's month that record is updated in place, so a tenant
// never carries two obligations for the same month.
func (s *Service) UpsertPeriodRecord(ctx context.Context, managerID uuid.UUID, e ManualEntry) (*domain.RentRecord, bool, error) {
	if err := e.validate(); err != nil {
		return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: %w", err)
	}

	tenant, err := s.tenants.GetByID(ctx, managerID, e.TenantID)
	if err != nil {
		return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: get tenant: %w", err)
	}

	due := domain.Date(e.DueDate.Date())
	amountDue := tenant.RentAmount
	if e.AmountDue != nil {
		amountDue = *e.AmountDue
	}
	status := domain.StatusFor(amountDue, e.AmountPaid, e.LateFees, due, s.today())

	existing, err := s.records.GetByPeriod(ctx, managerID, tenant.ID, domain.PeriodOf(due))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		rec := s.newManualRecord(managerID, tenant.ID, due, amountDue, status, e)
		createErr := s.records.Create(ctx, rec)
		if createErr == nil {
			s.record(ctx, managerID, "ledger.record_created", rec.ID, map[string]any{
				"due_date": due.Format(time.DateOnly),
				"status":   string(rec.Status),
			})
			s.publish(ctx, managerID, domain.Event{
				Type:     domain.EventRecordCreated,
				TenantID: rec.TenantID,
				RecordID: &rec.ID,
				Status:   string(rec.Status),
			})
			return rec, true, nil
		}
		if !errors.Is(createErr, domain.ErrConflict) {
			return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: create: %w", createErr)
		}
		// Lost a race with another writer for the same month; update theirs.
		existing, err = s.records.GetByPeriod(ctx, managerID, tenant.ID, domain.PeriodOf(due))
		if err != nil {
			return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: reload: %w", err)
		}
	case err != nil:
		return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: get period: %w", err)
	}

	if status != existing.Status && !existing.Status.ValidTransition(status) {
		return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: %s -> %s: %w", existing.Status, status, domain.ErrInvalidTransition)
	}

	existing.DueDate = due
	existing.Period = domain.PeriodOf(due)
	existing.AmountDue = amountDue
	existing.AmountPaid = e.AmountPaid
	existing.LateFees = e.LateFees
	existing.Status = status
	existing.PaidDate = civilPtr(e.PaidDate)
	existing.PaymentMethod = optional(e.PaymentMethod)
	existing.Notes = e.Notes
	existing.UpdatedAt = s.now()

	if err := s.records.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("ledger.Service.UpsertPeriodRecord: update: %w", err)
	}

	s.record(ctx, managerID, "ledger.record_updated", existing.ID, map[string]any{
		"due_date": due.Format(time.DateOnly),
		"status":   string(existing.Status),
	})
	s.publish(ctx, managerID, domain.Event{
		Type:     domain.EventRecordUpdated,
		TenantID: existing.TenantID,
		RecordID: &existing.ID,
		Status:   string(existing.Status),
	})

	return existing, false, nil
}

func (s *Service) newManualRecord(managerID, tenantID uuid.UUID, due time.Time, amountDue decimal.Decimal, status domain.RentStatus, e ManualEntry) *domain.RentRecord {
	now := s.now()
	return &domain.RentRecord{
		ID:            uuid.New(),
		ManagerID:     managerID,
		TenantID:      tenantID,
		DueDate:       due,
		Period:        domain.PeriodOf(due),
		AmountDue:     amountDue,
		AmountPaid:    e.AmountPaid,
		LateFees:      e.LateFees,
		Status:        status,
		PaidDate:      civilPtr(e.PaidDate),
		PaymentMethod: optional(e.PaymentMethod),
		Notes:         e.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// RefreshOverdue moves pending records whose due date is before the civil
// date of asOf to overdue and returns how many changed.
func (s *Service) RefreshOverdue(ctx context.Context, managerID uuid.UUID, asOf time.Time) (int64, error) {
	n, err := s.records.MarkOverdue(ctx, managerID, domain.DateOf(asOf, s.loc))
	if err != nil {
		return 0, fmt.Errorf("ledger.Service.RefreshOverdue: %w", err)
	}
	if n > 0 {
		s.publish(ctx, managerID, domain.Event{Type: domain.EventOverdueRefresh, Status: string(domain.RentStatusOverdue)})
	}
	return n, nil
}

// Get returns one persisted record.
func (s *Service) Get(ctx context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error) {
	rec, err := s.records.GetByID(ctx, managerID, id)
	if err != nil {
		return nil, fmt.Errorf("ledger.Service.Get: %w", err)
	}
	return rec, nil
}

// ListByTenant returns a tenant's ledger history.
func (s *Service) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error) {
	if _, err := s.tenants.GetByID(ctx, managerID, tenantID); err != nil {
		return nil, fmt.Errorf("ledger.Service.ListByTenant: %w", err)
	}
	recs, err := s.records.ListByTenant(ctx, managerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ledger.Service.ListByTenant: %w", err)
	}
	return recs, nil
}

func (s *Service) record(ctx context.Context, managerID uuid.UUID, action string, recordID uuid.UUID, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ManagerID:  managerID,
		ActorID:    managerID.String(),
		Action:     action,
		Resource:   "rent_record",
		ResourceID: recordID,
		Details:    details,
		CreatedAt:  s.now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("record_id", recordID.String()).Msg("ledger: failed to write audit entry")
	}
}

func (s *Service) publish(ctx context.Context, managerID uuid.UUID, ev domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, managerID, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("ledger: failed to publish event")
	}
}

func civilPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := domain.Date(t.Date())
	return &d
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
