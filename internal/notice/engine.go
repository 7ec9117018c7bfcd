package notice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/domain"
)

// Materializer turns an obligation reference into a persisted rent record.
// ledger.Service implements it.
type Materializer interface {
	Materialize(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef) (*domain.RentRecord, bool, error)
}

// Policy holds the notice rules that vary per deployment.
type Policy struct {
	// AllowMultipleActiveNotices permits a new notice while another generated
	// or served notice exists for the same record.
	AllowMultipleActiveNotices bool
	DefaultJurisdiction        string
}

// Repositories bundles the stores the engine reads and writes.
type Repositories struct {
	Tenants  domain.TenantRepository
	Records  domain.RentRecordRepository
	Notices  domain.NoticeRepository
	Managers domain.ManagerRepository
	Audit    domain.AuditRepository
}

// Engine generates notices, tracks their delivery and lifecycle, and renders
// their documents.
type Engine struct {
	repos         Repositories
	ledger        Materializer
	events        domain.EventPublisher
	jurisdictions *Registry
	policy        Policy
	loc           *time.Location
	now           func() time.Time
}

// NewEngine creates a notice engine. A nil registry uses NewRegistry; a nil
// loc means UTC. events may be nil.
func NewEngine(repos Repositories, ledger Materializer, events domain.EventPublisher, jurisdictions *Registry, policy Policy, loc *time.Location) *Engine {
	if jurisdictions == nil {
		jurisdictions = NewRegistry()
	}
	if loc == nil {
		loc = time.UTC
	}
	if policy.DefaultJurisdiction == "" {
		policy.DefaultJurisdiction = GenericJurisdiction
	}
	return &Engine{
		repos:         repos,
		ledger:        ledger,
		events:        events,
		jurisdictions: jurisdictions,
		policy:        policy,
		loc:           loc,
		now:           time.Now,
	}
}

// SetClock replaces the wall clock used for "today" and timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Jurisdictions exposes the registry the engine resolves codes against.
func (e *Engine) Jurisdictions() *Registry {
	return e.jurisdictions
}

// Location returns the zone in which "today" and deadlines are observed.
func (e *Engine) Location() *time.Location {
	return e.loc
}

func (e *Engine) today() time.Time {
	return domain.DateOf(e.now(), e.loc)
}

// Request describes a notice to generate.
type Request struct {
	TenantID     uuid.UUID
	Obligation   domain.ObligationRef
	AmountOwed   decimal.Decimal
	DaysToPay    *int   // nil uses the jurisdiction's cure period
	Jurisdiction string // empty uses the policy default
}

func (r Request) validate() error {
	if r.TenantID == uuid.Nil {
		return domain.Invalid("tenant_id", "is required")
	}
	if !r.AmountOwed.IsPositive() {
		return domain.Invalid("amount_owed", "must be a positive amount")
	}
	if err := domain.CheckMoney("amount_owed", r.AmountOwed); err != nil {
		return err
	}
	if r.DaysToPay != nil && *r.DaysToPay < 0 {
		return domain.Invalid("days_to_pay", "must not be negative")
	}
	return r.Obligation.Validate()
}

// GenerateNotice creates a pay-or-quit notice against the referenced
// obligation, materializing it first when it is projected. The amount owed is
// stored exactly as given and never recomputed.
func (e *Engine) GenerateNotice(ctx context.Context, managerID uuid.UUID, req Request) (*domain.LegalNotice, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", err)
	}

	code := req.Jurisdiction
	if code == "" {
		code = e.policy.DefaultJurisdiction
	}
	j, ok := e.jurisdictions.Lookup(code)
	if !ok {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", domain.Invalid("jurisdiction", fmt.Sprintf("unknown code %q", code)))
	}

	tenant, err := e.repos.Tenants.GetByID(ctx, managerID, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: get tenant: %w", err)
	}

	ref := req.Obligation
	if ref.IsProjected() && ref.TenantID != tenant.ID {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", domain.Invalid("tenant_id", "does not match the obligation"))
	}

	if !e.policy.AllowMultipleActiveNotices {
		existing, err := e.storedRecord(ctx, managerID, ref)
		if err != nil {
			return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", err)
		}
		if existing != nil {
			if existing.TenantID != tenant.ID {
				return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", domain.Invalid("rent_record_id", "belongs to a different tenant"))
			}
			if err := e.ensureNoActiveNotice(ctx, managerID, existing.ID); err != nil {
				return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", err)
			}
		}
	}

	rec, _, err := e.ledger.Materialize(ctx, managerID, ref)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", err)
	}
	if rec.TenantID != tenant.ID {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: %w", domain.Invalid("rent_record_id", "belongs to a different tenant"))
	}

	days := j.CurePeriod
	if req.DaysToPay != nil {
		days = *req.DaysToPay
	}

	now := e.now()
	n := &domain.LegalNotice{
		ID:            uuid.New(),
		ManagerID:     managerID,
		TenantID:      tenant.ID,
		RentRecordID:  rec.ID,
		NoticeType:    domain.NoticeTypePayOrQuit,
		Jurisdiction:  j.Code,
		AmountOwed:    req.AmountOwed,
		DaysToPay:     days,
		GeneratedDate: e.today(),
		Status:        domain.NoticeStatusGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.repos.Notices.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("notice.Engine.GenerateNotice: create: %w", err)
	}

	e.record(ctx, managerID, "notice."+string(domain.DeliveryGenerated), n.ID, map[string]any{
		"rent_record_id": rec.ID.String(),
		"amount_owed":    n.AmountOwed.StringFixed(2),
		"days_to_pay":    n.DaysToPay,
	})
	e.publish(ctx, managerID, domain.Event{
		Type:     domain.EventNoticeGenerated,
		TenantID: n.TenantID,
		RecordID: &n.RentRecordID,
		NoticeID: &n.ID,
		Status:   string(n.Status),
	})

	log.Info().
		Str("manager_id", managerID.String()).
		Str("notice_id", n.ID.String()).
		Str("record_id", rec.ID.String()).
		Msg("notice: generated")

	return n, nil
}

// storedRecord looks up the record ref points at without writing anything.
// A projected ref whose month has no record yet yields nil.
func (e *Engine) storedRecord(ctx context.Context, managerID uuid.UUID, ref domain.ObligationRef) (*domain.RentRecord, error) {
	if !ref.IsProjected() {
		rec, err := e.repos.Records.GetByID(ctx, managerID, *ref.RecordID)
		if err != nil {
			return nil, fmt.Errorf("get record: %w", err)
		}
		return rec, nil
	}

	due := ref.DueDate
	if due.IsZero() {
		due = e.today()
	}
	rec, err := e.repos.Records.GetByPeriod(ctx, managerID, ref.TenantID, domain.PeriodOf(due))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record for period: %w", err)
	}
	return rec, nil
}

func (e *Engine) ensureNoActiveNotice(ctx context.Context, managerID, recordID uuid.UUID) error {
	existing, err := e.repos.Notices.ListByRecord(ctx, managerID, recordID)
	if err != nil {
		return fmt.Errorf("list notices: %w", err)
	}
	for _, n := range existing {
		if n.Status.Active() {
			return fmt.Errorf("notice %s is still %s: %w", n.ID, n.Status, domain.ErrConflict)
		}
	}
	return nil
}

// RecordDeliveryAction logs a delivery action against a notice. "sent" moves a
// generated notice to served with today's served date; the other actions only
// leave an audit entry. Status never moves backwards. An unknown notice is
// logged and yields (nil, nil).
func (e *Engine) RecordDeliveryAction(ctx context.Context, managerID, noticeID uuid.UUID, action domain.DeliveryAction) (*domain.LegalNotice, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("notice.Engine.RecordDeliveryAction: %w", domain.Invalid("action", fmt.Sprintf("unknown action %q", action)))
	}

	n, err := e.repos.Notices.GetByID(ctx, managerID, noticeID)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().
			Str("manager_id", managerID.String()).
			Str("notice_id", noticeID.String()).
			Str("action", string(action)).
			Msg("notice: delivery action for unknown notice ignored")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.RecordDeliveryAction: %w", err)
	}

	e.record(ctx, managerID, "notice."+string(action), n.ID, map[string]any{
		"status": string(n.Status),
	})

	if action != domain.DeliverySent || n.Status != domain.NoticeStatusGenerated {
		return n, nil
	}

	served := e.today()
	if err := e.repos.Notices.UpdateStatus(ctx, managerID, n.ID, domain.NoticeStatusGenerated, domain.NoticeStatusServed, &served); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Status moved underneath us; report what is stored now.
			return e.Get(ctx, managerID, n.ID)
		}
		return nil, fmt.Errorf("notice.Engine.RecordDeliveryAction: update status: %w", err)
	}
	n.Status = domain.NoticeStatusServed
	n.ServedDate = &served
	n.UpdatedAt = e.now()

	e.publishStatus(ctx, managerID, n)
	return n, nil
}

// Transition moves a notice forward to status to. Backward or sideways moves
// return ErrInvalidTransition.
func (e *Engine) Transition(ctx context.Context, managerID, noticeID uuid.UUID, to domain.NoticeStatus) (*domain.LegalNotice, error) {
	n, err := e.repos.Notices.GetByID(ctx, managerID, noticeID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Transition: %w", err)
	}
	if err := e.transition(ctx, managerID, n, to); err != nil {
		return nil, fmt.Errorf("notice.Engine.Transition: %w", err)
	}
	e.record(ctx, managerID, "notice.status_changed", n.ID, map[string]any{
		"status": string(n.Status),
	})
	return n, nil
}

func (e *Engine) transition(ctx context.Context, managerID uuid.UUID, n *domain.LegalNotice, to domain.NoticeStatus) error {
	from := n.Status
	if !from.ValidTransition(to) {
		return fmt.Errorf("%s -> %s: %w", from, to, domain.ErrInvalidTransition)
	}

	served := n.ServedDate
	if to == domain.NoticeStatusServed && served == nil {
		today := e.today()
		served = &today
	}
	if err := e.repos.Notices.UpdateStatus(ctx, managerID, n.ID, from, to, served); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	n.Status = to
	n.ServedDate = served
	n.UpdatedAt = e.now()
	e.publishStatus(ctx, managerID, n)
	return nil
}

// ReconcileResult counts the notices Reconcile moved.
type ReconcileResult struct {
	Resolved int `json:"resolved"`
	Expired  int `json:"expired"`
}

// Reconcile closes active notices: those whose rent record is paid become
// resolved, and served notices whose deadline passed before asOf become
// expired.
func (e *Engine) Reconcile(ctx context.Context, managerID uuid.UUID, asOf time.Time) (*ReconcileResult, error) {
	active, err := e.repos.Notices.ListActive(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Reconcile: %w", err)
	}

	today := domain.DateOf(asOf, e.loc)
	res := &ReconcileResult{}
	for _, n := range active {
		rec, err := e.repos.Records.GetByID(ctx, managerID, n.RentRecordID)
		if err != nil {
			return res, fmt.Errorf("notice.Engine.Reconcile: get record %s: %w", n.RentRecordID, err)
		}

		var to domain.NoticeStatus
		switch {
		case rec.Status == domain.RentStatusPaid:
			to = domain.NoticeStatusResolved
		case n.Status == domain.NoticeStatusServed && today.After(n.Deadline()):
			to = domain.NoticeStatusExpired
		default:
			continue
		}

		if err := e.transition(ctx, managerID, n, to); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return res, fmt.Errorf("notice.Engine.Reconcile: %w", err)
		}
		e.record(ctx, managerID, "notice.status_changed", n.ID, map[string]any{
			"status": string(to),
			"reason": "reconcile",
		})
		if to == domain.NoticeStatusResolved {
			res.Resolved++
		} else {
			res.Expired++
		}
	}

	if res.Resolved+res.Expired > 0 {
		log.Info().
			Str("manager_id", managerID.String()).
			Int("resolved", res.Resolved).
			Int("expired", res.Expired).
			Msg("notice: reconciled")
	}
	return res, nil
}

// Document loads a notice with its tenant, manager and record and renders it.
func (e *Engine) Document(ctx context.Context, managerID, noticeID uuid.UUID) (*Document, error) {
	n, err := e.repos.Notices.GetByID(ctx, managerID, noticeID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Document: %w", err)
	}
	tenant, err := e.repos.Tenants.GetByID(ctx, managerID, n.TenantID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Document: get tenant: %w", err)
	}
	rec, err := e.repos.Records.GetByID(ctx, managerID, n.RentRecordID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Document: get record: %w", err)
	}
	manager, err := e.repos.Managers.GetByID(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Document: get manager: %w", err)
	}

	j, ok := e.jurisdictions.Lookup(n.Jurisdiction)
	if !ok {
		return nil, fmt.Errorf("notice.Engine.Document: jurisdiction %q is no longer registered: %w", n.Jurisdiction, domain.ErrNotFound)
	}

	doc, err := Render(j, n, tenant, manager, rec)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Document: %w", err)
	}
	return doc, nil
}

// Get returns one notice.
func (e *Engine) Get(ctx context.Context, managerID, noticeID uuid.UUID) (*domain.LegalNotice, error) {
	n, err := e.repos.Notices.GetByID(ctx, managerID, noticeID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.Get: %w", err)
	}
	return n, nil
}

// ListByRecord returns the notices issued against one rent record.
func (e *Engine) ListByRecord(ctx context.Context, managerID, recordID uuid.UUID) ([]*domain.LegalNotice, error) {
	out, err := e.repos.Notices.ListByRecord(ctx, managerID, recordID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.ListByRecord: %w", err)
	}
	return out, nil
}

// ListByTenant returns every notice issued to a tenant.
func (e *Engine) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.LegalNotice, error) {
	out, err := e.repos.Notices.ListByTenant(ctx, managerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.ListByTenant: %w", err)
	}
	return out, nil
}

// ListActive returns the manager's generated and served notices.
func (e *Engine) ListActive(ctx context.Context, managerID uuid.UUID) ([]*domain.LegalNotice, error) {
	out, err := e.repos.Notices.ListActive(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("notice.Engine.ListActive: %w", err)
	}
	return out, nil
}

func (e *Engine) record(ctx context.Context, managerID uuid.UUID, action string, noticeID uuid.UUID, details map[string]any) {
	if e.repos.Audit == nil {
		return
	}
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		ManagerID:  managerID,
		ActorID:    managerID.String(),
		Action:     action,
		Resource:   "notice",
		ResourceID: noticeID,
		Details:    details,
		CreatedAt:  e.now(),
	}
	if err := e.repos.Audit.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", action).Str("notice_id", noticeID.String()).Msg("notice: failed to write audit entry")
	}
}

func (e *Engine) publishStatus(ctx context.Context, managerID uuid.UUID, n *domain.LegalNotice) {
	e.publish(ctx, managerID, domain.Event{
		Type:     domain.EventNoticeStatus,
		TenantID: n.TenantID,
		RecordID: &n.RentRecordID,
		NoticeID: &n.ID,
		Status:   string(n.Status),
	})
}

func (e *Engine) publish(ctx context.Context, managerID uuid.UUID, ev domain.Event) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishEvent(ctx, managerID, ev); err != nil {
		log.Warn().Err(err).Str("event", ev.Type).Msg("notice: failed to publish event")
	}
}
