package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/domain"
)

const (
	KindPersisted = "persisted"
	KindProjected = "projected"
)

// Entry is one display row of the ledger view. Money renders with two
// decimal places.
type Entry struct {
	Kind            string            `json:"kind"`
	RecordID        *uuid.UUID        `json:"record_id,omitempty"`
	TenantID        uuid.UUID         `json:"tenant_id"`
	TenantName      string            `json:"tenant_name"`
	PropertyAddress string            `json:"property_address"`
	Unit            string            `json:"unit,omitempty"`
	DueDate         string            `json:"due_date"`
	AmountDue       string            `json:"amount_due"`
	AmountPaid      string            `json:"amount_paid"`
	LateFees        string            `json:"late_fees"`
	Outstanding     string            `json:"outstanding"`
	Status          domain.RentStatus `json:"status"`
	PaidDate        string            `json:"paid_date,omitempty"`
	PaymentMethod   string            `json:"payment_method,omitempty"`
	Notes           string            `json:"notes,omitempty"`

	dueDate time.Time
	money   amounts
}

type amounts struct {
	due, paid, fees, outstanding decimal.Decimal
}

func (e *Entry) setAmounts(m amounts) {
	e.money = m
	e.AmountDue = m.due.StringFixed(domain.MoneyScale)
	e.AmountPaid = m.paid.StringFixed(domain.MoneyScale)
	e.LateFees = m.fees.StringFixed(domain.MoneyScale)
	e.Outstanding = m.outstanding.StringFixed(domain.MoneyScale)
}

// Entries flattens obligations into rows, filling tenant display fields for
// persisted records from tenants.
func Entries(view []domain.RentObligation, tenants map[uuid.UUID]*domain.Tenant) []Entry {
	out := make([]Entry, 0, len(view))
	for _, o := range view {
		switch ob := o.(type) {
		case domain.Persisted:
			out = append(out, persistedEntry(ob.Record, tenants[ob.Record.TenantID]))
		case domain.Projected:
			e := Entry{
				Kind:            KindProjected,
				TenantID:        ob.TenantID,
				TenantName:      ob.TenantName,
				PropertyAddress: ob.PropertyAddress,
				Unit:            ob.Unit,
				DueDate:         ob.DueDate.Format(time.DateOnly),
				Status:          ob.Status(),
				dueDate:         ob.DueDate,
			}
			e.setAmounts(amounts{due: ob.Amount, outstanding: ob.Amount})
			out = append(out, e)
		}
	}
	return out
}

func persistedEntry(r *domain.RentRecord, t *domain.Tenant) Entry {
	id := r.ID
	e := Entry{
		Kind:     KindPersisted,
		RecordID: &id,
		TenantID: r.TenantID,
		DueDate:  r.DueDate.Format(time.DateOnly),
		Status:   r.Status,
		Notes:    r.Notes,
		dueDate:  r.DueDate,
	}
	e.setAmounts(amounts{due: r.AmountDue, paid: r.AmountPaid, fees: r.LateFees, outstanding: r.Outstanding()})
	if t != nil {
		e.TenantName = t.Name
		e.PropertyAddress = t.PropertyAddress
		e.Unit = t.Unit
	}
	if r.PaidDate != nil {
		e.PaidDate = r.PaidDate.Format(time.DateOnly)
	}
	if r.PaymentMethod != nil {
		e.PaymentMethod = *r.PaymentMethod
	}
	return e
}

// StatusTotals aggregates rows sharing a status. AmountDue includes late fees.
type StatusTotals struct {
	Count       int    `json:"count"`
	AmountDue   string `json:"amount_due"`
	AmountPaid  string `json:"amount_paid"`
	Outstanding string `json:"outstanding"`

	sum amounts
}

func (t *StatusTotals) add(e Entry) {
	t.Count++
	t.sum.due = t.sum.due.Add(e.money.due).Add(e.money.fees)
	t.sum.paid = t.sum.paid.Add(e.money.paid)
	t.sum.outstanding = t.sum.outstanding.Add(e.money.outstanding)
	t.render()
}

func (t *StatusTotals) render() {
	t.AmountDue = t.sum.due.StringFixed(domain.MoneyScale)
	t.AmountPaid = t.sum.paid.StringFixed(domain.MoneyScale)
	t.Outstanding = t.sum.outstanding.StringFixed(domain.MoneyScale)
}

// PeriodSummary is the reporting view of one calendar month.
type PeriodSummary struct {
	Period    string                             `json:"period"` // YYYY-MM
	ByStatus  map[domain.RentStatus]StatusTotals `json:"by_status"`
	Total     StatusTotals                       `json:"total"`
	Projected int                                `json:"projected"`
}

// Summarize groups rows by status.
func Summarize(period time.Time, entries []Entry) *PeriodSummary {
	sum := &PeriodSummary{
		Period:   period.Format("2006-01"),
		ByStatus: make(map[domain.RentStatus]StatusTotals),
	}
	sum.Total.render()
	for _, e := range entries {
		st := sum.ByStatus[e.Status]
		st.add(e)
		sum.ByStatus[e.Status] = st
		sum.Total.add(e)
		if e.Kind == KindProjected {
			sum.Projected++
		}
	}
	return sum
}
