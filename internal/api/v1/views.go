package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/leasehold/internal/domain"
)

// Amounts travel as fixed two-decimal strings and dates as YYYY-MM-DD.

type ManagerView struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	CompanyName    string    `json:"company_name,omitempty"`
	MailingAddress string    `json:"mailing_address,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func managerView(m *domain.Manager) *ManagerView {
	return &ManagerView{
		ID:             m.ID,
		Email:          m.Email,
		Name:           m.Name,
		CompanyName:    m.CompanyName,
		MailingAddress: m.MailingAddress,
		Phone:          m.Phone,
		CreatedAt:      m.CreatedAt,
	}
}

type TenantView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	PropertyAddress string    `json:"property_address"`
	Unit            string    `json:"unit,omitempty"`
	RentAmount      string    `json:"rent_amount"`
	RentDueDate     int       `json:"rent_due_date"`
	LeaseStart      string    `json:"lease_start,omitempty"`
	LeaseEnd        string    `json:"lease_end,omitempty"`
	SecurityDeposit string    `json:"security_deposit,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func tenantView(t *domain.Tenant) *TenantView {
	return &TenantView{
		ID:              t.ID,
		Name:            t.Name,
		Email:           t.Email,
		Phone:           t.Phone,
		PropertyAddress: t.PropertyAddress,
		Unit:            t.Unit,
		RentAmount:      t.RentAmount.StringFixed(2),
		RentDueDate:     t.RentDueDay,
		LeaseStart:      formatDate(t.LeaseStart),
		LeaseEnd:        formatDate(t.LeaseEnd),
		SecurityDeposit: formatMoney(t.SecurityDeposit),
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type RecordView struct {
	ID            uuid.UUID         `json:"id"`
	TenantID      uuid.UUID         `json:"tenant_id"`
	DueDate       string            `json:"due_date"`
	AmountDue     string            `json:"amount_due"`
	AmountPaid    string            `json:"amount_paid"`
	LateFees      string            `json:"late_fees"`
	Outstanding   string            `json:"outstanding"`
	Status        domain.RentStatus `json:"status"`
	PaidDate      string            `json:"paid_date,omitempty"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func recordView(r *domain.RentRecord) *RecordView {
	v := &RecordView{
		ID:          r.ID,
		TenantID:    r.TenantID,
		DueDate:     r.DueDate.Format(time.DateOnly),
		AmountDue:   r.AmountDue.StringFixed(2),
		AmountPaid:  r.AmountPaid.StringFixed(2),
		LateFees:    r.LateFees.StringFixed(2),
		Outstanding: r.Outstanding().StringFixed(2),
		Status:      r.Status,
		PaidDate:    formatDate(r.PaidDate),
		Notes:       r.Notes,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.PaymentMethod != nil {
		v.PaymentMethod = *r.PaymentMethod
	}
	return v
}

func recordViews(rs []*domain.RentRecord) []*RecordView {
	out := make([]*RecordView, 0, len(rs))
	for _, r := range rs {
		out = append(out, recordView(r))
	}
	return out
}

type NoticeView struct {
	ID            uuid.UUID           `json:"id"`
	TenantID      uuid.UUID           `json:"tenant_id"`
	RentRecordID  uuid.UUID           `json:"rent_record_id"`
	NoticeType    domain.NoticeType   `json:"notice_type"`
	Jurisdiction  string              `json:"jurisdiction"`
	AmountOwed    string              `json:"amount_owed"`
	DaysToPay     int                 `json:"days_to_pay"`
	GeneratedDate string              `json:"generated_date"`
	Deadline      string              `json:"deadline"`
	ServedDate    string              `json:"served_date,omitempty"`
	Status        domain.NoticeStatus `json:"status"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func noticeView(n *domain.LegalNotice) *NoticeView {
	return &NoticeView{
		ID:            n.ID,
		TenantID:      n.TenantID,
		RentRecordID:  n.RentRecordID,
		NoticeType:    n.NoticeType,
		Jurisdiction:  n.Jurisdiction,
		AmountOwed:    n.AmountOwed.StringFixed(2),
		DaysToPay:     n.DaysToPay,
		GeneratedDate: n.GeneratedDate.Format(time.DateOnly),
		Deadline:      n.Deadline().Format(time.DateOnly),
		ServedDate:    formatDate(n.ServedDate),
		Status:        n.Status,
		UpdatedAt:     n.UpdatedAt,
	}
}

func noticeViews(ns []*domain.LegalNotice) []*NoticeView {
	out := make([]*NoticeView, 0, len(ns))
	for _, n := range ns {
		out = append(out, noticeView(n))
	}
	return out
}
