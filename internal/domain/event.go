package domain

import (
	"context"

	"github.com/google/uuid"
)

// Event types published on a manager's ledger channel.
const (
	EventPaymentRecorded = "ledger.payment_recorded"
	EventRecordCreated   = "ledger.record_created"
	EventRecordUpdated   = "ledger.record_updated"
	EventOverdueRefresh  = "ledger.overdue_refreshed"
	EventNoticeGenerated = "notice.generated"
	EventNoticeStatus    = "notice.status_changed"
)

// Event is a real-time ledger or notice update for dashboards.
type Event struct {
	Type     string     `json:"type"`
	TenantID uuid.UUID  `json:"tenant_id,omitempty"`
	RecordID *uuid.UUID `json:"record_id,omitempty"`
	NoticeID *uuid.UUID `json:"notice_id,omitempty"`
	Status   string     `json:"status,omitempty"`
}

// EventPublisher delivers events to a manager's subscribers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, managerID uuid.UUID, ev Event) error
}
