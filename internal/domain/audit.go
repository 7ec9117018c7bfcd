package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditEntry struct {
	ID         uuid.UUID
	ManagerID  uuid.UUID
	ActorID    string
	Action     string // "notice.sent", "ledger.payment_recorded", ...
	Resource   string // "notice", "rent_record"
	ResourceID uuid.UUID
	Details    map[string]any
	CreatedAt  time.Time
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*AuditEntry, error)
	ListByResource(ctx context.Context, managerID uuid.UUID, resource string, resourceID uuid.UUID) ([]*AuditEntry, error)
}
