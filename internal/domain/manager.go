package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Manager is a property-manager account. Every tenant, rent record and notice
// is scoped to exactly one manager.
type Manager struct {
	ID             uuid.UUID
	Email          string
	PasswordHash   string // argon2id, never returned to clients
	Name           string
	CompanyName    string
	MailingAddress string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ManagerRepository interface {
	Create(ctx context.Context, m *Manager) error
	GetByID(ctx context.Context, id uuid.UUID) (*Manager, error)
	GetByEmail(ctx context.Context, email string) (*Manager, error)
	Update(ctx context.Context, m *Manager) error
}
