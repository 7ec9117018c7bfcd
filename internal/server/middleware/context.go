package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextKeyManagerID contextKey = "manager_id"
	ContextKeyEmail     contextKey = "email"
)

func ManagerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyManagerID).(uuid.UUID)
	return v, ok
}

func EmailFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyEmail).(string)
	return v, ok
}

// WithManager returns a copy of ctx scoped to the given manager.
func WithManager(ctx context.Context, managerID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyManagerID, managerID)
	return context.WithValue(ctx, ContextKeyEmail, email)
}
