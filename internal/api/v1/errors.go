package v1

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/domain"
	"github.com/gosuda/leasehold/internal/server/middleware"
)

// managerFrom returns the manager scope installed by the auth middleware.
func managerFrom(ctx context.Context) (uuid.UUID, error) {
	managerID, ok := middleware.ManagerIDFromContext(ctx)
	if !ok || managerID == uuid.Nil {
		return uuid.Nil, huma.Error403Forbidden("missing manager context")
	}
	return managerID, nil
}

// httpError maps a domain error to its HTTP status. Persistence and unknown
// failures are logged and reported as a retryable 500.
func httpError(err error, resource, op string) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return huma.Error422UnprocessableEntity("validation failed", &huma.ErrorDetail{
			Location: "body." + verr.Field,
			Message:  verr.Reason,
		})
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(resource + " not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		return huma.Error409Conflict("invalid status transition")
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(resource + " conflicts with existing state")
	default:
		log.Error().Err(err).Str("op", op).Msg("api: request failed")
		return huma.Error500InternalServerError("failed to " + op + ", try again")
	}
}

func parseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, domain.Invalid(field, "must be a decimal amount")
	}
	return d, nil
}

func parseOptionalMoney(field, s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseMoney(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDate reads a YYYY-MM-DD civil date.
func parseDate(field, s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseAsOf resolves the as_of query parameter. Empty means now; an RFC 3339
// timestamp is used as is; a bare date means the end of that day in loc, so
// every due date on it counts as elapsed.
func parseAsOf(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, huma.Error400BadRequest("as_of must be a YYYY-MM-DD date or RFC 3339 timestamp")
	}
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
