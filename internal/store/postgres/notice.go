package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasehold/internal/domain"
)

// NoticeRepo persists legal notices. Notices are permanent records; the repo
// has no delete.
type NoticeRepo struct {
	pool *pgxpool.Pool
}

func NewNoticeRepo(pool *pgxpool.Pool) *NoticeRepo {
	return &NoticeRepo{pool: pool}
}

const noticeColumns = `id, manager_id, tenant_id, rent_record_id, notice_type, jurisdiction, amount_owed,
	days_to_pay, generated_date, served_date, status, created_at, updated_at`

func (r *NoticeRepo) Create(ctx context.Context, n *domain.LegalNotice) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO legal_notices (`+noticeColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		n.ID, n.ManagerID, n.TenantID, n.RentRecordID, n.NoticeType, n.Jurisdiction, n.AmountOwed,
		n.DaysToPay, n.GeneratedDate, n.ServedDate, n.Status, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return mapErr("noticeRepo.Create", err)
	}

	return nil
}

func (r *NoticeRepo) GetByID(ctx context.Context, managerID, id uuid.UUID) (*domain.LegalNotice, error) {
	n, err := scanNotice(r.pool.QueryRow(ctx,
		`SELECT `+noticeColumns+` FROM legal_notices WHERE manager_id = $1 AND id = $2`,
		managerID, id,
	))
	if err != nil {
		return nil, mapErr("noticeRepo.GetByID", err)
	}

	return n, nil
}

func (r *NoticeRepo) ListByRecord(ctx context.Context, managerID, recordID uuid.UUID) ([]*domain.LegalNotice, error) {
	return r.list(ctx, "noticeRepo.ListByRecord",
		`SELECT `+noticeColumns+` FROM legal_notices WHERE manager_id = $1 AND rent_record_id = $2
		 ORDER BY created_at DESC`,
		managerID, recordID,
	)
}

func (r *NoticeRepo) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.LegalNotice, error) {
	return r.list(ctx, "noticeRepo.ListByTenant",
		`SELECT `+noticeColumns+` FROM legal_notices WHERE manager_id = $1 AND tenant_id = $2
		 ORDER BY created_at DESC`,
		managerID, tenantID,
	)
}

func (r *NoticeRepo) ListActive(ctx context.Context, managerID uuid.UUID) ([]*domain.LegalNotice, error) {
	return r.list(ctx, "noticeRepo.ListActive",
		`SELECT `+noticeColumns+` FROM legal_notices
		 WHERE manager_id = $1 AND status IN ('generated', 'served')
		 ORDER BY generated_date, created_at`,
		managerID,
	)
}

// UpdateStatus moves a notice from status from to status to. It fails with
// ErrConflict when the stored status is no longer from.
func (r *NoticeRepo) UpdateStatus(ctx context.Context, managerID, id uuid.UUID, from, to domain.NoticeStatus, servedDate *time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE legal_notices SET status = $1, served_date = $2, updated_at = now()
		 WHERE manager_id = $3 AND id = $4 AND status = $5`,
		to, servedDate, managerID, id, from,
	)
	if err != nil {
		return mapErr("noticeRepo.UpdateStatus", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM legal_notices WHERE manager_id = $1 AND id = $2)`,
		managerID, id,
	).Scan(&exists)
	if err != nil {
		return mapErr("noticeRepo.UpdateStatus", err)
	}
	if !exists {
		return fmt.Errorf("noticeRepo.UpdateStatus: %w", domain.ErrNotFound)
	}

	return fmt.Errorf("noticeRepo.UpdateStatus: status is no longer %s: %w", from, domain.ErrConflict)
}

func (r *NoticeRepo) list(ctx context.Context, caller, query string, args ...any) ([]*domain.LegalNotice, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(caller, err)
	}
	defer rows.Close()

	var out []*domain.LegalNotice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(caller+": rows", err)
	}

	return out, nil
}

func scanNotice(row pgx.Row) (*domain.LegalNotice, error) {
	var n domain.LegalNotice
	if err := row.Scan(
		&n.ID, &n.ManagerID, &n.TenantID, &n.RentRecordID, &n.NoticeType, &n.Jurisdiction, &n.AmountOwed,
		&n.DaysToPay, &n.GeneratedDate, &n.ServedDate, &n.Status, &n.CreatedAt, &n.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}
