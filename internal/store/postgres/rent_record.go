package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasehold/internal/domain"
)

type RentRecordRepo struct {
	pool *pgxpool.Pool
}

func NewRentRecordRepo(pool *pgxpool.Pool) *RentRecordRepo {
	return &RentRecordRepo{pool: pool}
}

const rentRecordColumns = `id, manager_id, tenant_id, due_date, period, amount_due, amount_paid, late_fees,
	status, paid_date, payment_method, notes, created_at, updated_at`

func (r *RentRecordRepo) Create(ctx context.Context, rec *domain.RentRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rent_records (`+rentRecordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		recordArgs(rec)...,
	)
	if err != nil {
		return mapErr("rentRecordRepo.Create", err)
	}

	return nil
}

// Upsert inserts rec unless the tenant already has a record for rec.Period,
// in which case the stored record is returned and created is false.
func (r *RentRecordRepo) Upsert(ctx context.Context, rec *domain.RentRecord) (*domain.RentRecord, bool, error) {
	got, err := scanRentRecord(r.pool.QueryRow(ctx,
		`INSERT INTO rent_records (`+rentRecordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 ON CONFLICT (tenant_id, period) DO NOTHING
		 RETURNING `+rentRecordColumns,
		recordArgs(rec)...,
	))
	if err == nil {
		return got, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, mapErr("rentRecordRepo.Upsert", err)
	}

	existing, err := r.GetByPeriod(ctx, rec.ManagerID, rec.TenantID, rec.Period)
	if err != nil {
		return nil, false, fmt.Errorf("rentRecordRepo.Upsert: %w", err)
	}

	return existing, false, nil
}

func (r *RentRecordRepo) GetByID(ctx context.Context, managerID, id uuid.UUID) (*domain.RentRecord, error) {
	rec, err := scanRentRecord(r.pool.QueryRow(ctx,
		`SELECT `+rentRecordColumns+` FROM rent_records WHERE manager_id = $1 AND id = $2`,
		managerID, id,
	))
	if err != nil {
		return nil, mapErr("rentRecordRepo.GetByID", err)
	}

	return rec, nil
}

func (r *RentRecordRepo) GetByPeriod(ctx context.Context, managerID, tenantID uuid.UUID, period time.Time) (*domain.RentRecord, error) {
	rec, err := scanRentRecord(r.pool.QueryRow(ctx,
		`SELECT `+rentRecordColumns+` FROM rent_records
		 WHERE manager_id = $1 AND tenant_id = $2 AND period = $3`,
		managerID, tenantID, domain.PeriodOf(period),
	))
	if err != nil {
		return nil, mapErr("rentRecordRepo.GetByPeriod", err)
	}

	return rec, nil
}

func (r *RentRecordRepo) ListByManager(ctx context.Context, managerID uuid.UUID) ([]*domain.RentRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rentRecordColumns+` FROM rent_records WHERE manager_id = $1
		 ORDER BY due_date DESC, created_at`,
		managerID,
	)
	if err != nil {
		return nil, mapErr("rentRecordRepo.ListByManager", err)
	}
	defer rows.Close()

	return scanRentRecords(rows, "rentRecordRepo.ListByManager")
}

func (r *RentRecordRepo) ListByTenant(ctx context.Context, managerID, tenantID uuid.UUID) ([]*domain.RentRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rentRecordColumns+` FROM rent_records WHERE manager_id = $1 AND tenant_id = $2
		 ORDER BY due_date DESC`,
		managerID, tenantID,
	)
	if err != nil {
		return nil, mapErr("rentRecordRepo.ListByTenant", err)
	}
	defer rows.Close()

	return scanRentRecords(rows, "rentRecordRepo.ListByTenant")
}

func (r *RentRecordRepo) Update(ctx context.Context, rec *domain.RentRecord) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rent_records SET due_date = $1, period = $2, amount_due = $3, amount_paid = $4,
		        late_fees = $5, status = $6, paid_date = $7, payment_method = $8, notes = $9,
		        updated_at = now()
		 WHERE manager_id = $10 AND id = $11`,
		rec.DueDate, rec.Period, rec.AmountDue, rec.AmountPaid,
		rec.LateFees, rec.Status, rec.PaidDate, rec.PaymentMethod, rec.Notes,
		rec.ManagerID, rec.ID,
	)
	if err != nil {
		return mapErr("rentRecordRepo.Update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rentRecordRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *RentRecordRepo) MarkOverdue(ctx context.Context, managerID uuid.UUID, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE rent_records SET status = 'overdue', updated_at = now()
		 WHERE manager_id = $1 AND status = 'pending' AND due_date < $2`,
		managerID, before,
	)
	if err != nil {
		return 0, mapErr("rentRecordRepo.MarkOverdue", err)
	}

	return tag.RowsAffected(), nil
}

func recordArgs(rec *domain.RentRecord) []any {
	return []any{
		rec.ID, rec.ManagerID, rec.TenantID, rec.DueDate, domain.PeriodOf(rec.DueDate),
		rec.AmountDue, rec.AmountPaid, rec.LateFees,
		rec.Status, rec.PaidDate, rec.PaymentMethod, rec.Notes,
		rec.CreatedAt, rec.UpdatedAt,
	}
}

func scanRentRecord(row pgx.Row) (*domain.RentRecord, error) {
	var rec domain.RentRecord
	if err := row.Scan(
		&rec.ID, &rec.ManagerID, &rec.TenantID, &rec.DueDate, &rec.Period,
		&rec.AmountDue, &rec.AmountPaid, &rec.LateFees,
		&rec.Status, &rec.PaidDate, &rec.PaymentMethod, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRentRecords(rows pgx.Rows, caller string) ([]*domain.RentRecord, error) {
	var out []*domain.RentRecord
	for rows.Next() {
		rec, err := scanRentRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(caller+": rows", err)
	}

	return out, nil
}
