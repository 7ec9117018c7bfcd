package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasehold/internal/domain"
)

type TenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *TenantRepo {
	return &TenantRepo{pool: pool}
}

const tenantColumns = `id, manager_id, name, email, phone, property_address, unit, rent_amount, rent_due_date,
	lease_start, lease_end, security_deposit, notes, created_at, updated_at`

func (r *TenantRepo) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.ManagerID, t.Name, nilIfEmpty(t.Email), nilIfEmpty(t.Phone),
		t.PropertyAddress, nilIfEmpty(t.Unit), t.RentAmount, t.RentDueDay,
		t.LeaseStart, t.LeaseEnd, t.SecurityDeposit, t.Notes,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapErr("tenantRepo.Create", err)
	}

	return nil
}

func (r *TenantRepo) GetByID(ctx context.Context, managerID, id uuid.UUID) (*domain.Tenant, error) {
	t, err := scanTenant(r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE manager_id = $1 AND id = $2`,
		managerID, id,
	))
	if err != nil {
		return nil, mapErr("tenantRepo.GetByID", err)
	}

	return t, nil
}

func (r *TenantRepo) List(ctx context.Context, managerID uuid.UUID) ([]*domain.Tenant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE manager_id = $1
		 ORDER BY name, created_at`,
		managerID,
	)
	if err != nil {
		return nil, mapErr("tenantRepo.List", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("tenantRepo.List: scan: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("tenantRepo.List: rows", err)
	}

	return tenants, nil
}

func (r *TenantRepo) Update(ctx context.Context, t *domain.Tenant) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET name = $1, email = $2, phone = $3, property_address = $4, unit = $5,
		        rent_amount = $6, rent_due_date = $7, lease_start = $8, lease_end = $9,
		        security_deposit = $10, notes = $11, updated_at = now()
		 WHERE manager_id = $12 AND id = $13`,
		t.Name, nilIfEmpty(t.Email), nilIfEmpty(t.Phone), t.PropertyAddress, nilIfEmpty(t.Unit),
		t.RentAmount, t.RentDueDay, t.LeaseStart, t.LeaseEnd,
		t.SecurityDeposit, t.Notes,
		t.ManagerID, t.ID,
	)
	if err != nil {
		return mapErr("tenantRepo.Update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenantRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete removes a tenant and, by cascade, its rent records. A tenant that
// has been issued notices cannot be deleted.
func (r *TenantRepo) Delete(ctx context.Context, managerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tenants WHERE manager_id = $1 AND id = $2`,
		managerID, id,
	)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("tenantRepo.Delete: tenant has legal notices: %w", domain.ErrConflict)
	}
	if err != nil {
		return mapErr("tenantRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tenantRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	var email, phone, unit *string

	if err := row.Scan(
		&t.ID, &t.ManagerID, &t.Name, &email, &phone,
		&t.PropertyAddress, &unit, &t.RentAmount, &t.RentDueDay,
		&t.LeaseStart, &t.LeaseEnd, &t.SecurityDeposit, &t.Notes,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Email = derefStr(email)
	t.Phone = derefStr(phone)
	t.Unit = derefStr(unit)

	return &t, nil
}
