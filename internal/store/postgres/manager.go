package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasehold/internal/domain"
)

type ManagerRepo struct {
	pool *pgxpool.Pool
}

func NewManagerRepo(pool *pgxpool.Pool) *ManagerRepo {
	return &ManagerRepo{pool: pool}
}

const managerColumns = `id, email, password_hash, name, company_name, mailing_address, phone, created_at, updated_at`

func (r *ManagerRepo) Create(ctx context.Context, m *domain.Manager) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO managers (`+managerColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, strings.ToLower(m.Email), m.PasswordHash, m.Name,
		nilIfEmpty(m.CompanyName), nilIfEmpty(m.MailingAddress), nilIfEmpty(m.Phone),
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return mapErr("managerRepo.Create", err)
	}

	return nil
}

func (r *ManagerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Manager, error) {
	m, err := scanManager(r.pool.QueryRow(ctx,
		`SELECT `+managerColumns+` FROM managers WHERE id = $1`, id,
	))
	if err != nil {
		return nil, mapErr("managerRepo.GetByID", err)
	}

	return m, nil
}

func (r *ManagerRepo) GetByEmail(ctx context.Context, email string) (*domain.Manager, error) {
	m, err := scanManager(r.pool.QueryRow(ctx,
		`SELECT `+managerColumns+` FROM managers WHERE email = $1`, strings.ToLower(email),
	))
	if err != nil {
		return nil, mapErr("managerRepo.GetByEmail", err)
	}

	return m, nil
}

func (r *ManagerRepo) Update(ctx context.Context, m *domain.Manager) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE managers SET name = $1, company_name = $2, mailing_address = $3, phone = $4,
		        password_hash = $5, updated_at = now()
		 WHERE id = $6`,
		m.Name, nilIfEmpty(m.CompanyName), nilIfEmpty(m.MailingAddress), nilIfEmpty(m.Phone),
		m.PasswordHash, m.ID,
	)
	if err != nil {
		return mapErr("managerRepo.Update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("managerRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func scanManager(row pgx.Row) (*domain.Manager, error) {
	var m domain.Manager
	var company, address, phone *string

	if err := row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.Name,
		&company, &address, &phone,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	m.CompanyName = derefStr(company)
	m.MailingAddress = derefStr(address)
	m.Phone = derefStr(phone)

	return &m, nil
}
