package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasehold/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	pool     *pgxpool.Pool
	managers *ManagerRepo
	tenants  *TenantRepo
	records  *RentRecordRepo
	notices  *NoticeRepo
	audit    *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:     pool,
		managers: NewManagerRepo(pool),
		tenants:  NewTenantRepo(pool),
		records:  NewRentRecordRepo(pool),
		notices:  NewNoticeRepo(pool),
		audit:    NewAuditRepo(pool),
	}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return mapErr("postgres.Store.Migrate", err)
	}
	return nil
}

// Ping checks connectivity for health probes.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return mapErr("postgres.Store.Ping", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Managers() domain.ManagerRepository       { return s.managers }
func (s *Store) Tenants() domain.TenantRepository         { return s.tenants }
func (s *Store) RentRecords() domain.RentRecordRepository { return s.records }
func (s *Store) Notices() domain.NoticeRepository         { return s.notices }
func (s *Store) Audit() domain.AuditRepository            { return s.audit }
