package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/leasehold/internal/domain"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

func (r *AuditRepo) Record(ctx context.Context, entry *domain.AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("auditRepo.Record: marshal details: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_log (id, manager_id, actor_id, action, resource, resource_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.ManagerID, entry.ActorID,
		entry.Action, entry.Resource, entry.ResourceID,
		raw, entry.CreatedAt,
	)
	if err != nil {
		return mapErr("auditRepo.Record", err)
	}

	return nil
}

func (r *AuditRepo) ListByManager(ctx context.Context, managerID uuid.UUID, limit, offset int) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, manager_id, actor_id, action, resource, resource_id, details, created_at
		 FROM audit_log WHERE manager_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		managerID, limit, offset,
	)
	if err != nil {
		return nil, mapErr("auditRepo.ListByManager", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListByManager")
}

func (r *AuditRepo) ListByResource(ctx context.Context, managerID uuid.UUID, resource string, resourceID uuid.UUID) ([]*domain.AuditEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, manager_id, actor_id, action, resource, resource_id, details, created_at
		 FROM audit_log WHERE manager_id = $1 AND resource = $2 AND resource_id = $3
		 ORDER BY created_at DESC`,
		managerID, resource, resourceID,
	)
	if err != nil {
		return nil, mapErr("auditRepo.ListByResource", err)
	}
	defer rows.Close()

	return scanAuditEntries(rows, "auditRepo.ListByResource")
}

func scanAuditEntries(rows pgx.Rows, caller string) ([]*domain.AuditEntry, error) {
	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var details []byte

		if err := rows.Scan(
			&e.ID, &e.ManagerID, &e.ActorID, &e.Action,
			&e.Resource, &e.ResourceID, &details, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		if err := json.Unmarshal(details, &e.Details); err != nil {
			return nil, fmt.Errorf("%s: unmarshal details: %w", caller, err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(caller+": rows", err)
	}

	return entries, nil
}
