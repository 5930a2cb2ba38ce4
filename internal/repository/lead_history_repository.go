package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lead-service/internal/domain"
)

// LeadHistoryRepository stores the append-only audit trail.
type LeadHistoryRepository interface {
	Create(ctx context.Context, entry *domain.LeadHistory) error
	ListByLead(ctx context.Context, leadID string, limit, offset int) ([]domain.LeadHistory, error)
}

type leadHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewLeadHistoryRepository builds the Postgres-backed repository.
func NewLeadHistoryRepository(pool *pgxpool.Pool) LeadHistoryRepository {
	return &leadHistoryRepository{pool: pool}
}

func (r *leadHistoryRepository) Create(ctx context.Context, entry *domain.LeadHistory) error {
	const query = `
        INSERT INTO lead_history (lead_id, changed_by, action, changes, snapshot)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.LeadID,
		entry.ChangedBy,
		entry.Action,
		entry.Changes,
		entry.Snapshot,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByLead returns entries newest-first.
func (r *leadHistoryRepository) ListByLead(ctx context.Context, leadID string, limit, offset int) ([]domain.LeadHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, lead_id, changed_by, action, changes, snapshot, created_at
        FROM lead_history WHERE lead_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, leadID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeadHistory
	for rows.Next() {
		var entry domain.LeadHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.LeadID,
			&entry.ChangedBy,
			&entry.Action,
			&entry.Changes,
			&entry.Snapshot,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
