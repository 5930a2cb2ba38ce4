package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/lead-service/internal/domain"
)

// LeadFilter captures listing parameters.
type LeadFilter struct {
	Search       *string
	City         *domain.City
	PropertyType *domain.PropertyType
	Status       *domain.LeadStatus
	Timeline     *domain.Timeline
	OwnerID      *string
	Limit        int
	Offset       int
}

// LeadRepository encapsulates lead persistence. Update performs the version
// check and the write as one conditional statement so concurrent writers for
// the same id are serialized by storage.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead, expectedUpdatedAt *time.Time) error
	Delete(ctx context.Context, id string) (*domain.Lead, error)
	ListWithFilter(ctx context.Context, filter LeadFilter) ([]domain.Lead, int, error)
}

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository instantiates the Postgres-backed repository.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `id, owner_id, full_name, phone, email, city, property_type, bhk, purpose,
               budget_min, budget_max, timeline, source, status, notes, tags, created_at, updated_at`

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	const query = `
        INSERT INTO leads (owner_id, full_name, phone, email, city, property_type, bhk, purpose,
                           budget_min, budget_max, timeline, source, status, notes, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		lead.OwnerID,
		lead.FullName,
		lead.Phone,
		lead.Email,
		lead.City,
		lead.PropertyType,
		lead.Bhk,
		lead.Purpose,
		lead.BudgetMin,
		lead.BudgetMax,
		lead.Timeline,
		lead.Source,
		lead.Status,
		lead.Notes,
		lead.Tags,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id=$1`, leadColumns)
	var lead domain.Lead
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&lead)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// Update writes the mutable fields of lead. When expectedUpdatedAt is
// supplied the statement only matches while the stored version is not newer
// than the client's token, making the version check and the write one atomic
// compare-and-swap. The stored updated_at is bumped strictly, even when the
// database clock has not advanced past the previous version.
func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead, expectedUpdatedAt *time.Time) error {
	query := `
        UPDATE leads SET full_name=$1, phone=$2, email=$3, city=$4, property_type=$5, bhk=$6,
            purpose=$7, budget_min=$8, budget_max=$9, timeline=$10, source=$11, status=$12,
            notes=$13, tags=$14,
            updated_at=GREATEST(now(), updated_at + interval '1 microsecond')
        WHERE id=$15`
	args := []any{
		lead.FullName,
		lead.Phone,
		lead.Email,
		lead.City,
		lead.PropertyType,
		lead.Bhk,
		lead.Purpose,
		lead.BudgetMin,
		lead.BudgetMax,
		lead.Timeline,
		lead.Source,
		lead.Status,
		lead.Notes,
		lead.Tags,
		lead.ID,
	}
	if expectedUpdatedAt != nil {
		query += ` AND updated_at <= $16`
		args = append(args, *expectedUpdatedAt)
	}
	query += ` RETURNING updated_at`

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&lead.UpdatedAt); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		// Zero rows matched: either the lead is gone or the token is stale.
		if _, getErr := r.GetByID(ctx, lead.ID); getErr != nil {
			return getErr
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id string) (*domain.Lead, error) {
	query := fmt.Sprintf(`DELETE FROM leads WHERE id=$1 RETURNING %s`, leadColumns)
	var lead domain.Lead
	if err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&lead)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) ListWithFilter(ctx context.Context, filter LeadFilter) ([]domain.Lead, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		clauses = append(clauses, fmt.Sprintf("city=$%d", len(args)))
	}
	if filter.PropertyType != nil {
		args = append(args, *filter.PropertyType)
		clauses = append(clauses, fmt.Sprintf("property_type=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Timeline != nil {
		args = append(args, *filter.Timeline)
		clauses = append(clauses, fmt.Sprintf("timeline=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(full_name) LIKE %s OR phone LIKE %s OR LOWER(COALESCE(email,'')) LIKE %s OR LOWER(COALESCE(notes,'')) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM leads WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		leadColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func scanTargets(lead *domain.Lead) []any {
	return []any{
		&lead.ID,
		&lead.OwnerID,
		&lead.FullName,
		&lead.Phone,
		&lead.Email,
		&lead.City,
		&lead.PropertyType,
		&lead.Bhk,
		&lead.Purpose,
		&lead.BudgetMin,
		&lead.BudgetMax,
		&lead.Timeline,
		&lead.Source,
		&lead.Status,
		&lead.Notes,
		&lead.Tags,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	}
}

func scanLeads(rows pgx.Rows) ([]domain.Lead, error) {
	var result []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(scanTargets(&lead)...); err != nil {
			return nil, err
		}
		result = append(result, lead)
	}
	return result, rows.Err()
}
