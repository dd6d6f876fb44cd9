package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planviva/planviva/internal/platform/db"
)

// Repository defines persistence operations for plans.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, id uuid.UUID) (*Plan, error)
	List(ctx context.Context, ownerID int64) ([]Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
	Revisions(ctx context.Context, id uuid.UUID) ([]Revision, error)
	ListRecent(ctx context.Context, limit int) ([]Plan, error)
}

// PGRepository implements Repository using PostgreSQL. Plan assumptions are
// stored as a JSONB document; relational columns carry only what list and
// uniqueness queries need.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new plan with revision 1.
func (r *PGRepository) Create(ctx context.Context, p *Plan) error {
	raw, err := json.Marshal(p.Input)
	if err != nil {
		return fmt.Errorf("plan: marshal input: %w", err)
	}

	query := `
		INSERT INTO plans (id, owner_id, name, input, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW(), NOW())
		RETURNING revision, created_at, updated_at`

	err = r.pool.QueryRow(ctx, query, p.ID, p.OwnerID, p.Name, raw).
		Scan(&p.Revision, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "uq_plans_owner_name") {
			return ErrNameTaken
		}
		return err
	}
	return nil
}

// Get fetches a plan by ID.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	query := `
		SELECT id, owner_id, name, input, revision, created_at, updated_at
		FROM plans
		WHERE id = $1`

	var p Plan
	var raw []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.OwnerID, &p.Name, &raw, &p.Revision, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Input); err != nil {
		return nil, fmt.Errorf("plan: unmarshal input: %w", err)
	}
	return &p, nil
}

// List returns all plans belonging to an owner, most recently updated first.
func (r *PGRepository) List(ctx context.Context, ownerID int64) ([]Plan, error) {
	query := `
		SELECT id, owner_id, name, input, revision, created_at, updated_at
		FROM plans
		WHERE owner_id = $1
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var raw []byte
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &raw, &p.Revision, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p.Input); err != nil {
			return nil, fmt.Errorf("plan: unmarshal input: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Update replaces the plan's assumptions, bumps its revision and snapshots
// the previous assumptions into plan_revisions, all in one transaction.
func (r *PGRepository) Update(ctx context.Context, p *Plan) error {
	raw, err := json.Marshal(p.Input)
	if err != nil {
		return fmt.Errorf("plan: marshal input: %w", err)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		snapshot := `
			INSERT INTO plan_revisions (plan_id, revision, input, created_at)
			SELECT id, revision, input, NOW() FROM plans WHERE id = $1`
		tag, err := tx.Exec(ctx, snapshot, p.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		update := `
			UPDATE plans
			SET name = $2, input = $3, revision = revision + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING revision, updated_at`
		err = tx.QueryRow(ctx, update, p.ID, p.Name, raw).Scan(&p.Revision, &p.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "uq_plans_owner_name") {
				return ErrNameTaken
			}
			return err
		}
		return nil
	})
}

// Delete removes a plan and its revision history.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM plan_revisions WHERE plan_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListRecent returns the most recently updated plans across all owners.
// The warmup job uses it to decide which results to precompute.
func (r *PGRepository) ListRecent(ctx context.Context, limit int) ([]Plan, error) {
	query := `
		SELECT id, owner_id, name, input, revision, created_at, updated_at
		FROM plans
		ORDER BY updated_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var raw []byte
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &raw, &p.Revision, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p.Input); err != nil {
			return nil, fmt.Errorf("plan: unmarshal input: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Revisions returns the snapshot history for a plan, newest first.
func (r *PGRepository) Revisions(ctx context.Context, id uuid.UUID) ([]Revision, error) {
	query := `
		SELECT plan_id, revision, input, created_at
		FROM plan_revisions
		WHERE plan_id = $1
		ORDER BY revision DESC`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var rev Revision
		var raw []byte
		if err := rows.Scan(&rev.PlanID, &rev.Revision, &raw, &rev.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &rev.Input); err != nil {
			return nil, fmt.Errorf("plan: unmarshal revision input: %w", err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

var _ Repository = (*PGRepository)(nil)
