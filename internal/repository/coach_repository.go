package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// CoachRepository mirrors identity provider accounts into the local coaches table.
type CoachRepository struct {
	db *sqlx.DB
}

// NewCoachRepository constructs a CoachRepository.
func NewCoachRepository(db *sqlx.DB) *CoachRepository {
	return &CoachRepository{db: db}
}

// Ensure upserts the coach and opens a trial subscription the first time it is seen.
func (r *CoachRepository) Ensure(ctx context.Context, coach *models.Coach) error {
	now := time.Now().UTC()
	if coach.CreatedAt.IsZero() {
		coach.CreatedAt = now
	}
	coach.UpdatedAt = now
	return withTx(ctx, r.db, "ensure coach", func(tx *sqlx.Tx) error {
		const upsert = `INSERT INTO coaches (id, email, full_name, created_at, updated_at)
            VALUES (:id, :email, :full_name, :created_at, :updated_at)
            ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email,
                full_name = CASE WHEN EXCLUDED.full_name = '' THEN coaches.full_name ELSE EXCLUDED.full_name END,
                updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, upsert, coach); err != nil {
			return fmt.Errorf("upsert coach: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO subscriptions (coach_id) VALUES ($1) ON CONFLICT (coach_id) DO NOTHING`, coach.ID); err != nil {
			return fmt.Errorf("open trial: %w", err)
		}
		return nil
	})
}

// FindByID fetches a coach.
func (r *CoachRepository) FindByID(ctx context.Context, id string) (*models.Coach, error) {
	var coach models.Coach
	if err := r.db.GetContext(ctx, &coach, `SELECT id, email, full_name, created_at, updated_at FROM coaches WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &coach, nil
}
