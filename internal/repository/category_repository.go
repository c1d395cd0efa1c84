package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

const categorySelect = `SELECT cat.id, cat.coach_id, cat.name, cat.color, cat.icon, cat.parent_category_id, cat.created_at, cat.updated_at,
        COUNT(cc.client_id) AS client_count
        FROM categories cat
        LEFT JOIN client_categories cc ON cc.category_id = cat.id`

const categoryGroupBy = ` GROUP BY cat.id, cat.coach_id, cat.name, cat.color, cat.icon, cat.parent_category_id, cat.created_at, cat.updated_at`

// CategoryRepository manages client categories and assignments.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs a CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns the coach's categories, parents first, with assigned client counts.
func (r *CategoryRepository) List(ctx context.Context, coachID string) ([]models.Category, error) {
	query := categorySelect + ` WHERE cat.coach_id = $1` + categoryGroupBy + ` ORDER BY cat.parent_category_id NULLS FIRST, cat.name`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query, coachID); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByID fetches one category owned by the coach.
func (r *CategoryRepository) FindByID(ctx context.Context, coachID, id string) (*models.Category, error) {
	query := categorySelect + ` WHERE cat.id = $1 AND cat.coach_id = $2` + categoryGroupBy
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, id, coachID); err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByClient returns the categories a client is assigned to.
func (r *CategoryRepository) ListByClient(ctx context.Context, coachID, clientID string) ([]models.Category, error) {
	const query = `SELECT cat.id, cat.coach_id, cat.name, cat.color, cat.icon, cat.parent_category_id, cat.created_at, cat.updated_at
        FROM categories cat
        JOIN client_categories cc ON cc.category_id = cat.id
        WHERE cc.client_id = $1 AND cat.coach_id = $2
        ORDER BY cat.name`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query, clientID, coachID); err != nil {
		return nil, fmt.Errorf("list client categories: %w", err)
	}
	return categories, nil
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now
	const query = `INSERT INTO categories (id, coach_id, name, color, icon, parent_category_id, created_at, updated_at)
        VALUES (:id, :coach_id, :name, :color, :icon, :parent_category_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update modifies name, color, icon and parent.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE categories SET name = :name, color = :color, icon = :icon, parent_category_id = :parent_category_id, updated_at = :updated_at
        WHERE id = :id AND coach_id = :coach_id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes the category, its subcategories and every assignment to them.
func (r *CategoryRepository) Delete(ctx context.Context, coachID, id string) error {
	return withTx(ctx, r.db, "delete category", func(tx *sqlx.Tx) error {
		const assignments = `DELETE FROM client_categories WHERE category_id IN (
            SELECT id FROM categories WHERE coach_id = $1 AND (id = $2 OR parent_category_id = $2))`
		if _, err := tx.ExecContext(ctx, assignments, coachID, id); err != nil {
			return fmt.Errorf("delete category assignments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE coach_id = $1 AND parent_category_id = $2`, coachID, id); err != nil {
			return fmt.Errorf("delete subcategories: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE coach_id = $1 AND id = $2`, coachID, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("delete category: %w", sql.ErrNoRows)
		}
		return nil
	})
}

// ToggleClient assigns the client when absent and removes the assignment when present.
// It returns whether the client is assigned afterwards.
func (r *CategoryRepository) ToggleClient(ctx context.Context, clientID, categoryID string) (bool, error) {
	var assigned bool
	err := withTx(ctx, r.db, "toggle client category", func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM client_categories WHERE client_id = $1 AND category_id = $2`, clientID, categoryID)
		if err != nil {
			return fmt.Errorf("remove client category: %w", err)
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("remove client category: %w", err)
		}
		if removed > 0 {
			assigned = false
			return nil
		}
		const insert = `INSERT INTO client_categories (client_id, category_id, created_at) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, insert, clientID, categoryID, time.Now().UTC()); err != nil {
			if isMissingReference(err) {
				return fmt.Errorf("assign client category: %w", sql.ErrNoRows)
			}
			return fmt.Errorf("assign client category: %w", err)
		}
		assigned = true
		return nil
	})
	return assigned, err
}
