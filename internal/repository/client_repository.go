package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

const clientColumns = `cl.id, cl.coach_id, cl.name, cl.phone, cl.email, cl.notes, cl.active, cl.balance_owed, cl.monthly_fee, cl.created_at, cl.updated_at`

// ClientRepository manages persistence for clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs a ClientRepository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// List returns the coach's clients matching the filter.
func (r *ClientRepository) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	args := []interface{}{filter.CoachID}
	conditions := []string{"cl.coach_id = $1"}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("cl.active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(cl.name) LIKE $%d OR LOWER(COALESCE(cl.phone, '')) LIKE $%d)", len(args), len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM client_categories cc JOIN categories cat ON cat.id = cc.category_id WHERE cc.client_id = cl.id AND (cat.id = $%d OR cat.parent_category_id = $%d))", len(args), len(args)))
	}
	if filter.HasBalance != nil {
		if *filter.HasBalance {
			conditions = append(conditions, "cl.balance_owed > 0")
		} else {
			conditions = append(conditions, "cl.balance_owed = 0")
		}
	}

	base := fmt.Sprintf("FROM clients cl WHERE %s", strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":         "cl.name",
		"balance_owed": "cl.balance_owed",
		"created_at":   "cl.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "cl.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", clientColumns, base, column, order, size, offset)
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	return clients, total, nil
}

// FindByID fetches a client owned by the coach.
func (r *ClientRepository) FindByID(ctx context.Context, coachID, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients cl WHERE cl.id = $1 AND cl.coach_id = $2`
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id, coachID); err != nil {
		return nil, err
	}
	return &client, nil
}

// Create inserts a new client.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now
	const query = `INSERT INTO clients (id, coach_id, name, phone, email, notes, active, balance_owed, monthly_fee, created_at, updated_at)
        VALUES (:id, :coach_id, :name, :phone, :email, :notes, :active, :balance_owed, :monthly_fee, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update modifies profile fields. The balance is owned by the ledger and never written here.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clients SET name = :name, phone = :phone, email = :email, notes = :notes, active = :active, monthly_fee = :monthly_fee, updated_at = :updated_at
        WHERE id = :id AND coach_id = :coach_id`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// Deactivate flags the client inactive.
func (r *ClientRepository) Deactivate(ctx context.Context, coachID, id string) error {
	const query = `UPDATE clients SET active = FALSE, updated_at = $1 WHERE id = $2 AND coach_id = $3`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, coachID); err != nil {
		return fmt.Errorf("deactivate client: %w", err)
	}
	return nil
}

// Delete removes the client; payments, flags and assignments cascade.
func (r *ClientRepository) Delete(ctx context.Context, coachID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1 AND coach_id = $2`, id, coachID); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// Counts returns total and active client counts.
func (r *ClientRepository) Counts(ctx context.Context, coachID string) (*models.ClientCounts, error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE active) AS active FROM clients WHERE coach_id = $1`
	var counts models.ClientCounts
	if err := r.db.GetContext(ctx, &counts, query, coachID); err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	return &counts, nil
}

// OverdueSummary totals the positive balances of the coach's clients.
func (r *ClientRepository) OverdueSummary(ctx context.Context, coachID string) (*models.OverdueSummary, error) {
	const query = `SELECT COALESCE(SUM(balance_owed), 0) AS total, COUNT(*) AS clients FROM clients WHERE coach_id = $1 AND balance_owed > 0`
	var summary models.OverdueSummary
	if err := r.db.GetContext(ctx, &summary, query, coachID); err != nil {
		return nil, fmt.Errorf("overdue summary: %w", err)
	}
	return &summary, nil
}
