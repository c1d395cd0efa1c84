package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

const paymentColumns = `p.id, p.coach_id, p.client_id, p.amount, p.status, p.payment_date, p.note, p.payment_method, p.payment_type, p.created_at, p.updated_at`

// PaymentRepository is the payment record store. Balance-affecting mutations live in
// payment_ledger.go and always run inside a transaction.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a payment row.
func (r *PaymentRepository) Create(ctx context.Context, exec sqlx.ExtContext, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO payments (id, coach_id, client_id, amount, status, payment_date, note, payment_method, payment_type, created_at, updated_at)
        VALUES (:id, :coach_id, :client_id, :amount, :status, :payment_date, :note, :payment_method, :payment_type, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// FindByID fetches a payment owned by the coach.
func (r *PaymentRepository) FindByID(ctx context.Context, coachID, id string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1 AND p.coach_id = $2`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id, coachID); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByClient returns a client's payments newest first. A non-positive limit returns all.
func (r *PaymentRepository) ListByClient(ctx context.Context, coachID, clientID string, limit int) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.coach_id = $1 AND p.client_id = $2 ORDER BY p.payment_date DESC, p.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, coachID, clientID); err != nil {
		return nil, fmt.Errorf("list client payments: %w", err)
	}
	return payments, nil
}

// List returns coach payments matching the filter together with the total count.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentListItem, int, error) {
	args := []interface{}{filter.CoachID}
	conditions := []string{"p.coach_id = $1"}

	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("p.client_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("p.payment_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("p.payment_date < $%d", len(args)))
	}

	base := fmt.Sprintf("FROM payments p JOIN clients c ON c.id = p.client_id WHERE %s", strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, c.name AS client_name %s ORDER BY p.payment_date DESC, p.created_at DESC LIMIT %d OFFSET %d`, paymentColumns, base, size, offset)
	var items []models.PaymentListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return items, total, nil
}

// UpdateStatus sets the payment status.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.PaymentStatus) error {
	const query = `UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// Delete removes a payment row.
func (r *PaymentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// SumPendingByClient totals the client's pending payments.
func (r *PaymentRepository) SumPendingByClient(ctx context.Context, exec sqlx.ExtContext, coachID, clientID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE coach_id = $1 AND client_id = $2 AND status = $3`
	var total decimal.Decimal
	if err := sqlx.GetContext(ctx, r.exec(exec), &total, query, coachID, clientID, models.PaymentStatusPending); err != nil {
		return decimal.Zero, fmt.Errorf("sum pending payments: %w", err)
	}
	return total, nil
}

// ListCompletedSince returns completed payments dated at or after since.
func (r *PaymentRepository) ListCompletedSince(ctx context.Context, coachID string, since time.Time) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.coach_id = $1 AND p.status = $2 AND p.payment_date >= $3 ORDER BY p.payment_date`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, coachID, models.PaymentStatusCompleted, since); err != nil {
		return nil, fmt.Errorf("list completed payments: %w", err)
	}
	return payments, nil
}
