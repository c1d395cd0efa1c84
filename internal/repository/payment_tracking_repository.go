package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// PaymentTrackingRepository persists the monthly paid flags. A missing row reads as
// unpaid through explicit LEFT JOIN defaults.
type PaymentTrackingRepository struct {
	db *sqlx.DB
}

// NewPaymentTrackingRepository constructs a PaymentTrackingRepository.
func NewPaymentTrackingRepository(db *sqlx.DB) *PaymentTrackingRepository {
	return &PaymentTrackingRepository{db: db}
}

// HasPaid reports the flag for (client, year, month); sql.ErrNoRows when the client is unknown.
func (r *PaymentTrackingRepository) HasPaid(ctx context.Context, coachID, clientID string, year, month int) (bool, error) {
	const query = `SELECT COALESCE(mps.has_paid, FALSE)
        FROM clients cl
        LEFT JOIN monthly_payment_status mps ON mps.client_id = cl.id AND mps.coach_id = cl.coach_id AND mps.year = $3 AND mps.month = $4
        WHERE cl.id = $1 AND cl.coach_id = $2`
	var paid bool
	if err := r.db.GetContext(ctx, &paid, query, clientID, coachID, year, month); err != nil {
		return false, err
	}
	return paid, nil
}

// Upsert writes the flag, keeping an earlier note when none is supplied. The row is only
// written when the client belongs to the coach; otherwise sql.ErrNoRows is returned.
func (r *PaymentTrackingRepository) Upsert(ctx context.Context, status *models.MonthlyPaymentStatus) error {
	status.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO monthly_payment_status (coach_id, client_id, year, month, has_paid, note, paid_at, updated_at)
        SELECT cl.coach_id, cl.id, CAST(:year AS INTEGER), CAST(:month AS INTEGER), CAST(:has_paid AS BOOLEAN),
               CAST(:note AS TEXT), CAST(:paid_at AS TIMESTAMPTZ), CAST(:updated_at AS TIMESTAMPTZ)
        FROM clients cl
        WHERE cl.id = :client_id AND cl.coach_id = :coach_id
        ON CONFLICT (coach_id, client_id, year, month)
        DO UPDATE SET has_paid = EXCLUDED.has_paid, note = COALESCE(EXCLUDED.note, monthly_payment_status.note),
                      paid_at = EXCLUDED.paid_at, updated_at = EXCLUDED.updated_at`
	res, err := r.db.NamedExecContext(ctx, query, status)
	if err != nil {
		return fmt.Errorf("upsert monthly payment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert monthly payment status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("upsert monthly payment status: %w", sql.ErrNoRows)
	}
	return nil
}

const categoryStatsQuery = `WITH members AS (
        SELECT cat.id AS category_id, cc.client_id
        FROM categories cat
        JOIN categories member ON member.id = cat.id OR member.parent_category_id = cat.id
        JOIN client_categories cc ON cc.category_id = member.id
        JOIN clients cl ON cl.id = cc.client_id AND cl.active
        WHERE cat.coach_id = $1
    )
    SELECT cat.id AS category_id, cat.name, cat.color, cat.icon, cat.parent_category_id,
        COUNT(DISTINCT m.client_id) AS total_clients,
        COUNT(DISTINCT m.client_id) FILTER (WHERE COALESCE(mps.has_paid, FALSE)) AS paid_clients,
        COUNT(DISTINCT m.client_id) FILTER (WHERE NOT COALESCE(mps.has_paid, FALSE)) AS unpaid_clients
    FROM categories cat
    LEFT JOIN members m ON m.category_id = cat.id
    LEFT JOIN monthly_payment_status mps ON mps.client_id = m.client_id AND mps.coach_id = cat.coach_id AND mps.year = $2 AND mps.month = $3
    WHERE cat.coach_id = $1 AND %s
    GROUP BY cat.id, cat.name, cat.color, cat.icon, cat.parent_category_id
    ORDER BY cat.name`

// StatsByCategory counts paid and unpaid active clients per top level category. Clients of
// subcategories count towards their parent.
func (r *PaymentTrackingRepository) StatsByCategory(ctx context.Context, coachID string, year, month int) ([]models.CategoryPaymentStats, error) {
	query := fmt.Sprintf(categoryStatsQuery, "cat.parent_category_id IS NULL")
	var stats []models.CategoryPaymentStats
	if err := r.db.SelectContext(ctx, &stats, query, coachID, year, month); err != nil {
		return nil, fmt.Errorf("payment stats by category: %w", err)
	}
	return stats, nil
}

// StatsBySubcategory counts paid and unpaid active clients per subcategory of parentID.
func (r *PaymentTrackingRepository) StatsBySubcategory(ctx context.Context, coachID, parentID string, year, month int) ([]models.CategoryPaymentStats, error) {
	query := fmt.Sprintf(categoryStatsQuery, "cat.parent_category_id = $4")
	var stats []models.CategoryPaymentStats
	if err := r.db.SelectContext(ctx, &stats, query, coachID, year, month, parentID); err != nil {
		return nil, fmt.Errorf("payment stats by subcategory: %w", err)
	}
	return stats, nil
}

// UnpaidInCategory lists active clients of the category, or of its subcategories when
// includeChildren is set, that have not paid for the month.
func (r *PaymentTrackingRepository) UnpaidInCategory(ctx context.Context, coachID, categoryID string, includeChildren bool, year, month int) ([]models.UnpaidClient, error) {
	scope := "cat.id = $2"
	if includeChildren {
		scope = "(cat.id = $2 OR cat.parent_category_id = $2)"
	}
	query := fmt.Sprintf(`SELECT DISTINCT cl.id, cl.name, cl.phone, cl.balance_owed
        FROM clients cl
        JOIN client_categories cc ON cc.client_id = cl.id
        JOIN categories cat ON cat.id = cc.category_id
        LEFT JOIN monthly_payment_status mps ON mps.client_id = cl.id AND mps.coach_id = cl.coach_id AND mps.year = $3 AND mps.month = $4
        WHERE cl.coach_id = $1 AND cl.active AND %s AND NOT COALESCE(mps.has_paid, FALSE)
        ORDER BY cl.name`, scope)
	var clients []models.UnpaidClient
	if err := r.db.SelectContext(ctx, &clients, query, coachID, categoryID, year, month); err != nil {
		return nil, fmt.Errorf("list unpaid clients in category: %w", err)
	}
	return clients, nil
}

// Unpaid lists every active client without a paid flag for the month.
func (r *PaymentTrackingRepository) Unpaid(ctx context.Context, coachID string, year, month int) ([]models.UnpaidClient, error) {
	const query = `SELECT cl.id, cl.name, cl.phone, cl.balance_owed
        FROM clients cl
        LEFT JOIN monthly_payment_status mps ON mps.client_id = cl.id AND mps.coach_id = cl.coach_id AND mps.year = $2 AND mps.month = $3
        WHERE cl.coach_id = $1 AND cl.active AND NOT COALESCE(mps.has_paid, FALSE)
        ORDER BY cl.name`
	var clients []models.UnpaidClient
	if err := r.db.SelectContext(ctx, &clients, query, coachID, year, month); err != nil {
		return nil, fmt.Errorf("list unpaid clients: %w", err)
	}
	return clients, nil
}

// History returns one entry per month between from and to (inclusive, both first-of-month),
// newest first, with false for months that have no row.
func (r *PaymentTrackingRepository) History(ctx context.Context, coachID, clientID string, from, to time.Time) ([]models.MonthlyHistoryEntry, error) {
	const query = `SELECT EXTRACT(YEAR FROM m)::INT AS year, EXTRACT(MONTH FROM m)::INT AS month,
            COALESCE(mps.has_paid, FALSE) AS has_paid, mps.paid_at
        FROM generate_series($3::date, $4::date, INTERVAL '1 month') AS m
        LEFT JOIN monthly_payment_status mps ON mps.coach_id = $1 AND mps.client_id = $2
            AND mps.year = EXTRACT(YEAR FROM m)::INT AND mps.month = EXTRACT(MONTH FROM m)::INT
        ORDER BY m DESC`
	var history []models.MonthlyHistoryEntry
	if err := r.db.SelectContext(ctx, &history, query, coachID, clientID, from.Format("2006-01-02"), to.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("monthly payment history: %w", err)
	}
	return history, nil
}
