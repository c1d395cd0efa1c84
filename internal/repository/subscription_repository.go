package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// SubscriptionRepository calls the subscription SQL functions.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Status calls check_subscription_status; sql.ErrNoRows when the coach has no subscription row.
func (r *SubscriptionRepository) Status(ctx context.Context, coachID string) (*models.SubscriptionStatus, error) {
	const query = `SELECT is_active, days_left, status FROM check_subscription_status($1)`
	var status models.SubscriptionStatus
	if err := r.db.GetContext(ctx, &status, query, coachID); err != nil {
		return nil, err
	}
	return &status, nil
}

// TrialInfo calls get_trial_info.
func (r *SubscriptionRepository) TrialInfo(ctx context.Context, coachID string) (*models.TrialInfo, error) {
	const query = `SELECT status, is_active, days_left, trial_ends_at, subscription_ends_at FROM get_trial_info($1)`
	var info models.TrialInfo
	if err := r.db.GetContext(ctx, &info, query, coachID); err != nil {
		return nil, err
	}
	return &info, nil
}

// checkoutTTL bounds how long an issued checkout can still be confirmed.
const checkoutTTL = "1 day"

// RecordCheckout stores an issued checkout so that only it can later be confirmed.
func (r *SubscriptionRepository) RecordCheckout(ctx context.Context, checkout *models.SubscriptionCheckout) error {
	checkout.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO subscription_checkouts (coach_id, subscription_id, payment_intent_id, plan, created_at)
        VALUES (:coach_id, :subscription_id, :payment_intent_id, :plan, :created_at)
        ON CONFLICT (coach_id, subscription_id)
        DO UPDATE SET payment_intent_id = EXCLUDED.payment_intent_id, plan = EXCLUDED.plan, created_at = EXCLUDED.created_at`
	if _, err := r.db.NamedExecContext(ctx, query, checkout); err != nil {
		return fmt.Errorf("record checkout: %w", err)
	}
	return nil
}

// Activate consumes the coach's matching checkout, extends the subscription and records
// the processor payment in one transaction. sql.ErrNoRows means no unexpired checkout
// matched, so a payment intent can never be confirmed twice.
func (r *SubscriptionRepository) Activate(ctx context.Context, subscriptionID string, months int, payment *models.SubscriptionPayment) error {
	return withTx(ctx, r.db, "activate subscription", func(tx *sqlx.Tx) error {
		const claim = `DELETE FROM subscription_checkouts
            WHERE coach_id = $1 AND subscription_id = $2 AND payment_intent_id = $3 AND plan = $4
              AND created_at > NOW() - CAST($5 AS INTERVAL)`
		res, err := tx.ExecContext(ctx, claim, payment.CoachID, subscriptionID, payment.PaymentIntentID, payment.Plan, checkoutTTL)
		if err != nil {
			return fmt.Errorf("claim checkout: %w", err)
		}
		claimed, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim checkout: %w", err)
		}
		if claimed == 0 {
			return fmt.Errorf("claim checkout: %w", sql.ErrNoRows)
		}
		if _, err := tx.ExecContext(ctx, `SELECT activate_subscription($1, $2, $3)`, payment.CoachID, subscriptionID, months); err != nil {
			return fmt.Errorf("activate subscription: %w", err)
		}
		const record = `SELECT record_payment($1, $2, $3, $4, $5, $6)`
		if err := tx.GetContext(ctx, &payment.ID, record, payment.CoachID, payment.Amount, payment.Currency, payment.Status, payment.PaymentIntentID, payment.Plan); err != nil {
			return fmt.Errorf("record subscription payment: %w", err)
		}
		return nil
	})
}
