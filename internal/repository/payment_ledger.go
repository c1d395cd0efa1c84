package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// BalanceFunc computes a client's new balance from the locked payment and the locked
// current balance.
type BalanceFunc func(payment models.Payment, balance decimal.Decimal) decimal.Decimal

// BalanceChange reports the balance before and after a ledger mutation.
type BalanceChange struct {
	Previous decimal.Decimal
	Current  decimal.Decimal
	Changed  bool
}

type lockedClient struct {
	BalanceOwed decimal.Decimal `db:"balance_owed"`
}

func (r *PaymentRepository) lockClient(ctx context.Context, tx *sqlx.Tx, coachID, clientID string) (*lockedClient, error) {
	const query = `SELECT balance_owed FROM clients WHERE id = $1 AND coach_id = $2 FOR UPDATE`
	var client lockedClient
	if err := tx.GetContext(ctx, &client, query, clientID, coachID); err != nil {
		if isMalformedID(err) {
			return nil, fmt.Errorf("lock client: %w", sql.ErrNoRows)
		}
		return nil, fmt.Errorf("lock client: %w", err)
	}
	return &client, nil
}

func (r *PaymentRepository) lockPayment(ctx context.Context, tx *sqlx.Tx, coachID, paymentID string) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1 AND p.coach_id = $2 FOR UPDATE`
	var payment models.Payment
	if err := tx.GetContext(ctx, &payment, query, paymentID, coachID); err != nil {
		if isMalformedID(err) {
			return nil, fmt.Errorf("lock payment: %w", sql.ErrNoRows)
		}
		return nil, fmt.Errorf("lock payment: %w", err)
	}
	return &payment, nil
}

func (r *PaymentRepository) setBalance(ctx context.Context, tx *sqlx.Tx, clientID string, balance decimal.Decimal) error {
	const query = `UPDATE clients SET balance_owed = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, balance, time.Now().UTC(), clientID); err != nil {
		return fmt.Errorf("update client balance: %w", err)
	}
	return nil
}

// CreateWithBalance inserts the payment and applies fn to the client's balance atomically.
func (r *PaymentRepository) CreateWithBalance(ctx context.Context, payment *models.Payment, fn BalanceFunc) (BalanceChange, error) {
	var change BalanceChange
	err := withTx(ctx, r.db, "create payment", func(tx *sqlx.Tx) error {
		client, err := r.lockClient(ctx, tx, payment.CoachID, payment.ClientID)
		if err != nil {
			return err
		}
		if err := r.Create(ctx, tx, payment); err != nil {
			return err
		}
		change.Previous = client.BalanceOwed
		change.Current = fn(*payment, client.BalanceOwed)
		change.Changed = !change.Current.Equal(change.Previous)
		return r.setBalance(ctx, tx, payment.ClientID, change.Current)
	})
	if err != nil {
		return BalanceChange{}, err
	}
	return change, nil
}

// UpdateStatusWithBalance switches the payment to status and applies fn, which receives
// the payment carrying its new status. Nothing is written when the status is unchanged.
func (r *PaymentRepository) UpdateStatusWithBalance(ctx context.Context, coachID, paymentID string, status models.PaymentStatus, fn BalanceFunc) (*models.Payment, BalanceChange, error) {
	var (
		change  BalanceChange
		updated *models.Payment
	)
	err := withTx(ctx, r.db, "update payment status", func(tx *sqlx.Tx) error {
		payment, err := r.lockPayment(ctx, tx, coachID, paymentID)
		if err != nil {
			return err
		}
		client, err := r.lockClient(ctx, tx, coachID, payment.ClientID)
		if err != nil {
			return err
		}
		change.Previous = client.BalanceOwed
		change.Current = client.BalanceOwed
		updated = payment
		if payment.Status == status {
			return nil
		}
		if err := r.UpdateStatus(ctx, tx, payment.ID, status); err != nil {
			return err
		}
		payment.Status = status
		payment.UpdatedAt = time.Now().UTC()
		change.Current = fn(*payment, client.BalanceOwed)
		change.Changed = true
		return r.setBalance(ctx, tx, payment.ClientID, change.Current)
	})
	if err != nil {
		return nil, BalanceChange{}, err
	}
	return updated, change, nil
}

// DeleteWithBalance removes the payment and applies fn to reverse its effect.
func (r *PaymentRepository) DeleteWithBalance(ctx context.Context, coachID, paymentID string, fn BalanceFunc) (*models.Payment, BalanceChange, error) {
	var (
		change  BalanceChange
		deleted *models.Payment
	)
	err := withTx(ctx, r.db, "delete payment", func(tx *sqlx.Tx) error {
		payment, err := r.lockPayment(ctx, tx, coachID, paymentID)
		if err != nil {
			return err
		}
		client, err := r.lockClient(ctx, tx, coachID, payment.ClientID)
		if err != nil {
			return err
		}
		if err := r.Delete(ctx, tx, payment.ID); err != nil {
			return err
		}
		deleted = payment
		change.Previous = client.BalanceOwed
		change.Current = fn(*payment, client.BalanceOwed)
		change.Changed = !change.Current.Equal(change.Previous)
		return r.setBalance(ctx, tx, payment.ClientID, change.Current)
	})
	if err != nil {
		return nil, BalanceChange{}, err
	}
	return deleted, change, nil
}

// AdjustBalance applies fn to the locked client balance without touching payments.
func (r *PaymentRepository) AdjustBalance(ctx context.Context, coachID, clientID string, fn func(balance decimal.Decimal) decimal.Decimal) (BalanceChange, error) {
	var change BalanceChange
	err := withTx(ctx, r.db, "adjust balance", func(tx *sqlx.Tx) error {
		client, err := r.lockClient(ctx, tx, coachID, clientID)
		if err != nil {
			return err
		}
		change.Previous = client.BalanceOwed
		change.Current = fn(client.BalanceOwed)
		change.Changed = !change.Current.Equal(change.Previous)
		if !change.Changed {
			return nil
		}
		return r.setBalance(ctx, tx, clientID, change.Current)
	})
	if err != nil {
		return BalanceChange{}, err
	}
	return change, nil
}

// ReconcileBalance compares the stored balance with the pending sum under a row lock and,
// when apply is set, overwrites the stored value.
func (r *PaymentRepository) ReconcileBalance(ctx context.Context, coachID, clientID string, apply bool) (*models.BalanceAudit, error) {
	audit := &models.BalanceAudit{ClientID: clientID}
	err := withTx(ctx, r.db, "reconcile balance", func(tx *sqlx.Tx) error {
		client, err := r.lockClient(ctx, tx, coachID, clientID)
		if err != nil {
			return err
		}
		derived, err := r.SumPendingByClient(ctx, tx, coachID, clientID)
		if err != nil {
			return err
		}
		audit.Stored = client.BalanceOwed
		audit.Derived = derived
		audit.Drift = client.BalanceOwed.Sub(derived)
		if !apply || audit.Drift.IsZero() {
			return nil
		}
		if err := r.setBalance(ctx, tx, clientID, derived); err != nil {
			return err
		}
		audit.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}
