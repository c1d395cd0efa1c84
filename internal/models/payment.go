package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is either completed (money received) or pending (money owed).
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPending
}

// Opposite flips completed and pending.
func (s PaymentStatus) Opposite() PaymentStatus {
	if s == PaymentStatusCompleted {
		return PaymentStatusPending
	}
	return PaymentStatusCompleted
}

// Payment is one ledger entry for a client.
type Payment struct {
	ID            string          `db:"id" json:"id"`
	CoachID       string          `db:"coach_id" json:"coach_id"`
	ClientID      string          `db:"client_id" json:"client_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Status        PaymentStatus   `db:"status" json:"status"`
	PaymentDate   time.Time       `db:"payment_date" json:"payment_date"`
	Note          *string         `db:"note" json:"note,omitempty"`
	PaymentMethod *string         `db:"payment_method" json:"payment_method,omitempty"`
	PaymentType   *string         `db:"payment_type" json:"payment_type,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// PaymentListItem adds the client name for coach-wide listings.
type PaymentListItem struct {
	Payment
	ClientName string `db:"client_name" json:"client_name"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	CoachID  string
	ClientID string
	Status   PaymentStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// LedgerResult reports the outcome of a balance-affecting operation.
type LedgerResult struct {
	Payment             *Payment        `json:"payment,omitempty"`
	ClientID            string          `json:"client_id"`
	PreviousBalance     decimal.Decimal `json:"previous_balance"`
	Balance             decimal.Decimal `json:"balance"`
	HasPaid             *bool           `json:"has_paid,omitempty"`
	MonthlyStatusSynced bool            `json:"monthly_status_synced"`
}

// BalanceAudit compares the stored balance with the sum of pending payments.
type BalanceAudit struct {
	ClientID string          `json:"client_id"`
	Stored   decimal.Decimal `json:"stored"`
	Derived  decimal.Decimal `json:"derived"`
	Drift    decimal.Decimal `json:"drift"`
	Applied  bool            `json:"applied"`
}
