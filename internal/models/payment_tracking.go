package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPaymentStatus is the per client, per calendar month paid flag.
type MonthlyPaymentStatus struct {
	CoachID   string     `db:"coach_id" json:"coach_id"`
	ClientID  string     `db:"client_id" json:"client_id"`
	Year      int        `db:"year" json:"year"`
	Month     int        `db:"month" json:"month"`
	HasPaid   bool       `db:"has_paid" json:"has_paid"`
	Note      *string    `db:"note" json:"note,omitempty"`
	PaidAt    *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// CategoryPaymentStats counts paid and unpaid clients in a category for the current month.
type CategoryPaymentStats struct {
	CategoryID       string  `db:"category_id" json:"category_id"`
	Name             string  `db:"name" json:"name"`
	Color            string  `db:"color" json:"color"`
	Icon             string  `db:"icon" json:"icon"`
	ParentCategoryID *string `db:"parent_category_id" json:"parent_category_id,omitempty"`
	TotalClients     int     `db:"total_clients" json:"total_clients"`
	PaidClients      int     `db:"paid_clients" json:"paid_clients"`
	UnpaidClients    int     `db:"unpaid_clients" json:"unpaid_clients"`
}

// UnpaidClient is a client without a paid flag for the current month.
type UnpaidClient struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Phone       *string         `db:"phone" json:"phone,omitempty"`
	BalanceOwed decimal.Decimal `db:"balance_owed" json:"balance_owed"`
}

// MonthlyHistoryEntry is one month in a client's payment history.
type MonthlyHistoryEntry struct {
	Year    int        `db:"year" json:"year"`
	Month   int        `db:"month" json:"month"`
	HasPaid bool       `db:"has_paid" json:"has_paid"`
	PaidAt  *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}
