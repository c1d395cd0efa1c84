package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client is a person a coach trains and bills.
type Client struct {
	ID          string              `db:"id" json:"id"`
	CoachID     string              `db:"coach_id" json:"coach_id"`
	Name        string              `db:"name" json:"name"`
	Phone       *string             `db:"phone" json:"phone,omitempty"`
	Email       *string             `db:"email" json:"email,omitempty"`
	Notes       string              `db:"notes" json:"notes"`
	Active      bool                `db:"active" json:"active"`
	BalanceOwed decimal.Decimal     `db:"balance_owed" json:"balance_owed"`
	MonthlyFee  decimal.NullDecimal `db:"monthly_fee" json:"monthly_fee"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at" json:"updated_at"`
}

// ClientFilter narrows client listings.
type ClientFilter struct {
	CoachID    string
	Search     string
	Active     *bool
	CategoryID string
	HasBalance *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ClientDetail is the client screen payload.
type ClientDetail struct {
	Client
	HasPaidThisMonth bool       `json:"has_paid_this_month"`
	Categories       []Category `json:"categories"`
	RecentPayments   []Payment  `json:"recent_payments"`
}
