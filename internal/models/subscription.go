package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan is a billing period offered to coaches.
type SubscriptionPlan string

const (
	PlanMonthly SubscriptionPlan = "monthly"
	PlanYearly  SubscriptionPlan = "yearly"
)

// Months is the duration the plan buys.
func (p SubscriptionPlan) Months() int {
	switch p {
	case PlanMonthly:
		return 1
	case PlanYearly:
		return 12
	default:
		return 0
	}
}

// SubscriptionStatus mirrors check_subscription_status.
type SubscriptionStatus struct {
	IsActive bool   `db:"is_active" json:"is_active"`
	DaysLeft int    `db:"days_left" json:"days_left"`
	Status   string `db:"status" json:"status"`
}

// TrialInfo mirrors get_trial_info. Stale is set when the lookup failed and the
// zero value was returned instead.
type TrialInfo struct {
	Status             string     `db:"status" json:"status"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	DaysLeft           int        `db:"days_left" json:"days_left"`
	TrialEndsAt        *time.Time `db:"trial_ends_at" json:"trial_ends_at,omitempty"`
	SubscriptionEndsAt *time.Time `db:"subscription_ends_at" json:"subscription_ends_at,omitempty"`
	Stale              bool       `db:"-" json:"stale"`
}

// SubscriptionPayment is a processor charge recorded after checkout.
type SubscriptionPayment struct {
	ID              string           `json:"id"`
	CoachID         string           `json:"coach_id"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	Status          string           `json:"status"`
	PaymentIntentID string           `json:"payment_intent_id"`
	Plan            SubscriptionPlan `json:"plan"`
}

// SubscriptionCheckout is a processor subscription handed to the coach's payment sheet
// and not yet confirmed. Confirmation consumes it.
type SubscriptionCheckout struct {
	CoachID         string           `db:"coach_id"`
	SubscriptionID  string           `db:"subscription_id"`
	PaymentIntentID string           `db:"payment_intent_id"`
	Plan            SubscriptionPlan `db:"plan"`
	CreatedAt       time.Time        `db:"created_at"`
}
