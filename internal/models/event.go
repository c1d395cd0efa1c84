package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEventType names a ledger change published to the broker.
type LedgerEventType string

const (
	EventPaymentAdded         LedgerEventType = "payment.added"
	EventPaymentStatusChanged LedgerEventType = "payment.status_changed"
	EventPaymentDeleted       LedgerEventType = "payment.deleted"
	EventBalanceAdjusted      LedgerEventType = "balance.adjusted"
	EventMonthPaid            LedgerEventType = "month.paid"
	EventMonthUnpaid          LedgerEventType = "month.unpaid"
)

// LedgerEvent is the JSON body published for each ledger change.
type LedgerEvent struct {
	ID         string           `json:"id"`
	Type       LedgerEventType  `json:"type"`
	CoachID    string           `json:"coach_id"`
	ClientID   string           `json:"client_id"`
	PaymentID  string           `json:"payment_id,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Status     PaymentStatus    `json:"status,omitempty"`
	Balance    *decimal.Decimal `json:"balance,omitempty"`
	Year       int              `json:"year,omitempty"`
	Month      int              `json:"month,omitempty"`
	RequestID  string           `json:"request_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
