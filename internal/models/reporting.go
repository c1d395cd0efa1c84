package models

import "github.com/shopspring/decimal"

// DailyRevenue is the completed revenue for one calendar day in the ledger timezone.
type DailyRevenue struct {
	Date   string          `db:"day" json:"date"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
}

// OverdueSummary totals positive balances across a coach's clients.
type OverdueSummary struct {
	Total   decimal.Decimal `db:"total" json:"total"`
	Clients int             `db:"clients" json:"clients"`
}

// ClientCounts summarises the client roster.
type ClientCounts struct {
	Total  int `db:"total" json:"total"`
	Active int `db:"active" json:"active"`
}
