package dto

import (
	"github.com/shopspring/decimal"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// RevenueReport is the trailing daily revenue window, oldest day first.
type RevenueReport struct {
	Days     []models.DailyRevenue `json:"days"`
	Total    decimal.Decimal       `json:"total"`
	BestDay  models.DailyRevenue   `json:"best_day"`
	Currency string                `json:"currency"`
}

// DrilldownFrame is one breadcrumb entry.
type DrilldownFrame struct {
	Level      string `json:"level"`
	CategoryID string `json:"category_id,omitempty"`
	Name       string `json:"name"`
}

// DrilldownResponse is the view at the top of the navigation stack.
type DrilldownResponse struct {
	Level         string                        `json:"level"`
	Breadcrumb    []DrilldownFrame              `json:"breadcrumb"`
	Categories    []models.CategoryPaymentStats `json:"categories"`
	UnpaidClients []models.UnpaidClient         `json:"unpaid_clients"`
}
