package dto

import (
	"time"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

// DashboardResponse is the coach home screen payload.
type DashboardResponse struct {
	CoachID     string                        `json:"coach_id"`
	Revenue     RevenueReport                 `json:"revenue"`
	Overdue     models.OverdueSummary         `json:"overdue"`
	Clients     models.ClientCounts           `json:"clients"`
	Categories  []models.CategoryPaymentStats `json:"categories"`
	GeneratedAt time.Time                     `json:"generated_at"`
}
