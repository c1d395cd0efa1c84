package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type trackingService interface {
	GetClientPaymentStatus(ctx context.Context, coachID, clientID string) (bool, error)
	MarkClientAsPaid(ctx context.Context, coachID, clientID, note string) error
	MarkClientAsUnpaid(ctx context.Context, coachID, clientID string) error
	ToggleClientPaymentStatus(ctx context.Context, coachID, clientID string, current bool) (bool, error)
	GetPaymentStatsByCategory(ctx context.Context, coachID string) ([]models.CategoryPaymentStats, error)
	GetPaymentStatsBySubcategory(ctx context.Context, coachID, categoryID string) ([]models.CategoryPaymentStats, error)
	GetUnpaidClientsInCategory(ctx context.Context, coachID, categoryID string, includeSubcategories bool) ([]models.UnpaidClient, error)
	GetUnpaidClientsCurrentMonth(ctx context.Context, coachID string) ([]models.UnpaidClient, error)
	GetMonthlyHistory(ctx context.Context, coachID, clientID string, months int) ([]models.MonthlyHistoryEntry, error)
}

// MarkPaidRequest carries an optional note for the monthly record.
type MarkPaidRequest struct {
	Note string `json:"note"`
}

// ToggleMonthRequest carries the flag the caller currently displays.
type ToggleMonthRequest struct {
	Current *bool `json:"current"`
}

type monthStatus struct {
	ClientID string `json:"client_id"`
	HasPaid  bool   `json:"has_paid"`
}

// TrackingHandler exposes the current month paid/unpaid tracker.
type TrackingHandler struct {
	tracker trackingService
}

// NewTrackingHandler constructs TrackingHandler.
func NewTrackingHandler(tracker trackingService) *TrackingHandler {
	return &TrackingHandler{tracker: tracker}
}

// Status godoc
// @Summary Current month payment flag for a client
// @Tags Tracking
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/clients/{id} [get]
func (h *TrackingHandler) Status(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	paid, err := h.tracker.GetClientPaymentStatus(c.Request.Context(), coach, clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, monthStatus{ClientID: clientID, HasPaid: paid}, nil)
}

// MarkPaid godoc
// @Summary Mark client as paid for the current month
// @Tags Tracking
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body MarkPaidRequest false "Optional note"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/clients/{id}/paid [post]
func (h *TrackingHandler) MarkPaid(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req MarkPaidRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tracker.MarkClientAsPaid(c.Request.Context(), coach, clientID, req.Note); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, monthStatus{ClientID: clientID, HasPaid: true}, nil)
}

// MarkUnpaid godoc
// @Summary Mark client as unpaid for the current month
// @Tags Tracking
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/clients/{id}/unpaid [post]
func (h *TrackingHandler) MarkUnpaid(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tracker.MarkClientAsUnpaid(c.Request.Context(), coach, clientID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, monthStatus{ClientID: clientID, HasPaid: false}, nil)
}

// Toggle godoc
// @Summary Flip the current month flag
// @Description When current is omitted the stored flag is read first.
// @Tags Tracking
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body ToggleMonthRequest false "Flag shown to the user"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/clients/{id}/toggle [post]
func (h *TrackingHandler) Toggle(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req ToggleMonthRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	current := false
	if req.Current != nil {
		current = *req.Current
	} else {
		stored, err := h.tracker.GetClientPaymentStatus(ctx, coach, clientID)
		if err != nil {
			response.Error(c, err)
			return
		}
		current = stored
	}
	paid, err := h.tracker.ToggleClientPaymentStatus(ctx, coach, clientID, current)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, monthStatus{ClientID: clientID, HasPaid: paid}, nil)
}

// History godoc
// @Summary Monthly paid flags for a client
// @Tags Tracking
// @Produce json
// @Param id path string true "Client ID"
// @Param months query int false "Number of months, default 6"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/clients/{id}/history [get]
func (h *TrackingHandler) History(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	history, err := h.tracker.GetMonthlyHistory(c.Request.Context(), coach, id, queryInt(c, "months", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Unpaid godoc
// @Summary Active clients not marked paid this month
// @Tags Tracking
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/unpaid [get]
func (h *TrackingHandler) Unpaid(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	clients, err := h.tracker.GetUnpaidClientsCurrentMonth(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, nil)
}

// CategoryStats godoc
// @Summary Paid/unpaid counts per top level category
// @Tags Tracking
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/stats/categories [get]
func (h *TrackingHandler) CategoryStats(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	stats, err := h.tracker.GetPaymentStatsByCategory(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// SubcategoryStats godoc
// @Summary Paid/unpaid counts per subcategory
// @Tags Tracking
// @Produce json
// @Param id path string true "Parent category ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/stats/categories/{id} [get]
func (h *TrackingHandler) SubcategoryStats(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.tracker.GetPaymentStatsBySubcategory(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// CategoryUnpaid godoc
// @Summary Unpaid clients in a category
// @Tags Tracking
// @Produce json
// @Param id path string true "Category ID"
// @Param includeSubcategories query bool false "Include clients of subcategories, default true"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /tracking/categories/{id}/unpaid [get]
func (h *TrackingHandler) CategoryUnpaid(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	include := true
	if v := queryBool(c, "includeSubcategories"); v != nil {
		include = *v
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	clients, err := h.tracker.GetUnpaidClientsInCategory(c.Request.Context(), coach, id, include)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, nil)
}
