package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type ledgerService interface {
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentListItem, *models.Pagination, error)
	AddPayment(ctx context.Context, coachID string, req service.AddPaymentRequest) (*models.LedgerResult, error)
	ChangeStatus(ctx context.Context, coachID, paymentID string, status models.PaymentStatus) (*models.LedgerResult, error)
	TogglePaymentStatus(ctx context.Context, coachID, paymentID string) (*models.LedgerResult, error)
	DeletePayment(ctx context.Context, coachID, paymentID string) (*models.LedgerResult, error)
}

// ChangeStatusRequest sets the status of a payment.
type ChangeStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

// PaymentHandler exposes payment ledger endpoints.
type PaymentHandler struct {
	ledger ledgerService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(ledger ledgerService) *PaymentHandler {
	return &PaymentHandler{ledger: ledger}
}

// List godoc
// @Summary List payments
// @Tags Payments
// @Produce json
// @Param clientId query string false "Filter by client"
// @Param status query string false "completed or pending"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	from, err := queryDate(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.PaymentFilter{
		CoachID:  coach,
		ClientID: strings.TrimSpace(c.Query("clientId")),
		Status:   models.PaymentStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		From:     from,
		To:       to,
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
	items, pagination, err := h.ledger.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Record a payment
// @Description Completed payments reduce the client balance (never below zero), pending payments increase it.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.AddPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.AddPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.ledger.AddPayment(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ChangeStatus godoc
// @Summary Change payment status
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body ChangeStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payments/{id}/status [patch]
func (h *PaymentHandler) ChangeStatus(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.ledger.ChangeStatus(c.Request.Context(), coach, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Toggle godoc
// @Summary Flip payment status between completed and pending
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payments/{id}/toggle [post]
func (h *PaymentHandler) Toggle(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.ledger.TogglePaymentStatus(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a payment and reverse its balance effect
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.ledger.DeletePayment(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
