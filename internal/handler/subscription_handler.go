package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	"github.com/joshkonopka69/fitness-sub000/pkg/billing"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type subscriptionService interface {
	Status(ctx context.Context, coachID string) (*models.SubscriptionStatus, error)
	TrialInfo(ctx context.Context, coachID string) *models.TrialInfo
	Checkout(ctx context.Context, coachID string, req service.CheckoutRequest) (*billing.CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, coachID string, req service.ConfirmCheckoutRequest) (*models.SubscriptionStatus, error)
}

// SubscriptionHandler exposes trial and billing endpoints.
type SubscriptionHandler struct {
	subscriptions subscriptionService
}

// NewSubscriptionHandler constructs SubscriptionHandler.
func NewSubscriptionHandler(subscriptions subscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// Status godoc
// @Summary Subscription status
// @Tags Subscription
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subscription/status [get]
func (h *SubscriptionHandler) Status(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	status, err := h.subscriptions.Status(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Trial godoc
// @Summary Trial countdown
// @Description Always answers 200; a stale flag marks data that could not be loaded.
// @Tags Subscription
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subscription/trial [get]
func (h *SubscriptionHandler) Trial(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.subscriptions.TrialInfo(c.Request.Context(), coach), nil)
}

// Checkout godoc
// @Summary Start a subscription checkout with the payment provider
// @Tags Subscription
// @Accept json
// @Produce json
// @Param payload body service.CheckoutRequest true "Checkout payload"
// @Success 201 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /subscription/checkout [post]
func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.subscriptions.Checkout(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Confirm godoc
// @Summary Activate the subscription after a successful payment sheet
// @Tags Subscription
// @Accept json
// @Produce json
// @Param payload body service.ConfirmCheckoutRequest true "Confirmation payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /subscription/confirm [post]
func (h *SubscriptionHandler) Confirm(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.ConfirmCheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.subscriptions.ConfirmCheckout(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
