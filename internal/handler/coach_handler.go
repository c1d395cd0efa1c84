package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type coachService interface {
	Ensure(ctx context.Context, claims *models.JWTClaims, fullName string) (*models.Coach, error)
	Me(ctx context.Context, coachID string) (*models.Coach, error)
}

// CoachHandler exposes the authenticated coach profile.
type CoachHandler struct {
	coaches coachService
}

// NewCoachHandler constructs CoachHandler.
func NewCoachHandler(coaches coachService) *CoachHandler {
	return &CoachHandler{coaches: coaches}
}

// Me godoc
// @Summary Current coach profile
// @Tags Coach
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /me [get]
func (h *CoachHandler) Me(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	profile, err := h.coaches.Me(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Bootstrap godoc
// @Summary Register the signed-in coach, starting a trial on first call
// @Tags Coach
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest false "Profile"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me [post]
func (h *CoachHandler) Bootstrap(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateProfileRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	profile, err := h.coaches.Ensure(c.Request.Context(), claims, req.FullName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
