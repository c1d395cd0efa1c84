package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/dto"
	"github.com/joshkonopka69/fitness-sub000/internal/middleware"
	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type reportingService interface {
	RevenueByDay(ctx context.Context, coachID string, days int) (*dto.RevenueReport, error)
	OverdueTotal(ctx context.Context, coachID string) (*models.OverdueSummary, error)
	Drilldown(ctx context.Context, coachID string, path []string) (*dto.DrilldownResponse, error)
	Dashboard(ctx context.Context, coachID string) (*dto.DashboardResponse, bool, error)
}

// ReportHandler exposes revenue, overdue and drill-down reporting.
type ReportHandler struct {
	reports reportingService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportingService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Revenue godoc
// @Summary Completed revenue bucketed by day
// @Tags Reports
// @Produce json
// @Param days query int false "Window in days, default 14"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/revenue [get]
func (h *ReportHandler) Revenue(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	report, err := h.reports.RevenueByDay(c.Request.Context(), coach, queryInt(c, "days", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Overdue godoc
// @Summary Total owed across active clients
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/overdue [get]
func (h *ReportHandler) Overdue(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	summary, err := h.reports.OverdueTotal(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Drilldown godoc
// @Summary Category drill-down of unpaid clients
// @Tags Reports
// @Produce json
// @Param path query string false "Comma separated category ids, outermost first"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/drilldown [get]
func (h *ReportHandler) Drilldown(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	view, err := h.reports.Drilldown(c.Request.Context(), coach, splitPath(c.Query("path")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Dashboard godoc
// @Summary Coach dashboard summary
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.reports.Dashboard(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	middleware.SetMeta(c, middleware.MetaProcessingTime, time.Since(start).Milliseconds())
	response.JSON(c, http.StatusOK, summary, nil, middleware.Meta(c))
}

func splitPath(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	path := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			path = append(path, trimmed)
		}
	}
	return path
}
