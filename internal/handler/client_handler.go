package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type clientService interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error)
	Get(ctx context.Context, coachID, id string) (*models.ClientDetail, error)
	Create(ctx context.Context, coachID string, req service.CreateClientRequest) (*models.Client, error)
	Update(ctx context.Context, coachID, id string, req service.UpdateClientRequest) (*models.Client, error)
	Deactivate(ctx context.Context, coachID, id string) error
	Delete(ctx context.Context, coachID, id string) error
}

type balanceService interface {
	AuditBalance(ctx context.Context, coachID, clientID string) (*models.BalanceAudit, error)
	ReconcileBalance(ctx context.Context, coachID, clientID string, apply bool) (*models.BalanceAudit, error)
	AdjustBalance(ctx context.Context, coachID, clientID string, req service.AdjustBalanceRequest) (*models.LedgerResult, error)
}

type clientCategoryService interface {
	ListClientCategories(ctx context.Context, coachID, clientID string) ([]models.Category, error)
}

type attendanceStatsService interface {
	ClientAttendanceStats(ctx context.Context, coachID, clientID string, year, month int) (*models.AttendanceStats, error)
}

type statementService interface {
	ClientStatement(ctx context.Context, coachID, clientID string, format models.StatementFormat) (*models.StatementExport, error)
}

// ClientHandler exposes client roster and balance endpoints.
type ClientHandler struct {
	clients    clientService
	balances   balanceService
	categories clientCategoryService
	attendance attendanceStatsService
	statements statementService
	now        func() time.Time
}

// NewClientHandler constructs ClientHandler. statements may be nil when exports are disabled.
func NewClientHandler(clients clientService, balances balanceService, categories clientCategoryService, attendance attendanceStatsService, statements statementService) *ClientHandler {
	return &ClientHandler{
		clients:    clients,
		balances:   balances,
		categories: categories,
		attendance: attendance,
		statements: statements,
		now:        time.Now,
	}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Search by name, phone or email"
// @Param active query bool false "Filter by active state"
// @Param categoryId query string false "Filter by category"
// @Param hasBalance query bool false "Only clients that owe money"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	filter := models.ClientFilter{
		CoachID:    coach,
		Search:     strings.TrimSpace(c.Query("search")),
		Active:     queryBool(c, "active"),
		CategoryID: strings.TrimSpace(c.Query("categoryId")),
		HasBalance: queryBool(c, "hasBalance"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "limit", 50),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	clients, pagination, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, pagination)
}

// Get godoc
// @Summary Get client detail with recent payments
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := h.clients.Get(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body service.CreateClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clients.Create(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body service.UpdateClientRequest true "Client payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	client, err := h.clients.Update(c.Request.Context(), coach, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Deactivate godoc
// @Summary Deactivate client
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Security BearerAuth
// @Router /clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Deactivate(c.Request.Context(), coach, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete client with its payment history
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Security BearerAuth
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.clients.Delete(c.Request.Context(), coach, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Categories godoc
// @Summary List categories assigned to a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id}/categories [get]
func (h *ClientHandler) Categories(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	categories, err := h.categories.ListClientCategories(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Attendance godoc
// @Summary Monthly attendance for a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Param year query int false "Year, defaults to the current year"
// @Param month query int false "Month 1-12, defaults to the current month"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id}/attendance [get]
func (h *ClientHandler) Attendance(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	now := h.now()
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.attendance.ClientAttendanceStats(c.Request.Context(), coach, id, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// AuditBalance godoc
// @Summary Compare stored balance with the pending payment sum
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id}/balance/audit [get]
func (h *ClientHandler) AuditBalance(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	audit, err := h.balances.AuditBalance(c.Request.Context(), coach, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audit, nil)
}

// ReconcileBalance godoc
// @Summary Overwrite stored balance with the pending payment sum
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Param dryRun query bool false "Only report drift"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id}/balance/reconcile [post]
func (h *ClientHandler) ReconcileBalance(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	apply := true
	if dryRun := queryBool(c, "dryRun"); dryRun != nil && *dryRun {
		apply = false
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	audit, err := h.balances.ReconcileBalance(c.Request.Context(), coach, id, apply)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, audit, nil)
}

// AdjustBalance godoc
// @Summary Apply a signed manual balance correction
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body service.AdjustBalanceRequest true "Adjustment"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id}/balance/adjust [post]
func (h *ClientHandler) AdjustBalance(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.AdjustBalanceRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.balances.AdjustBalance(c.Request.Context(), coach, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Statement godoc
// @Summary Export a client payment statement
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /clients/{id}/statement [get]
func (h *ClientHandler) Statement(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	if h.statements == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "statement exports are disabled"))
		return
	}
	format := models.StatementFormat(strings.ToLower(c.DefaultQuery("format", string(models.StatementFormatCSV))))
	if !format.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	export, err := h.statements.ClientStatement(c.Request.Context(), coach, id, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, export)
}
