package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	"github.com/joshkonopka69/fitness-sub000/pkg/response"
)

type categoryService interface {
	GetAllCategories(ctx context.Context, coachID string) ([]models.Category, error)
	GetCategoryTree(ctx context.Context, coachID string) ([]models.CategoryNode, error)
	CreateCategory(ctx context.Context, coachID string, req service.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, coachID, id string, req service.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, coachID, id string) error
	ToggleClientCategory(ctx context.Context, coachID, clientID, categoryID string) (bool, error)
}

type membership struct {
	ClientID   string `json:"client_id"`
	CategoryID string `json:"category_id"`
	Assigned   bool   `json:"assigned"`
}

// CategoryHandler exposes client grouping endpoints.
type CategoryHandler struct {
	categories categoryService
}

// NewCategoryHandler constructs CategoryHandler.
func NewCategoryHandler(categories categoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	categories, err := h.categories.GetAllCategories(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Tree godoc
// @Summary Categories nested under their parents
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /categories/tree [get]
func (h *CategoryHandler) Tree(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	tree, err := h.categories.GetCategoryTree(c.Request.Context(), coach)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tree, nil)
}

// Create godoc
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body service.CategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.categories.CreateCategory(c.Request.Context(), coach, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Update godoc
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param payload body service.CategoryRequest true "Category payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	var req service.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.UpdateCategory(c.Request.Context(), coach, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete category
// @Tags Categories
// @Param id path string true "Category ID"
// @Success 204
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.categories.DeleteCategory(c.Request.Context(), coach, id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleClient godoc
// @Summary Add or remove a client from a category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID"
// @Param clientId path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /categories/{id}/clients/{clientId}/toggle [post]
func (h *CategoryHandler) ToggleClient(c *gin.Context) {
	coach, ok := coachID(c)
	if !ok {
		return
	}
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}
	assigned, err := h.categories.ToggleClientCategory(c.Request.Context(), coach, clientID, categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, membership{ClientID: clientID, CategoryID: categoryID, Assigned: assigned}, nil)
}
