package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

const (
	defaultCategoryColor = "#6366F1"
	defaultCategoryIcon  = "people"
)

type categoryRepository interface {
	List(ctx context.Context, coachID string) ([]models.Category, error)
	FindByID(ctx context.Context, coachID, id string) (*models.Category, error)
	ListByClient(ctx context.Context, coachID, clientID string) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, coachID, id string) error
	ToggleClient(ctx context.Context, clientID, categoryID string) (bool, error)
}

type clientLookup interface {
	FindByID(ctx context.Context, coachID, id string) (*models.Client, error)
}

// CategoryRequest is the create and update payload.
type CategoryRequest struct {
	Name             string  `json:"name" validate:"required,max=80"`
	Color            string  `json:"color" validate:"omitempty,hexcolor"`
	Icon             string  `json:"icon" validate:"max=40"`
	ParentCategoryID *string `json:"parent_category_id"`
}

// CategoryService manages the two-level category tree.
type CategoryService struct {
	repo      categoryRepository
	clients   clientLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo categoryRepository, clients clientLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{repo: repo, clients: clients, cache: cache, validator: validate, logger: logger}
}

// GetAllCategories returns the flat list with client counts.
func (s *CategoryService) GetAllCategories(ctx context.Context, coachID string) ([]models.Category, error) {
	categories, err := s.repo.List(ctx, coachID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list categories")
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// GetCategoryTree groups subcategories under their parents. Orphans whose parent is
// missing are promoted to the top level.
func (s *CategoryService) GetCategoryTree(ctx context.Context, coachID string) ([]models.CategoryNode, error) {
	categories, err := s.GetAllCategories(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return buildCategoryTree(categories), nil
}

func buildCategoryTree(categories []models.Category) []models.CategoryNode {
	index := make(map[string]int, len(categories))
	nodes := make([]models.CategoryNode, 0, len(categories))
	for _, category := range categories {
		if category.IsTopLevel() {
			index[category.ID] = len(nodes)
			nodes = append(nodes, models.CategoryNode{Category: category, Subcategories: []models.Category{}})
		}
	}
	for _, category := range categories {
		if category.IsTopLevel() {
			continue
		}
		if i, ok := index[*category.ParentCategoryID]; ok {
			nodes[i].Subcategories = append(nodes[i].Subcategories, category)
			continue
		}
		nodes = append(nodes, models.CategoryNode{Category: category, Subcategories: []models.Category{}})
	}
	return nodes
}

// ListClientCategories returns the categories a client belongs to.
func (s *CategoryService) ListClientCategories(ctx context.Context, coachID, clientID string) ([]models.Category, error) {
	categories, err := s.repo.ListByClient(ctx, coachID, clientID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list client categories")
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// CreateCategory adds a category. A parent must exist, belong to the coach and be top level.
func (s *CategoryService) CreateCategory(ctx context.Context, coachID string, req CategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid category payload")
	}
	parentID, err := s.resolveParent(ctx, coachID, "", req.ParentCategoryID)
	if err != nil {
		return nil, err
	}
	category := &models.Category{
		CoachID:          coachID,
		Name:             strings.TrimSpace(req.Name),
		Color:            defaultString(req.Color, defaultCategoryColor),
		Icon:             defaultString(req.Icon, defaultCategoryIcon),
		ParentCategoryID: parentID,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Internal(err, "failed to create category")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return category, nil
}

// UpdateCategory changes name, color, icon and parent.
func (s *CategoryService) UpdateCategory(ctx context.Context, coachID, id string, req CategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid category payload")
	}
	category, err := s.findCategory(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	parentID, err := s.resolveParent(ctx, coachID, id, req.ParentCategoryID)
	if err != nil {
		return nil, err
	}
	if parentID != nil && category.IsTopLevel() && s.hasChildren(ctx, coachID, id) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a category with subcategories cannot become a subcategory")
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Color = defaultString(req.Color, category.Color)
	category.Icon = defaultString(req.Icon, category.Icon)
	category.ParentCategoryID = parentID
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, appErrors.Internal(err, "failed to update category")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return category, nil
}

// DeleteCategory removes a category with its subcategories and assignments.
func (s *CategoryService) DeleteCategory(ctx context.Context, coachID, id string) error {
	if err := s.repo.Delete(ctx, coachID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return appErrors.Internal(err, "failed to delete category")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return nil
}

// ToggleClientCategory assigns or unassigns a client and returns the new assignment state.
func (s *CategoryService) ToggleClientCategory(ctx context.Context, coachID, clientID, categoryID string) (bool, error) {
	if _, err := s.findCategory(ctx, coachID, categoryID); err != nil {
		return false, err
	}
	if s.clients != nil {
		if _, err := s.clients.FindByID(ctx, coachID, clientID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, appErrors.Clone(appErrors.ErrNotFound, "client not found")
			}
			return false, appErrors.Internal(err, "failed to load client")
		}
	}
	assigned, err := s.repo.ToggleClient(ctx, clientID, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "client or category not found")
		}
		return false, appErrors.Internal(err, "failed to toggle category")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return assigned, nil
}

func (s *CategoryService) findCategory(ctx context.Context, coachID, id string) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, coachID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Internal(err, "failed to load category")
	}
	return category, nil
}

// resolveParent enforces the two level limit.
func (s *CategoryService) resolveParent(ctx context.Context, coachID, selfID string, parentID *string) (*string, error) {
	if parentID == nil || strings.TrimSpace(*parentID) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*parentID)
	if id == selfID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a category cannot be its own parent")
	}
	parent, err := s.repo.FindByID(ctx, coachID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "parent category not found")
		}
		return nil, appErrors.Internal(err, "failed to load parent category")
	}
	if !parent.IsTopLevel() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subcategories cannot have children")
	}
	return &id, nil
}

func (s *CategoryService) hasChildren(ctx context.Context, coachID, id string) bool {
	categories, err := s.repo.List(ctx, coachID)
	if err != nil {
		s.logger.Warn("category child lookup failed", zap.String("category_id", id), zap.Error(err))
		return true
	}
	for _, category := range categories {
		if category.ParentCategoryID != nil && *category.ParentCategoryID == id {
			return true
		}
	}
	return false
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
