package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/money"
)

type clientRepository interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	FindByID(ctx context.Context, coachID, id string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Deactivate(ctx context.Context, coachID, id string) error
	Delete(ctx context.Context, coachID, id string) error
}

type clientPaymentReader interface {
	ListByClient(ctx context.Context, coachID, clientID string, limit int) ([]models.Payment, error)
}

type clientCategoryReader interface {
	ListByClient(ctx context.Context, coachID, clientID string) ([]models.Category, error)
}

type monthlyStatusReader interface {
	GetClientPaymentStatus(ctx context.Context, coachID, clientID string) (bool, error)
}

// CreateClientRequest is the payload for a new client.
type CreateClientRequest struct {
	Name           string       `json:"name" validate:"required,max=120"`
	Phone          *string      `json:"phone" validate:"omitempty,max=32"`
	Email          *string      `json:"email" validate:"omitempty,email"`
	Notes          string       `json:"notes" validate:"max=2000"`
	OpeningBalance money.Input  `json:"opening_balance"`
	MonthlyFee     *money.Input `json:"monthly_fee"`
}

// UpdateClientRequest replaces profile fields. The balance is not editable here.
type UpdateClientRequest struct {
	Name       string       `json:"name" validate:"required,max=120"`
	Phone      *string      `json:"phone" validate:"omitempty,max=32"`
	Email      *string      `json:"email" validate:"omitempty,email"`
	Notes      string       `json:"notes" validate:"max=2000"`
	Active     *bool        `json:"active"`
	MonthlyFee *money.Input `json:"monthly_fee"`
}

// ClientService manages the coach's roster.
type ClientService struct {
	repo        clientRepository
	payments    clientPaymentReader
	categories  clientCategoryReader
	tracker     monthlyStatusReader
	cache       *CacheService
	recentLimit int
	validator   *validator.Validate
	logger      *zap.Logger
}

// ClientServiceParams groups constructor dependencies.
type ClientServiceParams struct {
	Repo        clientRepository
	Payments    clientPaymentReader
	Categories  clientCategoryReader
	Tracker     monthlyStatusReader
	Cache       *CacheService
	RecentLimit int
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(params ClientServiceParams) *ClientService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := params.RecentLimit
	if limit <= 0 {
		limit = 10
	}
	return &ClientService{
		repo:        params.Repo,
		payments:    params.Payments,
		categories:  params.Categories,
		tracker:     params.Tracker,
		cache:       params.Cache,
		recentLimit: limit,
		validator:   validate,
		logger:      logger,
	}
}

// List returns clients matching the filter with pagination metadata.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list clients")
	}
	if clients == nil {
		clients = []models.Client{}
	}
	return clients, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns the client with this month's paid flag, categories and recent payments.
func (s *ClientService) Get(ctx context.Context, coachID, id string) (*models.ClientDetail, error) {
	client, err := s.find(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	detail := &models.ClientDetail{Client: *client, Categories: []models.Category{}, RecentPayments: []models.Payment{}}

	g, gctx := errgroup.WithContext(ctx)
	if s.tracker != nil {
		g.Go(func() error {
			paid, err := s.tracker.GetClientPaymentStatus(gctx, coachID, id)
			if err != nil {
				return err
			}
			detail.HasPaidThisMonth = paid
			return nil
		})
	}
	if s.categories != nil {
		g.Go(func() error {
			categories, err := s.categories.ListByClient(gctx, coachID, id)
			if err != nil {
				return err
			}
			if categories != nil {
				detail.Categories = categories
			}
			return nil
		})
	}
	if s.payments != nil {
		g.Go(func() error {
			payments, err := s.payments.ListByClient(gctx, coachID, id, s.recentLimit)
			if err != nil {
				return err
			}
			if payments != nil {
				detail.RecentPayments = payments
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Internal(err, "failed to load client detail")
	}
	return detail, nil
}

// Create adds a client. The opening balance defaults to zero and may not be negative.
func (s *ClientService) Create(ctx context.Context, coachID string, req CreateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid client payload")
	}
	opening := decimal.Zero
	if strings.TrimSpace(string(req.OpeningBalance)) != "" {
		parsed, err := req.OpeningBalance.Decimal()
		if err != nil || parsed.IsNegative() {
			return nil, appErrors.Clone(appErrors.ErrInvalidAmount, "opening balance must be zero or positive")
		}
		opening = parsed
	}
	fee, err := parseFee(req.MonthlyFee)
	if err != nil {
		return nil, err
	}

	client := &models.Client{
		CoachID:     coachID,
		Name:        strings.TrimSpace(req.Name),
		Phone:       trimmedOrNil(req.Phone),
		Email:       trimmedOrNil(req.Email),
		Notes:       strings.TrimSpace(req.Notes),
		Active:      true,
		BalanceOwed: opening,
		MonthlyFee:  fee,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, appErrors.Internal(err, "failed to create client")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return client, nil
}

// Update changes profile fields.
func (s *ClientService) Update(ctx context.Context, coachID, id string, req UpdateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid client payload")
	}
	client, err := s.find(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	fee, err := parseFee(req.MonthlyFee)
	if err != nil {
		return nil, err
	}
	client.Name = strings.TrimSpace(req.Name)
	client.Phone = trimmedOrNil(req.Phone)
	client.Email = trimmedOrNil(req.Email)
	client.Notes = strings.TrimSpace(req.Notes)
	client.MonthlyFee = fee
	if req.Active != nil {
		client.Active = *req.Active
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, appErrors.Internal(err, "failed to update client")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return client, nil
}

// Deactivate hides the client from active rosters while keeping history.
func (s *ClientService) Deactivate(ctx context.Context, coachID, id string) error {
	if _, err := s.find(ctx, coachID, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, coachID, id); err != nil {
		return appErrors.Internal(err, "failed to deactivate client")
	}
	s.cache.InvalidateCoach(ctx, coachID)
	return nil
}

// Delete removes the client and everything that references it.
func (s *ClientService) Delete(ctx context.Context, coachID, id string) error {
	if _, err := s.find(ctx, coachID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, coachID, id); err != nil {
		return appErrors.Internal(err, "failed to delete client")
	}
	s.logger.Info("client deleted", zap.String("coach_id", coachID), zap.String("client_id", id))
	s.cache.InvalidateCoach(ctx, coachID)
	return nil
}

func (s *ClientService) find(ctx context.Context, coachID, id string) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, coachID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Internal(err, "failed to load client")
	}
	return client, nil
}

func parseFee(raw *money.Input) (decimal.NullDecimal, error) {
	if raw == nil || strings.TrimSpace(string(*raw)) == "" {
		return decimal.NullDecimal{}, nil
	}
	fee, err := raw.Decimal()
	if err != nil || fee.IsNegative() {
		return decimal.NullDecimal{}, appErrors.Clone(appErrors.ErrInvalidAmount, "monthly fee must be zero or positive")
	}
	return decimal.NullDecimal{Decimal: fee, Valid: true}, nil
}
