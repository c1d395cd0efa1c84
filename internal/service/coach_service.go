package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type coachRepository interface {
	Ensure(ctx context.Context, coach *models.Coach) error
	FindByID(ctx context.Context, id string) (*models.Coach, error)
}

// UpdateProfileRequest carries optional profile fields for the bootstrap call.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"max=120"`
}

// CoachService mirrors identity provider accounts into the local database.
type CoachService struct {
	repo   coachRepository
	logger *zap.Logger
}

// NewCoachService constructs a CoachService.
func NewCoachService(repo coachRepository, logger *zap.Logger) *CoachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachService{repo: repo, logger: logger}
}

// Ensure records the coach behind the claims, opening a trial on first sight.
func (s *CoachService) Ensure(ctx context.Context, claims *models.JWTClaims, fullName string) (*models.Coach, error) {
	if claims == nil || claims.CoachID() == "" {
		return nil, appErrors.ErrUnauthorized
	}
	coach := &models.Coach{ID: claims.CoachID(), Email: strings.TrimSpace(claims.Email), FullName: strings.TrimSpace(fullName)}
	if err := s.repo.Ensure(ctx, coach); err != nil {
		return nil, appErrors.Internal(err, "failed to register coach")
	}
	return s.Me(ctx, coach.ID)
}

// Me returns the stored coach profile.
func (s *CoachService) Me(ctx context.Context, coachID string) (*models.Coach, error) {
	coach, err := s.repo.FindByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coach not registered")
		}
		return nil, appErrors.Internal(err, "failed to load coach")
	}
	return coach, nil
}
