package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

const (
	sessionDateLayout   = "2006-01-02"
	sessionClockLayout  = "15:04"
	defaultSessionColor = "#10B981"
	maxSessionRangeDays = 366
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, error)
	FindByID(ctx context.Context, coachID, id string) (*models.TrainingSession, error)
	Create(ctx context.Context, session *models.TrainingSession) error
	Update(ctx context.Context, session *models.TrainingSession) error
	Delete(ctx context.Context, coachID, id string) error
}

// SessionRequest is the create and update payload for a calendar entry.
type SessionRequest struct {
	Title     string `json:"title" validate:"required,max=120"`
	Date      string `json:"session_date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// SessionService manages the training calendar.
type SessionService struct {
	repo      sessionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionRepository, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// List returns sessions in the inclusive date range.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.TrainingSession, error) {
	if filter.From != nil && filter.To != nil {
		if filter.To.Before(*filter.From) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
		}
		if filter.To.Sub(*filter.From) > maxSessionRangeDays*24*time.Hour {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date range is limited to one year")
		}
	}
	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	if sessions == nil {
		sessions = []models.TrainingSession{}
	}
	return sessions, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, coachID, id string) (*models.TrainingSession, error) {
	session, err := s.repo.FindByID(ctx, coachID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Internal(err, "failed to load session")
	}
	return session, nil
}

// Create adds a session.
func (s *SessionService) Create(ctx context.Context, coachID string, req SessionRequest) (*models.TrainingSession, error) {
	session := &models.TrainingSession{CoachID: coachID}
	if err := s.apply(session, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}
	return session, nil
}

// Update replaces a session's fields.
func (s *SessionService) Update(ctx context.Context, coachID, id string, req SessionRequest) (*models.TrainingSession, error) {
	session, err := s.Get(ctx, coachID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(session, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to update session")
	}
	return session, nil
}

// Delete removes a session with its attendance.
func (s *SessionService) Delete(ctx context.Context, coachID, id string) error {
	if err := s.repo.Delete(ctx, coachID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Internal(err, "failed to delete session")
	}
	return nil
}

func (s *SessionService) apply(session *models.TrainingSession, req SessionRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.WrapAs(err, appErrors.ErrValidation, "invalid session payload")
	}
	date, err := time.Parse(sessionDateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "session_date must be YYYY-MM-DD")
	}
	start, err := time.Parse(sessionClockLayout, strings.TrimSpace(req.StartTime))
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	end, err := time.Parse(sessionClockLayout, strings.TrimSpace(req.EndTime))
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	session.Title = strings.TrimSpace(req.Title)
	session.SessionDate = date
	session.StartTime = start.Format(sessionClockLayout)
	session.EndTime = end.Format(sessionClockLayout)
	session.Color = defaultString(req.Color, defaultSessionColor)
	session.Notes = strings.TrimSpace(req.Notes)
	return nil
}
