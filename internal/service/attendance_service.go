package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type attendanceRepository interface {
	Toggle(ctx context.Context, sessionID, clientID string) (bool, error)
	Replace(ctx context.Context, sessionID string, clientIDs []string) error
	ListAttendees(ctx context.Context, coachID, sessionID string) ([]models.Attendee, error)
	ClientStats(ctx context.Context, coachID, clientID string, from, to time.Time) (attended, sessions int, err error)
}

type sessionLookup interface {
	FindByID(ctx context.Context, coachID, id string) (*models.TrainingSession, error)
}

// SetAttendanceRequest replaces a session's attendee list.
type SetAttendanceRequest struct {
	ClientIDs []string `json:"client_ids"`
}

// AttendanceService records who showed up to sessions. Only presence is stored.
type AttendanceService struct {
	repo     attendanceRepository
	sessions sessionLookup
	clients  clientLookup
	logger   *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, sessions sessionLookup, clients clientLookup, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, sessions: sessions, clients: clients, logger: logger}
}

// ToggleAttendance flips a client's presence and returns the new value.
func (s *AttendanceService) ToggleAttendance(ctx context.Context, coachID, sessionID, clientID string) (bool, error) {
	if err := s.ensureSession(ctx, coachID, sessionID); err != nil {
		return false, err
	}
	if err := s.ensureClient(ctx, coachID, clientID); err != nil {
		return false, err
	}
	present, err := s.repo.Toggle(ctx, sessionID, clientID)
	if err != nil {
		return false, mapAttendanceError(err, "failed to toggle attendance")
	}
	return present, nil
}

// SetAttendance replaces the attendee set in one transaction.
func (s *AttendanceService) SetAttendance(ctx context.Context, coachID, sessionID string, clientIDs []string) ([]models.Attendee, error) {
	if err := s.ensureSession(ctx, coachID, sessionID); err != nil {
		return nil, err
	}
	unique := make([]string, 0, len(clientIDs))
	seen := make(map[string]struct{}, len(clientIDs))
	for _, id := range clientIDs {
		if id == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "client id is required")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if err := s.ensureClient(ctx, coachID, id); err != nil {
			return nil, err
		}
		unique = append(unique, id)
	}
	if err := s.repo.Replace(ctx, sessionID, unique); err != nil {
		return nil, mapAttendanceError(err, "failed to save attendance")
	}
	return s.ListAttendees(ctx, coachID, sessionID)
}

// ListAttendees returns the roster with presence for the session.
func (s *AttendanceService) ListAttendees(ctx context.Context, coachID, sessionID string) ([]models.Attendee, error) {
	if err := s.ensureSession(ctx, coachID, sessionID); err != nil {
		return nil, err
	}
	attendees, err := s.repo.ListAttendees(ctx, coachID, sessionID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendees")
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	return attendees, nil
}

// ClientAttendanceStats counts the sessions a client attended in a calendar month.
func (s *AttendanceService) ClientAttendanceStats(ctx context.Context, coachID, clientID string, year, month int) (*models.AttendanceStats, error) {
	if month < 1 || month > 12 || year < 2000 || year > 9999 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
	}
	if err := s.ensureClient(ctx, coachID, clientID); err != nil {
		return nil, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	attended, sessions, err := s.repo.ClientStats(ctx, coachID, clientID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance stats")
	}
	return &models.AttendanceStats{ClientID: clientID, Year: year, Month: month, Attended: attended, Sessions: sessions}, nil
}

func (s *AttendanceService) ensureSession(ctx context.Context, coachID, sessionID string) error {
	if _, err := s.sessions.FindByID(ctx, coachID, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Internal(err, "failed to load session")
	}
	return nil
}

func (s *AttendanceService) ensureClient(ctx context.Context, coachID, clientID string) error {
	if s.clients == nil {
		return nil
	}
	if _, err := s.clients.FindByID(ctx, coachID, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return appErrors.Internal(err, "failed to load client")
	}
	return nil
}

func mapAttendanceError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "session or client not found")
	}
	return appErrors.Internal(err, message)
}
