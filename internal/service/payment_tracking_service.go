package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

const (
	defaultHistoryMonths = 6
	maxHistoryMonths     = 36
)

type paymentTrackingRepository interface {
	HasPaid(ctx context.Context, coachID, clientID string, year, month int) (bool, error)
	Upsert(ctx context.Context, status *models.MonthlyPaymentStatus) error
	StatsByCategory(ctx context.Context, coachID string, year, month int) ([]models.CategoryPaymentStats, error)
	StatsBySubcategory(ctx context.Context, coachID, parentID string, year, month int) ([]models.CategoryPaymentStats, error)
	UnpaidInCategory(ctx context.Context, coachID, categoryID string, includeChildren bool, year, month int) ([]models.UnpaidClient, error)
	Unpaid(ctx context.Context, coachID string, year, month int) ([]models.UnpaidClient, error)
	History(ctx context.Context, coachID, clientID string, from, to time.Time) ([]models.MonthlyHistoryEntry, error)
}

// PaymentTrackingService owns the per-month paid flag.
type PaymentTrackingService struct {
	repo   paymentTrackingRepository
	events *EventService
	cache  *CacheService
	clock  ledgerClock
	logger *zap.Logger
}

// NewPaymentTrackingService constructs the tracker. loc decides what "this month" means.
func NewPaymentTrackingService(repo paymentTrackingRepository, events *EventService, cache *CacheService, loc *time.Location, logger *zap.Logger) *PaymentTrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentTrackingService{
		repo:   repo,
		events: events,
		cache:  cache,
		clock:  newLedgerClock(loc),
		logger: logger,
	}
}

// GetClientPaymentStatus reports whether the client has paid for the current month.
func (s *PaymentTrackingService) GetClientPaymentStatus(ctx context.Context, coachID, clientID string) (bool, error) {
	year, month := s.clock.CurrentMonth()
	paid, err := s.repo.HasPaid(ctx, coachID, clientID, year, month)
	if err != nil {
		return false, s.mapError(err, "failed to load payment status")
	}
	return paid, nil
}

// MarkClientAsPaid sets the current month flag. Repeating it changes nothing.
func (s *PaymentTrackingService) MarkClientAsPaid(ctx context.Context, coachID, clientID, note string) error {
	return s.mark(ctx, coachID, clientID, true, note)
}

// MarkClientAsUnpaid clears the current month flag.
func (s *PaymentTrackingService) MarkClientAsUnpaid(ctx context.Context, coachID, clientID string) error {
	return s.mark(ctx, coachID, clientID, false, "")
}

// ToggleClientPaymentStatus flips the flag from the caller's view of it and returns the new value.
func (s *PaymentTrackingService) ToggleClientPaymentStatus(ctx context.Context, coachID, clientID string, current bool) (bool, error) {
	if current {
		if err := s.MarkClientAsUnpaid(ctx, coachID, clientID); err != nil {
			return current, err
		}
		return false, nil
	}
	if err := s.MarkClientAsPaid(ctx, coachID, clientID, ""); err != nil {
		return current, err
	}
	return true, nil
}

func (s *PaymentTrackingService) mark(ctx context.Context, coachID, clientID string, paid bool, note string) error {
	now := s.clock.Now()
	status := &models.MonthlyPaymentStatus{
		CoachID:  coachID,
		ClientID: clientID,
		Year:     now.Year(),
		Month:    int(now.Month()),
		HasPaid:  paid,
	}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		status.Note = &trimmed
	}
	if paid {
		paidAt := now.UTC()
		status.PaidAt = &paidAt
	}
	if err := s.repo.Upsert(ctx, status); err != nil {
		return s.mapError(err, "failed to update payment status")
	}

	eventType := models.EventMonthUnpaid
	if paid {
		eventType = models.EventMonthPaid
	}
	s.events.Emit(ctx, models.LedgerEvent{
		Type:     eventType,
		CoachID:  coachID,
		ClientID: clientID,
		Year:     status.Year,
		Month:    status.Month,
	})
	s.cache.InvalidateCoach(ctx, coachID)
	return nil
}

// GetPaymentStatsByCategory returns paid and unpaid counts per top level category. A
// category's counts include members of its subcategories.
func (s *PaymentTrackingService) GetPaymentStatsByCategory(ctx context.Context, coachID string) ([]models.CategoryPaymentStats, error) {
	year, month := s.clock.CurrentMonth()
	stats, err := s.repo.StatsByCategory(ctx, coachID, year, month)
	if err != nil {
		return nil, s.mapError(err, "failed to load category stats")
	}
	return nonNilStats(stats), nil
}

// GetPaymentStatsBySubcategory returns counts for the children of categoryID.
func (s *PaymentTrackingService) GetPaymentStatsBySubcategory(ctx context.Context, coachID, categoryID string) ([]models.CategoryPaymentStats, error) {
	year, month := s.clock.CurrentMonth()
	stats, err := s.repo.StatsBySubcategory(ctx, coachID, categoryID, year, month)
	if err != nil {
		return nil, s.mapError(err, "failed to load subcategory stats")
	}
	return nonNilStats(stats), nil
}

// GetUnpaidClientsInCategory lists unpaid clients of a category, optionally including
// those assigned only to its subcategories.
func (s *PaymentTrackingService) GetUnpaidClientsInCategory(ctx context.Context, coachID, categoryID string, includeSubcategories bool) ([]models.UnpaidClient, error) {
	year, month := s.clock.CurrentMonth()
	clients, err := s.repo.UnpaidInCategory(ctx, coachID, categoryID, includeSubcategories, year, month)
	if err != nil {
		return nil, s.mapError(err, "failed to load unpaid clients")
	}
	return nonNilUnpaid(clients), nil
}

// GetUnpaidClientsCurrentMonth lists every active client without a paid flag this month.
func (s *PaymentTrackingService) GetUnpaidClientsCurrentMonth(ctx context.Context, coachID string) ([]models.UnpaidClient, error) {
	year, month := s.clock.CurrentMonth()
	clients, err := s.repo.Unpaid(ctx, coachID, year, month)
	if err != nil {
		return nil, s.mapError(err, "failed to load unpaid clients")
	}
	return nonNilUnpaid(clients), nil
}

// GetMonthlyHistory returns the last months of flags, newest first, with explicit false
// for months that have no row.
func (s *PaymentTrackingService) GetMonthlyHistory(ctx context.Context, coachID, clientID string, months int) ([]models.MonthlyHistoryEntry, error) {
	if months <= 0 {
		months = defaultHistoryMonths
	}
	if months > maxHistoryMonths {
		return nil, appErrors.Clone(appErrors.ErrValidation, "months must be at most 36")
	}
	to := s.clock.MonthStart(s.clock.Now())
	from := to.AddDate(0, -(months - 1), 0)
	history, err := s.repo.History(ctx, coachID, clientID, from, to)
	if err != nil {
		return nil, s.mapError(err, "failed to load payment history")
	}
	if history == nil {
		history = []models.MonthlyHistoryEntry{}
	}
	return history, nil
}

func (s *PaymentTrackingService) mapError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "client not found")
	}
	s.logger.Error(message, zap.Error(err))
	return appErrors.Internal(err, message)
}

func nonNilStats(stats []models.CategoryPaymentStats) []models.CategoryPaymentStats {
	if stats == nil {
		return []models.CategoryPaymentStats{}
	}
	return stats
}

func nonNilUnpaid(clients []models.UnpaidClient) []models.UnpaidClient {
	if clients == nil {
		return []models.UnpaidClient{}
	}
	return clients
}
