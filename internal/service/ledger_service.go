package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/repository"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/money"
)

// EffectDirection says whether a payment's contribution is being applied or reversed.
type EffectDirection int

const (
	EffectApply EffectDirection = iota
	EffectReverse
)

// ApplyEffect is the balance policy. A pending payment adds to what the client owes; a
// completed one pays it down, never below zero. Reversal swaps the two.
func ApplyEffect(balance, amount decimal.Decimal, status models.PaymentStatus, direction EffectDirection) decimal.Decimal {
	owes := status == models.PaymentStatusPending
	if direction == EffectReverse {
		owes = !owes
	}
	if owes {
		return balance.Add(amount)
	}
	return money.FloorZero(balance.Sub(amount))
}

type ledgerRepository interface {
	CreateWithBalance(ctx context.Context, payment *models.Payment, fn repository.BalanceFunc) (repository.BalanceChange, error)
	UpdateStatusWithBalance(ctx context.Context, coachID, paymentID string, status models.PaymentStatus, fn repository.BalanceFunc) (*models.Payment, repository.BalanceChange, error)
	DeleteWithBalance(ctx context.Context, coachID, paymentID string, fn repository.BalanceFunc) (*models.Payment, repository.BalanceChange, error)
	AdjustBalance(ctx context.Context, coachID, clientID string, fn func(balance decimal.Decimal) decimal.Decimal) (repository.BalanceChange, error)
	ReconcileBalance(ctx context.Context, coachID, clientID string, apply bool) (*models.BalanceAudit, error)
	FindByID(ctx context.Context, coachID, id string) (*models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentListItem, int, error)
}

type monthlyMarker interface {
	MarkClientAsPaid(ctx context.Context, coachID, clientID, note string) error
	MarkClientAsUnpaid(ctx context.Context, coachID, clientID string) error
}

// AddPaymentRequest is the payload for recording a payment.
type AddPaymentRequest struct {
	ClientID      string               `json:"client_id" validate:"required"`
	Amount        money.Input          `json:"amount"`
	Status        models.PaymentStatus `json:"status" validate:"required"`
	Note          *string              `json:"note"`
	PaymentMethod *string              `json:"payment_method"`
	PaymentType   *string              `json:"payment_type"`
	PaymentDate   *time.Time           `json:"payment_date"`
}

// AdjustBalanceRequest is a signed manual correction.
type AdjustBalanceRequest struct {
	Delta  string `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

// LedgerService keeps client balances in step with payments.
type LedgerService struct {
	repo      ledgerRepository
	tracker   monthlyMarker
	events    *EventService
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// LedgerServiceParams groups constructor dependencies.
type LedgerServiceParams struct {
	Repo      ledgerRepository
	Tracker   monthlyMarker
	Events    *EventService
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(params LedgerServiceParams) *LedgerService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		repo:      params.Repo,
		tracker:   params.Tracker,
		events:    params.Events,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
	}
}

// ListPayments returns coach payments with pagination metadata.
func (s *LedgerService) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentListItem, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.ErrInvalidStatus
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// AddPayment records a payment, moves the balance in the same transaction and then
// syncs the monthly flag.
func (s *LedgerService) AddPayment(ctx context.Context, coachID string, req AddPaymentRequest) (*models.LedgerResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid payment payload")
	}
	amount, err := req.Amount.Decimal()
	if err != nil || !money.Positive(amount) {
		return nil, appErrors.ErrInvalidAmount
	}
	if !req.Status.Valid() {
		return nil, appErrors.ErrInvalidStatus
	}

	payment := &models.Payment{
		CoachID:       coachID,
		ClientID:      req.ClientID,
		Amount:        amount,
		Status:        req.Status,
		Note:          trimmedOrNil(req.Note),
		PaymentMethod: trimmedOrNil(req.PaymentMethod),
		PaymentType:   trimmedOrNil(req.PaymentType),
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = req.PaymentDate.UTC()
	}

	change, err := s.repo.CreateWithBalance(ctx, payment, func(p models.Payment, balance decimal.Decimal) decimal.Decimal {
		return ApplyEffect(balance, p.Amount, p.Status, EffectApply)
	})
	s.metrics.RecordLedgerMutation("add_payment", err)
	if err != nil {
		return nil, s.mapLedgerError(err, "client not found", "failed to record payment")
	}

	result := &models.LedgerResult{
		Payment:         payment,
		ClientID:        payment.ClientID,
		PreviousBalance: change.Previous,
		Balance:         change.Current,
	}
	s.syncMonth(ctx, coachID, payment, result)
	s.emit(ctx, models.EventPaymentAdded, payment, change.Current)
	s.cache.InvalidateCoach(ctx, coachID)
	return result, nil
}

// ChangeStatus moves a payment between pending and completed. Setting the current
// status again is a no-op.
func (s *LedgerService) ChangeStatus(ctx context.Context, coachID, paymentID string, status models.PaymentStatus) (*models.LedgerResult, error) {
	if !status.Valid() {
		return nil, appErrors.ErrInvalidStatus
	}
	payment, change, err := s.repo.UpdateStatusWithBalance(ctx, coachID, paymentID, status, func(p models.Payment, balance decimal.Decimal) decimal.Decimal {
		return ApplyEffect(balance, p.Amount, p.Status, EffectApply)
	})
	s.metrics.RecordLedgerMutation("change_status", err)
	if err != nil {
		return nil, s.mapLedgerError(err, "payment not found", "failed to change payment status")
	}

	result := &models.LedgerResult{
		Payment:             payment,
		ClientID:            payment.ClientID,
		PreviousBalance:     change.Previous,
		Balance:             change.Current,
		MonthlyStatusSynced: true,
	}
	if !change.Changed {
		return result, nil
	}
	s.syncMonth(ctx, coachID, payment, result)
	s.emit(ctx, models.EventPaymentStatusChanged, payment, change.Current)
	s.cache.InvalidateCoach(ctx, coachID)
	return result, nil
}

// TogglePaymentStatus flips a payment to the opposite status.
func (s *LedgerService) TogglePaymentStatus(ctx context.Context, coachID, paymentID string) (*models.LedgerResult, error) {
	payment, err := s.repo.FindByID(ctx, coachID, paymentID)
	if err != nil {
		return nil, s.mapLedgerError(err, "payment not found", "failed to load payment")
	}
	return s.ChangeStatus(ctx, coachID, paymentID, payment.Status.Opposite())
}

// DeletePayment removes a payment and reverses its balance contribution. The monthly
// flag is left as it was.
func (s *LedgerService) DeletePayment(ctx context.Context, coachID, paymentID string) (*models.LedgerResult, error) {
	payment, change, err := s.repo.DeleteWithBalance(ctx, coachID, paymentID, func(p models.Payment, balance decimal.Decimal) decimal.Decimal {
		return ApplyEffect(balance, p.Amount, p.Status, EffectReverse)
	})
	s.metrics.RecordLedgerMutation("delete_payment", err)
	if err != nil {
		return nil, s.mapLedgerError(err, "payment not found", "failed to delete payment")
	}
	s.emit(ctx, models.EventPaymentDeleted, payment, change.Current)
	s.cache.InvalidateCoach(ctx, coachID)
	return &models.LedgerResult{
		Payment:             payment,
		ClientID:            payment.ClientID,
		PreviousBalance:     change.Previous,
		Balance:             change.Current,
		MonthlyStatusSynced: true,
	}, nil
}

// AdjustBalance applies a signed manual correction, floored at zero.
func (s *LedgerService) AdjustBalance(ctx context.Context, coachID, clientID string, req AdjustBalanceRequest) (*models.LedgerResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid adjustment payload")
	}
	delta, err := money.ParseSigned(req.Delta)
	if err != nil || delta.IsZero() {
		return nil, appErrors.ErrInvalidAmount
	}
	change, err := s.repo.AdjustBalance(ctx, coachID, clientID, func(balance decimal.Decimal) decimal.Decimal {
		return money.FloorZero(balance.Add(delta))
	})
	s.metrics.RecordLedgerMutation("adjust_balance", err)
	if err != nil {
		return nil, s.mapLedgerError(err, "client not found", "failed to adjust balance")
	}
	if change.Changed {
		s.logger.Info("balance adjusted",
			zap.String("coach_id", coachID),
			zap.String("client_id", clientID),
			zap.String("delta", delta.String()),
			zap.String("reason", req.Reason))
		s.emitBalance(ctx, coachID, clientID, delta, change.Current)
		s.cache.InvalidateCoach(ctx, coachID)
	}
	return &models.LedgerResult{
		ClientID:            clientID,
		PreviousBalance:     change.Previous,
		Balance:             change.Current,
		MonthlyStatusSynced: true,
	}, nil
}

// AuditBalance compares the stored balance with the pending payment sum.
func (s *LedgerService) AuditBalance(ctx context.Context, coachID, clientID string) (*models.BalanceAudit, error) {
	audit, err := s.repo.ReconcileBalance(ctx, coachID, clientID, false)
	if err != nil {
		return nil, s.mapLedgerError(err, "client not found", "failed to audit balance")
	}
	return audit, nil
}

// ReconcileBalance audits and, when apply is set, overwrites the stored balance with the
// pending sum.
func (s *LedgerService) ReconcileBalance(ctx context.Context, coachID, clientID string, apply bool) (*models.BalanceAudit, error) {
	audit, err := s.repo.ReconcileBalance(ctx, coachID, clientID, apply)
	s.metrics.RecordLedgerMutation("reconcile_balance", err)
	if err != nil {
		return nil, s.mapLedgerError(err, "client not found", "failed to reconcile balance")
	}
	if audit.Applied {
		s.logger.Warn("balance drift corrected",
			zap.String("coach_id", coachID),
			zap.String("client_id", clientID),
			zap.String("drift", audit.Drift.String()))
		s.emitBalance(ctx, coachID, clientID, audit.Drift.Neg(), audit.Derived)
		s.cache.InvalidateCoach(ctx, coachID)
	}
	return audit, nil
}

// syncMonth marks the current month after a committed mutation. Failure is logged and
// reported through MonthlyStatusSynced; the balance change stands.
func (s *LedgerService) syncMonth(ctx context.Context, coachID string, payment *models.Payment, result *models.LedgerResult) {
	paid := payment.Status == models.PaymentStatusCompleted
	result.HasPaid = &paid
	if s.tracker == nil {
		result.MonthlyStatusSynced = true
		return
	}
	var err error
	if paid {
		note := ""
		if payment.Note != nil {
			note = *payment.Note
		}
		err = s.tracker.MarkClientAsPaid(ctx, coachID, payment.ClientID, note)
	} else {
		err = s.tracker.MarkClientAsUnpaid(ctx, coachID, payment.ClientID)
	}
	result.MonthlyStatusSynced = err == nil
	s.metrics.RecordMonthlySync(err == nil)
	if err != nil {
		result.HasPaid = nil
		s.logger.Warn("monthly status sync failed",
			zap.String("coach_id", coachID),
			zap.String("client_id", payment.ClientID),
			zap.String("payment_id", payment.ID),
			zap.Error(err))
	}
}

func (s *LedgerService) emit(ctx context.Context, eventType models.LedgerEventType, payment *models.Payment, balance decimal.Decimal) {
	amount := payment.Amount
	s.events.Emit(ctx, models.LedgerEvent{
		Type:      eventType,
		CoachID:   payment.CoachID,
		ClientID:  payment.ClientID,
		PaymentID: payment.ID,
		Amount:    &amount,
		Status:    payment.Status,
		Balance:   &balance,
	})
}

func (s *LedgerService) emitBalance(ctx context.Context, coachID, clientID string, delta, balance decimal.Decimal) {
	s.events.Emit(ctx, models.LedgerEvent{
		Type:     models.EventBalanceAdjusted,
		CoachID:  coachID,
		ClientID: clientID,
		Amount:   &delta,
		Balance:  &balance,
	})
}

func (s *LedgerService) mapLedgerError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
