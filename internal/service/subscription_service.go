package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/pkg/billing"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
	"github.com/joshkonopka69/fitness-sub000/pkg/money"
)

type subscriptionRepository interface {
	Status(ctx context.Context, coachID string) (*models.SubscriptionStatus, error)
	TrialInfo(ctx context.Context, coachID string) (*models.TrialInfo, error)
	RecordCheckout(ctx context.Context, checkout *models.SubscriptionCheckout) error
	Activate(ctx context.Context, subscriptionID string, months int, payment *models.SubscriptionPayment) error
}

type checkoutProvider interface {
	Configured() bool
	CreateSubscription(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error)
}

// CheckoutRequest starts a subscription purchase.
type CheckoutRequest struct {
	Email string                  `json:"email" validate:"required,email"`
	Plan  models.SubscriptionPlan `json:"plan" validate:"required,oneof=monthly yearly"`
}

// ConfirmCheckoutRequest activates the subscription after the payment sheet succeeds. The
// ids must match a checkout issued to the same coach.
type ConfirmCheckoutRequest struct {
	SubscriptionID  string                  `json:"subscription_id" validate:"required"`
	PaymentIntentID string                  `json:"payment_intent_id" validate:"required"`
	Plan            models.SubscriptionPlan `json:"plan" validate:"required,oneof=monthly yearly"`
	Amount          money.Input             `json:"amount"`
	Currency        string                  `json:"currency" validate:"omitempty,len=3"`
}

// SubscriptionConfig maps plans to processor price ids.
type SubscriptionConfig struct {
	MonthlyPriceID string
	YearlyPriceID  string
	Currency       string
}

// SubscriptionService reports and extends the coach's app subscription.
type SubscriptionService struct {
	repo      subscriptionRepository
	billing   checkoutProvider
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SubscriptionConfig
	now       func() time.Time
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(repo subscriptionRepository, billingClient checkoutProvider, validate *validator.Validate, logger *zap.Logger, cfg SubscriptionConfig) *SubscriptionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = money.DefaultCurrency
	}
	return &SubscriptionService{repo: repo, billing: billingClient, validator: validate, logger: logger, cfg: cfg, now: time.Now}
}

// Status reports whether the coach may use the app. A coach with no subscription row is inactive.
func (s *SubscriptionService) Status(ctx context.Context, coachID string) (*models.SubscriptionStatus, error) {
	status, err := s.repo.Status(ctx, coachID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.SubscriptionStatus{IsActive: false, DaysLeft: 0, Status: "none"}, nil
		}
		return nil, appErrors.Internal(err, "failed to check subscription")
	}
	if status.DaysLeft < 0 {
		status.DaysLeft = 0
	}
	return status, nil
}

// TrialInfo never fails; lookup errors are logged and an inactive value flagged stale is returned.
func (s *SubscriptionService) TrialInfo(ctx context.Context, coachID string) *models.TrialInfo {
	info, err := s.repo.TrialInfo(ctx, coachID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("trial info lookup failed", zap.String("coach_id", coachID), zap.Error(err))
		}
		return &models.TrialInfo{Status: "unknown", Stale: true}
	}
	if info.DaysLeft <= 0 {
		switch {
		case info.SubscriptionEndsAt != nil:
			info.DaysLeft = DaysLeft(*info.SubscriptionEndsAt, s.now())
		case info.TrialEndsAt != nil:
			info.DaysLeft = DaysLeft(*info.TrialEndsAt, s.now())
		}
	}
	return info
}

// Checkout creates a processor subscription and returns the payment sheet secrets.
func (s *SubscriptionService) Checkout(ctx context.Context, coachID string, req CheckoutRequest) (*billing.CheckoutSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid checkout payload")
	}
	if s.billing == nil || !s.billing.Configured() {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "payments are not configured")
	}
	priceID := s.priceFor(req.Plan)
	if priceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan is not available")
	}
	session, err := s.billing.CreateSubscription(ctx, billing.CheckoutRequest{
		CoachID: coachID,
		PriceID: priceID,
		Email:   strings.TrimSpace(req.Email),
		Plan:    string(req.Plan),
	})
	if err != nil {
		s.logger.Error("checkout failed", zap.String("coach_id", coachID), zap.String("plan", string(req.Plan)), zap.Error(err))
		var upstream *billing.UpstreamError
		if errors.As(err, &upstream) && upstream.Message != "" {
			return nil, appErrors.WrapAs(err, appErrors.ErrUpstream, upstream.Message)
		}
		return nil, appErrors.WrapAs(err, appErrors.ErrUpstream, "")
	}
	checkout := &models.SubscriptionCheckout{
		CoachID:         coachID,
		SubscriptionID:  session.SubscriptionID,
		PaymentIntentID: session.PaymentIntentID,
		Plan:            req.Plan,
	}
	if err := s.repo.RecordCheckout(ctx, checkout); err != nil {
		return nil, appErrors.Internal(err, "failed to record checkout")
	}
	return session, nil
}

// ConfirmCheckout extends the subscription by the plan's months and records the payment.
// Only a checkout previously issued to this coach for the same plan can be confirmed, and
// only once.
func (s *SubscriptionService) ConfirmCheckout(ctx context.Context, coachID string, req ConfirmCheckoutRequest) (*models.SubscriptionStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid confirmation payload")
	}
	amount, err := req.Amount.Decimal()
	if err != nil || !money.Positive(amount) {
		return nil, appErrors.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.Currency
	}
	payment := &models.SubscriptionPayment{
		CoachID:         coachID,
		Amount:          amount,
		Currency:        currency,
		Status:          "succeeded",
		PaymentIntentID: req.PaymentIntentID,
		Plan:            req.Plan,
	}
	if err := s.repo.Activate(ctx, req.SubscriptionID, req.Plan.Months(), payment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("confirmation without matching checkout",
				zap.String("coach_id", coachID),
				zap.String("subscription_id", req.SubscriptionID))
			return nil, appErrors.Clone(appErrors.ErrNotFound, "checkout not found")
		}
		return nil, appErrors.Internal(err, "failed to activate subscription")
	}
	s.logger.Info("subscription activated",
		zap.String("coach_id", coachID),
		zap.String("plan", string(req.Plan)),
		zap.String("payment_id", payment.ID))
	return s.Status(ctx, coachID)
}

func (s *SubscriptionService) priceFor(plan models.SubscriptionPlan) string {
	switch plan {
	case models.PlanMonthly:
		return s.cfg.MonthlyPriceID
	case models.PlanYearly:
		return s.cfg.YearlyPriceID
	default:
		return ""
	}
}

// DaysLeft is the number of started days until end, never negative.
func DaysLeft(end, now time.Time) int {
	remaining := end.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}
