package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joshkonopka69/fitness-sub000/internal/dto"
	"github.com/joshkonopka69/fitness-sub000/internal/models"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

const (
	defaultRevenueDays = 14
	maxRevenueDays     = 366
)

type revenueSource interface {
	ListCompletedSince(ctx context.Context, coachID string, since time.Time) ([]models.Payment, error)
}

type rosterSummary interface {
	Counts(ctx context.Context, coachID string) (*models.ClientCounts, error)
	OverdueSummary(ctx context.Context, coachID string) (*models.OverdueSummary, error)
}

type categoryStatsSource interface {
	GetPaymentStatsByCategory(ctx context.Context, coachID string) ([]models.CategoryPaymentStats, error)
	GetPaymentStatsBySubcategory(ctx context.Context, coachID, categoryID string) ([]models.CategoryPaymentStats, error)
	GetUnpaidClientsInCategory(ctx context.Context, coachID, categoryID string, includeSubcategories bool) ([]models.UnpaidClient, error)
}

type categoryFinder interface {
	FindByID(ctx context.Context, coachID, id string) (*models.Category, error)
}

// ReportingServiceConfig tunes reporting behaviour.
type ReportingServiceConfig struct {
	RevenueDays int
	CacheTTL    time.Duration
	Currency    string
	Location    *time.Location
}

// ReportingServiceParams groups constructor dependencies.
type ReportingServiceParams struct {
	Payments   revenueSource
	Clients    rosterSummary
	Stats      categoryStatsSource
	Categories categoryFinder
	Cache      *CacheService
	Logger     *zap.Logger
	Config     ReportingServiceConfig
}

// ReportingService builds the revenue, overdue and drill-down reports.
type ReportingService struct {
	payments   revenueSource
	clients    rosterSummary
	stats      categoryStatsSource
	categories categoryFinder
	cache      *CacheService
	logger     *zap.Logger
	clock      ledgerClock
	cfg        ReportingServiceConfig
}

// NewReportingService constructs a ReportingService.
func NewReportingService(params ReportingServiceParams) *ReportingService {
	cfg := params.Config
	if cfg.RevenueDays <= 0 {
		cfg.RevenueDays = defaultRevenueDays
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingService{
		payments:   params.Payments,
		clients:    params.Clients,
		stats:      params.Stats,
		categories: params.Categories,
		cache:      params.Cache,
		logger:     logger,
		clock:      newLedgerClock(cfg.Location),
		cfg:        cfg,
	}
}

// RevenueByDay sums completed payments per ledger day over the window ending today.
// Every day is present; days without revenue are zero.
func (s *ReportingService) RevenueByDay(ctx context.Context, coachID string, days int) (*dto.RevenueReport, error) {
	if days <= 0 {
		days = s.cfg.RevenueDays
	}
	if days > maxRevenueDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, "days must be at most 366")
	}
	today := s.clock.Today()
	start := today.AddDate(0, 0, -(days - 1))
	end := today.AddDate(0, 0, 1)

	payments, err := s.payments.ListCompletedSince(ctx, coachID, start)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load revenue")
	}
	return bucketRevenue(payments, start, end, days, s.clock.loc, s.cfg.Currency), nil
}

func bucketRevenue(payments []models.Payment, start, end time.Time, days int, loc *time.Location, currency string) *dto.RevenueReport {
	report := &dto.RevenueReport{
		Days:     make([]models.DailyRevenue, days),
		Total:    decimal.Zero,
		BestDay:  models.DailyRevenue{Amount: decimal.Zero},
		Currency: currency,
	}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		report.Days[i] = models.DailyRevenue{Date: day, Amount: decimal.Zero}
		index[day] = i
	}
	for _, payment := range payments {
		if payment.Status != models.PaymentStatusCompleted {
			continue
		}
		at := payment.PaymentDate.In(loc)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		i, ok := index[at.Format("2006-01-02")]
		if !ok {
			continue
		}
		report.Days[i].Amount = report.Days[i].Amount.Add(payment.Amount)
		report.Total = report.Total.Add(payment.Amount)
	}
	for _, day := range report.Days {
		if day.Amount.GreaterThan(report.BestDay.Amount) {
			report.BestDay = day
		}
	}
	return report
}

// OverdueTotal sums positive balances across the coach's clients.
func (s *ReportingService) OverdueTotal(ctx context.Context, coachID string) (*models.OverdueSummary, error) {
	summary, err := s.clients.OverdueSummary(ctx, coachID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load overdue total")
	}
	return summary, nil
}

// Drilldown resolves a breadcrumb path of category ids into the view at its top. An
// empty path is the root; one id is a top level category; two ids are a category and
// one of its subcategories.
func (s *ReportingService) Drilldown(ctx context.Context, coachID string, path []string) (*dto.DrilldownResponse, error) {
	stack := DrilldownStack{}
	var parentID string
	for _, id := range path {
		category, err := s.categories.FindByID(ctx, coachID, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
			}
			return nil, appErrors.Internal(err, "failed to load category")
		}
		level := nextLevel[stack.Current().Level]
		switch level {
		case LevelCategory:
			if !category.IsTopLevel() {
				return nil, appErrors.Clone(appErrors.ErrDrilldownInvalid, "first drill-down step must be a top level category")
			}
		case LevelSubcategory:
			if category.IsTopLevel() || *category.ParentCategoryID != parentID {
				return nil, appErrors.Clone(appErrors.ErrDrilldownInvalid, "subcategory does not belong to the selected category")
			}
		}
		stack, err = stack.Push(DrilldownEntry{Level: level, CategoryID: category.ID, Name: category.Name})
		if err != nil {
			return nil, err
		}
		parentID = category.ID
	}
	return s.drilldownView(ctx, coachID, stack)
}

func (s *ReportingService) drilldownView(ctx context.Context, coachID string, stack DrilldownStack) (*dto.DrilldownResponse, error) {
	current := stack.Current()
	resp := &dto.DrilldownResponse{
		Level:         current.Level,
		Breadcrumb:    []dto.DrilldownFrame{{Level: LevelRoot, Name: "All categories"}},
		Categories:    []models.CategoryPaymentStats{},
		UnpaidClients: []models.UnpaidClient{},
	}
	for _, entry := range stack.Entries() {
		resp.Breadcrumb = append(resp.Breadcrumb, dto.DrilldownFrame{Level: entry.Level, CategoryID: entry.CategoryID, Name: entry.Name})
	}

	var err error
	switch current.Level {
	case LevelRoot:
		resp.Categories, err = s.stats.GetPaymentStatsByCategory(ctx, coachID)
	case LevelCategory:
		resp.Categories, err = s.stats.GetPaymentStatsBySubcategory(ctx, coachID, current.CategoryID)
		if err == nil {
			resp.UnpaidClients, err = s.stats.GetUnpaidClientsInCategory(ctx, coachID, current.CategoryID, false)
		}
	case LevelSubcategory:
		resp.UnpaidClients, err = s.stats.GetUnpaidClientsInCategory(ctx, coachID, current.CategoryID, false)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Dashboard gathers the home screen figures concurrently and caches the result. The
// boolean reports a cache hit.
func (s *ReportingService) Dashboard(ctx context.Context, coachID string) (*dto.DashboardResponse, bool, error) {
	key := DashboardKey(coachID)
	var cached dto.DashboardResponse
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	resp := &dto.DashboardResponse{CoachID: coachID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		revenue, err := s.RevenueByDay(gctx, coachID, 0)
		if err != nil {
			return err
		}
		resp.Revenue = *revenue
		return nil
	})
	g.Go(func() error {
		overdue, err := s.OverdueTotal(gctx, coachID)
		if err != nil {
			return err
		}
		resp.Overdue = *overdue
		return nil
	})
	g.Go(func() error {
		counts, err := s.clients.Counts(gctx, coachID)
		if err != nil {
			return appErrors.Internal(err, "failed to count clients")
		}
		resp.Clients = *counts
		return nil
	})
	g.Go(func() error {
		stats, err := s.stats.GetPaymentStatsByCategory(gctx, coachID)
		if err != nil {
			return err
		}
		resp.Categories = stats
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard composition failed", zap.String("coach_id", coachID), zap.Error(err))
		return nil, false, err
	}
	resp.GeneratedAt = s.clock.Now().UTC()

	s.cache.Set(ctx, key, resp, s.cfg.CacheTTL)
	return resp, false, nil
}
