package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/joshkonopka69/fitness-sub000/internal/handler"
	"github.com/joshkonopka69/fitness-sub000/internal/repository"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	"github.com/joshkonopka69/fitness-sub000/pkg/billing"
	"github.com/joshkonopka69/fitness-sub000/pkg/cache"
	"github.com/joshkonopka69/fitness-sub000/pkg/config"
	"github.com/joshkonopka69/fitness-sub000/pkg/database"
	"github.com/joshkonopka69/fitness-sub000/pkg/jobs"
	"github.com/joshkonopka69/fitness-sub000/pkg/messaging"
	"github.com/joshkonopka69/fitness-sub000/pkg/storage"
)

const (
	cachePrefix     = "coach-ledger:"
	eventBufferSize = 256
)

// application owns every long-lived dependency of the API process.
type application struct {
	cfg    *config.Config
	logger *zap.Logger

	db        *sqlx.DB
	cache     *repository.CacheRepository
	queue     *jobs.Queue
	publisher messaging.Publisher

	metrics  *service.MetricsService
	auth     *service.AuthService
	exports  *service.ExportService
	handlers handler.Handlers
}

func newApplication(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logr, publisher: messaging.NoopPublisher{}}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	app.db = db

	if err := migrateUp(cfg.Database); err != nil {
		app.Close()
		return nil, err
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
	}

	app.metrics = service.NewMetricsService()
	app.auth = service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		app.cache = repository.NewCacheRepository(redisClient, cachePrefix, logr)
		cacheRepo = app.cache
	}
	cacheSvc := service.NewCacheService(cacheRepo, app.metrics, cfg.Reporting.CacheTTL, logr, cfg.Reporting.CacheEnabled)

	events := app.newEvents()

	if err := app.wire(cacheSvc, events); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// newEvents builds the broker publisher and its worker queue. A broker that cannot be
// reached degrades to a no-op publisher so the ledger keeps serving.
func (a *application) newEvents() *service.EventService {
	if !a.cfg.Events.Enabled {
		return nil
	}
	publisher, err := messaging.NewAMQPPublisher(a.cfg.Events.URL, a.cfg.Events.Exchange, a.logger)
	if err != nil {
		a.logger.Warn("event broker unavailable, ledger events disabled", zap.Error(err))
		return nil
	}
	a.publisher = publisher
	a.queue = jobs.NewQueue("ledger-events",
		service.NewEventPublishHandler(publisher, a.cfg.Events.RoutingKey, a.metrics),
		jobs.QueueConfig{
			Workers:    a.cfg.Events.Workers,
			BufferSize: eventBufferSize,
			MaxRetries: a.cfg.Events.Retries,
			RetryDelay: a.cfg.Events.RetryDelay,
			OnGiveUp: func(job jobs.Job, _ error) {
				a.metrics.RecordEventDropped(job.Type)
			},
			Logger: a.logger,
		})
	return service.NewEventService(a.queue, a.metrics, a.logger)
}

func (a *application) wire(cacheSvc *service.CacheService, events *service.EventService) error {
	cfg := a.cfg
	logr := a.logger
	loc := cfg.Ledger.Location()
	validate := validator.New()

	payments := repository.NewPaymentRepository(a.db)
	clients := repository.NewClientRepository(a.db)
	categories := repository.NewCategoryRepository(a.db)
	tracking := repository.NewPaymentTrackingRepository(a.db)
	sessions := repository.NewSessionRepository(a.db)
	attendance := repository.NewAttendanceRepository(a.db)
	subscriptions := repository.NewSubscriptionRepository(a.db)
	coaches := repository.NewCoachRepository(a.db)

	trackerSvc := service.NewPaymentTrackingService(tracking, events, cacheSvc, loc, logr)
	ledgerSvc := service.NewLedgerService(service.LedgerServiceParams{
		Repo:      payments,
		Tracker:   trackerSvc,
		Events:    events,
		Cache:     cacheSvc,
		Metrics:   a.metrics,
		Validator: validate,
		Logger:    logr,
	})
	categorySvc := service.NewCategoryService(categories, clients, cacheSvc, validate, logr)
	clientSvc := service.NewClientService(service.ClientServiceParams{
		Repo:        clients,
		Payments:    payments,
		Categories:  categories,
		Tracker:     trackerSvc,
		Cache:       cacheSvc,
		RecentLimit: cfg.Ledger.RecentPaymentLimit,
		Validator:   validate,
		Logger:      logr,
	})
	reportingSvc := service.NewReportingService(service.ReportingServiceParams{
		Payments:   payments,
		Clients:    clients,
		Stats:      trackerSvc,
		Categories: categories,
		Cache:      cacheSvc,
		Logger:     logr,
		Config: service.ReportingServiceConfig{
			RevenueDays: cfg.Ledger.RevenueWindowDays,
			CacheTTL:    cfg.Reporting.CacheTTL,
			Currency:    cfg.Ledger.Currency,
			Location:    loc,
		},
	})
	sessionSvc := service.NewSessionService(sessions, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendance, sessions, clients, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptions,
		billing.NewClient(cfg.Billing.FunctionURL, cfg.Billing.FunctionKey, cfg.Billing.Timeout, logr),
		validate, logr,
		service.SubscriptionConfig{
			MonthlyPriceID: cfg.Billing.MonthlyPrice,
			YearlyPriceID:  cfg.Billing.YearlyPrice,
			Currency:       cfg.Ledger.Currency,
		})
	coachSvc := service.NewCoachService(coaches, logr)

	// A nil *ExportService must not reach the handlers as a non-nil interface.
	var clientHandler *handler.ClientHandler
	exportHandler := handler.NewExportHandler(nil)
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			return fmt.Errorf("init export storage: %w", err)
		}
		a.exports = service.NewExportService(clients, payments, store,
			storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL, Location: loc},
			logr)
		clientHandler = handler.NewClientHandler(clientSvc, ledgerSvc, categorySvc, attendanceSvc, a.exports)
		exportHandler = handler.NewExportHandler(a.exports)
	} else {
		clientHandler = handler.NewClientHandler(clientSvc, ledgerSvc, categorySvc, attendanceSvc, nil)
	}

	a.handlers = handler.Handlers{
		Coach:        handler.NewCoachHandler(coachSvc),
		Clients:      clientHandler,
		Payments:     handler.NewPaymentHandler(ledgerSvc),
		Tracking:     handler.NewTrackingHandler(trackerSvc),
		Categories:   handler.NewCategoryHandler(categorySvc),
		Reports:      handler.NewReportHandler(reportingSvc),
		Sessions:     handler.NewSessionHandler(sessionSvc, attendanceSvc),
		Subscription: handler.NewSubscriptionHandler(subscriptionSvc),
		Exports:      exportHandler,
		System:       a.systemHandler(),
	}
	return nil
}

func (a *application) systemHandler() *handler.MetricsHandler {
	h := handler.NewMetricsHandler(a.metrics, a.db)
	if a.cache != nil {
		h = h.WithCache(a.cache)
	}
	return h
}

// Start launches background workers; they stop when ctx is cancelled.
func (a *application) Start(ctx context.Context) {
	if a.queue != nil {
		a.queue.Start(ctx)
	}
	if a.exports != nil {
		go a.exports.RunCleanup(ctx, a.cfg.Exports.CleanupInterval)
	}
}

// Close drains the event queue and releases connections.
func (a *application) Close() {
	if a.queue != nil {
		a.queue.Stop()
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("close event publisher", zap.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("close postgres", zap.Error(err))
		}
	}
}

// migrateUp applies pending migrations on a dedicated handle, since the migrator closes
// the connection it is given.
func migrateUp(cfg config.DatabaseConfig) error {
	conn, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	migrator, err := database.NewMigrator(conn, cfg.MigrationsPath)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer migrator.Close() //nolint:errcheck
	return migrator.Up()
}
