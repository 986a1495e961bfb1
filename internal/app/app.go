package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"progress-service/internal/attempt"
	"progress-service/internal/auth"
	"progress-service/internal/config"
	"progress-service/internal/db"
	"progress-service/internal/health"
	"progress-service/internal/kafka"
	"progress-service/internal/logger"
	"progress-service/internal/messaging"
	"progress-service/internal/metrics"
	"progress-service/internal/middleware"
	"progress-service/internal/record"
	"progress-service/internal/roster"
	"progress-service/internal/session"
	"progress-service/internal/stats"
	"progress-service/internal/telemetry"
	"progress-service/internal/user"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

// eventSink is an attempt publisher owning a broker connection.
type eventSink interface {
	attempt.Publisher
	Close() error
}

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	db        *bun.DB
	store     session.Store
	events    eventSink
	telemetry *telemetry.Telemetry
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	location, err := cfg.Analytics.Location()
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, err
	}
	appMetrics := tel.Metrics

	database := db.New(cfg.Database)
	if err := appMetrics.Database.RegisterDB(database.DB, otel.Meter(ServiceName)); err != nil {
		slogLogger.Warn("failed to register connection pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database); err != nil {
		db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app := &App{
		config:    cfg,
		router:    chi.NewRouter(),
		logger:    slogLogger,
		db:        database,
		store:     newSessionStore(cfg.Redis, slogLogger),
		events:    newEventSink(cfg.Events, slogLogger, appMetrics),
		telemetry: tel,
	}

	app.router.Use(chimiddleware.RequestID)
	app.router.Use(chimiddleware.Recoverer)
	app.router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	defaultExercise := cfg.Analytics.DefaultExerciseType

	// Repositories
	userRepo := user.NewRepository(database, appMetrics)
	attemptRepo := attempt.NewRepository(database, appMetrics)
	rosterRepo := roster.NewRepository(database, appMetrics)
	cohortRepo := stats.NewCohortRepository(database, appMetrics)

	// Services
	reconciler := record.NewReconciler(attemptRepo, app.store, slogLogger, appMetrics)

	var publisher attempt.Publisher
	if app.events != nil {
		publisher = app.events
	}
	attemptService := attempt.NewService(attemptRepo, reconciler, publisher, defaultExercise, slogLogger, appMetrics)
	rosterService := roster.NewService(rosterRepo, userRepo)
	statsService := stats.NewService(attemptRepo, cohortRepo, stats.Options{
		DefaultExerciseType: defaultExercise,
		SeriesLimit:         cfg.Analytics.SeriesLimit,
		Location:            location,
	})

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.AccessTokenTTL)*time.Minute)
	authService := auth.NewService(userRepo, reconciler, issuer, defaultExercise, slogLogger)

	// Health endpoints (no auth required)
	healthHandler := health.NewHandler(slogLogger).
		Require("postgres", database.PingContext).
		Optional("session_store", app.store.Ping)
	if pinger, ok := app.events.(interface{ Ping(context.Context) error }); ok {
		healthHandler.Optional("events", pinger.Ping)
	}
	healthHandler.RegisterRoutes(app.router)

	auth.NewHandler(authService, cfg.Env, slogLogger).RegisterRoutes(app.router)

	// Create protected routes group for /api endpoints
	app.router.Route("/api", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(issuer, slogLogger))
		attempt.NewHandler(attemptService, defaultExercise, slogLogger).RegisterRoutes(r)
		record.NewHandler(reconciler, defaultExercise, slogLogger).RegisterRoutes(r)
		stats.NewHandler(statsService, rosterService, location, slogLogger, appMetrics).RegisterRoutes(r)
		roster.NewHandler(rosterService, slogLogger).RegisterRoutes(r)
	})

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// newSessionStore prefers Redis and falls back to process memory, since the
// cached record is never authoritative.
func newSessionStore(cfg config.RedisConfig, logger *slog.Logger) session.Store {
	if cfg.Disabled {
		logger.Info("redis disabled, using in-memory session store")
		return session.NewMemoryStore(cfg.TTL())
	}

	store, err := session.NewRedisStore(cfg)
	if err != nil {
		logger.Warn("failed to connect to redis, using in-memory session store", "addr", cfg.Addr(), "error", err)
		return session.NewMemoryStore(cfg.TTL())
	}

	logger.Info("redis session store initialized", "addr", cfg.Addr())
	return store
}

func newEventSink(cfg config.EventsConfig, logger *slog.Logger, m *metrics.Metrics) eventSink {
	switch cfg.Driver {
	case "nats":
		producer, err := messaging.NewProducer(cfg.NATS.URL, cfg.NATS.Subject, logger, m)
		if err != nil {
			logger.Warn("failed to initialize NATS producer", "error", err)
			return nil
		}
		return producer
	case "kafka":
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger, m)
		if err != nil {
			logger.Warn("failed to initialize kafka producer", "error", err)
			return nil
		}
		return producer
	default:
		logger.Info("attempt events disabled")
		return nil
	}
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then releases connections in reverse
// order of creation.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	errs = append(errs, a.store.Close())
	errs = append(errs, a.telemetry.Shutdown(ctx, a.logger))
	db.Close(a.db)

	return errors.Join(errs...)
}
