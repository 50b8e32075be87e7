package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillboard/internal/domain/audit"
	"skillboard/internal/domain/auth"
	"skillboard/internal/domain/core"
	"skillboard/internal/domain/courses"
	"skillboard/internal/domain/levelmove"
	"skillboard/internal/domain/notifications"
	"skillboard/internal/domain/reconciliation"
	"skillboard/internal/domain/reports"
	"skillboard/internal/domain/skills"
	"skillboard/internal/platform/config"
	cryptoutil "skillboard/internal/platform/crypto"
	"skillboard/internal/platform/db"
	"skillboard/internal/platform/email"
	"skillboard/internal/platform/hrms"
	"skillboard/internal/platform/jobs"
	"skillboard/internal/platform/metrics"
	"skillboard/internal/transport/http/api"
	audithandler "skillboard/internal/transport/http/handlers/audit"
	authhandler "skillboard/internal/transport/http/handlers/auth"
	corehandler "skillboard/internal/transport/http/handlers/core"
	courseshandler "skillboard/internal/transport/http/handlers/courses"
	levelmovehandler "skillboard/internal/transport/http/handlers/levelmove"
	notificationshandler "skillboard/internal/transport/http/handlers/notifications"
	reconciliationhandler "skillboard/internal/transport/http/handlers/reconciliation"
	reportshandler "skillboard/internal/transport/http/handlers/reports"
	skillshandler "skillboard/internal/transport/http/handlers/skills"
	"skillboard/internal/transport/http/middleware"
	"skillboard/migrations"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Jobs    *jobs.Service

	stopJobs context.CancelFunc
}

// New wires the full application: connects the pool, runs migrations and
// seed when configured, and builds the router with every domain mounted.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	collector := metrics.New()
	mailer := email.New(cfg)

	authStore := auth.NewStore(pool)
	idemStore := middleware.NewIdempotencyStore(pool)
	coreSvc := core.NewService(core.NewStore(pool, cryptoSvc))
	skillsSvc := skills.NewService(skills.NewStore(pool))
	movementSvc := levelmove.NewService(levelmove.NewStore(pool))
	coursesSvc := courses.NewService(courses.NewStore(pool), cfg.AllowDirectComplete)
	auditSvc := audit.New(pool)
	notifySvc := notifications.New(notifications.NewStore(pool), mailer)
	notifySvc.DefaultFrom = cfg.EmailFrom
	reportsSvc := reports.NewService(reports.NewStore(pool))

	var fetcher reconciliation.Fetcher
	if hrmsClient := hrms.New(cfg); hrmsClient.Configured() {
		fetcher = hrmsClient
	}
	reconSvc := reconciliation.NewService(pool, fetcher)

	jobsSvc := jobs.New(pool, cfg, fetcher, notifySvc)
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	jobsSvc.Start(jobsCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Get("/metrics.json", func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.GetUser(r.Context())
		if !ok || (user.RoleName != auth.RoleHR && user.RoleName != auth.RoleSystemAdmin) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
			return
		}
		api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cryptoSvc, mailer, cfg.EmailFrom, cfg.FrontendBaseURL, cfg.PasswordResetTTL)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.Post("/refresh", authHandler.HandleRefresh)
			r.Post("/mfa/setup", authHandler.HandleMFASetup)
			r.Post("/mfa/enable", authHandler.HandleMFAEnable)
			r.Post("/mfa/disable", authHandler.HandleMFADisable)
			r.Post("/request-reset", authHandler.HandleRequestReset)
			r.Post("/reset", authHandler.HandleResetPassword)
		})

		corehandler.NewHandler(coreSvc, authStore, auditSvc).RegisterRoutes(r)
		skillshandler.NewHandler(skillsSvc, coreSvc, authStore, notifySvc, auditSvc).RegisterRoutes(r)
		levelmovehandler.NewHandler(movementSvc, skillsSvc, coreSvc, authStore, notifySvc, auditSvc, idemStore, cfg.ReadinessThreshold).RegisterRoutes(r)
		courseshandler.NewHandler(coursesSvc, coreSvc, authStore, notifySvc, auditSvc).RegisterRoutes(r)
		reconciliationhandler.NewHandler(reconSvc, authStore, auditSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, skillsSvc, coreSvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
	})

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Metrics:  collector,
		Jobs:     jobsSvc,
		stopJobs: stopJobs,
	}, nil
}

func (a *App) Close() {
	if a.stopJobs != nil {
		a.stopJobs()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run builds the app from environment config and serves until the
// process exits.
func Run() {
	cfg := config.Load()
	ctx := context.Background()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		return
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "err", err)
	}
}
