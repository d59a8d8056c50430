package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"payrolldocs/internal/domain/audit"
	"payrolldocs/internal/domain/auth"
	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/memberform"
	"payrolldocs/internal/domain/statements"
	"payrolldocs/internal/platform/config"
	"payrolldocs/internal/platform/crypto"
	"payrolldocs/internal/platform/db"
	"payrolldocs/internal/platform/jobs"
	"payrolldocs/internal/platform/logger"
	"payrolldocs/internal/platform/metrics"
	"payrolldocs/internal/platform/storage"
	"payrolldocs/internal/refno"
	"payrolldocs/internal/render"
	"payrolldocs/internal/transport/http/api"
	audithandler "payrolldocs/internal/transport/http/handlers/audit"
	documentshandler "payrolldocs/internal/transport/http/handlers/documents"
	jobshandler "payrolldocs/internal/transport/http/handlers/jobs"
	memberformhandler "payrolldocs/internal/transport/http/handlers/memberform"
	referenceshandler "payrolldocs/internal/transport/http/handlers/references"
	"payrolldocs/internal/transport/http/middleware"
	"payrolldocs/migrations"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Config      config.Config
	Companies   company.StoreAPI
	Docs        *statements.Service
	Forms       *memberform.Service
	References  *refno.Service
	Jobs        *jobs.Service
	Archive     *storage.Archive
	Idempotency *middleware.IdempotencyStore
	Audit       audit.Log
	Metrics     *metrics.Collector
	Ready       func(ctx context.Context) error
	Log         zerolog.Logger
}

// NewDeps builds the document services on top of a record store and a job
// run log.
func NewDeps(cfg config.Config, store company.StoreAPI, runs jobs.RunStore, appLog zerolog.Logger) (Deps, error) {
	collector := metrics.New()
	var observer statements.RenderObserver
	if cfg.MetricsEnabled {
		observer = collector
	}
	docs := statements.NewService(store, render.NewPDFRenderer(), statements.Options{
		Concurrency: cfg.RenderConcurrency,
		Logger:      appLog,
		Observer:    observer,
	})

	forms, err := memberform.Load(cfg.MemberFormLayout, cfg.MemberFormTemplate)
	if err != nil {
		return Deps{}, err
	}

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return Deps{}, err
	}

	fetcher := refno.NewBrowserFetcher(refno.BrowserConfig{
		PortalURL:  cfg.ReferencePortalURL,
		ControlURL: cfg.ReferenceBrowser,
		Timeout:    cfg.ReferenceTimeout,
	})

	return Deps{
		Config:      cfg,
		Companies:   store,
		Docs:        docs,
		Forms:       forms,
		References:  refno.NewService(store, fetcher, appLog),
		Jobs:        jobs.New(runs, appLog),
		Archive:     storage.NewArchive(cfg.StorageDir, sealer),
		Audit:       audit.NewMemoryStore(),
		Idempotency: middleware.NewMemoryIdempotencyStore(),
		Metrics:     collector,
		Log:         appLog,
	}, nil
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(d.Log, d.Metrics))
	router.Use(middleware.Recoverer(d.Log))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", documentshandler.DegradationsHeader, middleware.RequestIDHeader},
		MaxAge:         300,
	}).Handler)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, d.Log))

		documentshandler.NewHandler(d.Docs, d.Companies, d.Log).RegisterRoutes(r)
		memberformhandler.NewHandler(d.Forms, d.Audit, d.Log).RegisterRoutes(r)
		referenceshandler.NewHandler(d.References, d.Audit, d.Log).RegisterRoutes(r)
		jobshandler.NewHandler(d.Jobs, d.Docs, d.Archive, d.Idempotency, d.Audit, d.Log).RegisterRoutes(r)
		audithandler.NewHandler(d.Audit, d.Log).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(auth.PermMetricsRead)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				api.Success(w, d.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
			})
		}
	})

	return router
}

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
	Jobs   *jobs.Service
	cancel context.CancelFunc
}

// New connects to the database, applies migrations when enabled and starts
// the job worker.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	appLog := logger.WithComponent("server")

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrations.Files); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	deps, err := NewDeps(cfg, company.NewStore(pool), jobs.NewPGRunStore(pool), appLog)
	if err != nil {
		pool.Close()
		return nil, err
	}
	deps.Idempotency = middleware.NewIdempotencyStore(pool)
	deps.Audit = audit.NewStore(pool)
	deps.Ready = pool.Ping

	workerCtx, cancel := context.WithCancel(context.Background())
	deps.Jobs.Start(workerCtx)

	return &App{
		Config: cfg,
		DB:     pool,
		Router: NewRouter(deps),
		Jobs:   deps.Jobs,
		cancel: cancel,
	}, nil
}

func (a *App) Close() {
	a.cancel()
	a.Jobs.Wait()
	a.DB.Close()
}

// Run serves the API until SIGINT or SIGTERM.
func Run() error {
	cfg := config.Load()
	if err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("payroll document server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
