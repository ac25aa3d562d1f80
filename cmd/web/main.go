package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/drsite/drsite-web/config"
	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/handlers"
	"github.com/drsite/drsite-web/internal/notify"
	"github.com/drsite/drsite-web/internal/page"
	"github.com/drsite/drsite-web/internal/repository"
	"github.com/drsite/drsite-web/internal/services"
	"github.com/drsite/drsite-web/internal/web"
	"github.com/drsite/drsite-web/pkg/db"
	"github.com/drsite/drsite-web/pkg/httpclient"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"github.com/drsite/drsite-web/pkg/profiling"
	"github.com/drsite/drsite-web/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting DR Site web",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("submission_mode", cfg.Submission.Mode),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Continuous profiling (opt-in)
	profilerStop, err := profiling.InitProfiler(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to initialize profiler", zap.Error(err))
	}
	defer profilerStop()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics(ctx.Done())

	if err := registerValidations(); err != nil {
		logger.Fatal("Failed to register validations", zap.Error(err))
	}

	renderer, err := web.NewRenderer(cfg.Site.Lang)
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}
	definitions, err := web.Definitions()
	if err != nil {
		logger.Fatal("Failed to load form definitions", zap.Error(err))
	}

	// Initialize HTTP client for external calls
	httpClient := httpclient.NewStandardClient(cfg.Submission.Timeout)

	// PostgreSQL is only needed when submissions are stored
	var pool *pgxpool.Pool
	var submissionRepo repository.SubmissionRepositoryInterface
	if cfg.Submission.Mode == config.SubmissionDatabase {
		pool, err = db.NewPool(ctx, db.PoolConfig{
			URL:        cfg.Database.URL,
			MaxConns:   cfg.Database.MaxConns,
			MinConns:   cfg.Database.MinConns,
			CACertPath: cfg.Database.CACertPath,
		})
		if err != nil {
			logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
		}
		defer db.Close(pool)
		// Migrations run separately via the migrate command
		submissionRepo = repository.NewSubmissionRepository(pool)
	}

	delivery, err := services.NewDelivery(cfg, submissionRepo, httpClient)
	if err != nil {
		logger.Fatal("Failed to initialize submission delivery", zap.Error(err))
	}
	submissionService := services.NewSubmissionService(cfg, delivery, httpClient)

	store := page.NewStore(page.Config{
		Forms:     definitions,
		Renderer:  renderer,
		Submitter: submissionService,
		Timing: forms.Timing{
			MinBusy:       cfg.Timing.MinBusy,
			RedirectDelay: cfg.Timing.RedirectDelay,
			SubmitTimeout: cfg.Submission.Timeout,
		},
		Notices: notify.Options{
			TTL:  cfg.Timing.NoticeTTL,
			Fade: cfg.Timing.NoticeFade,
		},
		RedirectURL: cfg.Site.RedirectURL,
		OutboxSize:  cfg.Session.OutboxSize,
		TTL:         cfg.Session.TTL,
	})

	logsHandler, err := handlers.NewLogsHandler(cfg.Logging.Dir)
	if err != nil {
		logger.Warn("Frontend log intake disabled", zap.Error(err))
		logsHandler = nil
	}

	var ready func() error
	if pool != nil {
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx)
		}
	}

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := newRouter(ctx, routerDeps{
		cfg:         cfg,
		renderer:    renderer,
		definitions: definitions,
		store:       store,
		submissions: submissionService,
		logs:        logsHandler,
		ready:       ready,
	})

	// WriteTimeout stays unset: page streams are long-lived responses
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Closing the sessions ends every open page stream
	store.Close()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
