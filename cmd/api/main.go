package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dvloznov/budget-report/internal/api/handlers"
	"github.com/dvloznov/budget-report/internal/api/middleware"
	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/config"
	"github.com/dvloznov/budget-report/internal/gcs"
	infraBQ "github.com/dvloznov/budget-report/internal/infra/bigquery"
	"github.com/dvloznov/budget-report/internal/jobs/inmemory"
	"github.com/dvloznov/budget-report/internal/logger"
	"github.com/dvloznov/budget-report/internal/pipeline"
	"github.com/dvloznov/budget-report/internal/session"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log, err := logger.Configure(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid log settings")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Remote ledger backends are optional; jobs for an unavailable scheme
	// are rejected at submission.
	opener := pipeline.Opener{}

	storageClient, err := gcs.NewClient(ctx, cfg.Server.MaxUploadBytes)
	if err != nil {
		log.Warn().Err(err).Msg("Cloud Storage unavailable - gs:// sources disabled")
	} else {
		defer storageClient.Close()
		opener.Storage = storageClient
	}

	if cfg.BigQuery.Project != "" {
		repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, cfg.BigQuery.Project)
		if err != nil {
			log.Warn().Err(err).Msg("BigQuery unavailable - bq:// sources disabled")
		} else {
			defer repo.Close()
			opener.BigQuery = repo
		}
	} else {
		log.Info().Msg("No BigQuery project configured - bq:// sources disabled")
	}

	categorizer := categorize.New()

	// Session store with background janitor
	sessions := session.NewStore(cfg.Session.MaxEntries, cfg.Session.TTL, log)
	janitorCtx, cancelJanitor := context.WithCancel(ctx)
	defer cancelJanitor()
	go sessions.RunJanitor(janitorCtx, cfg.Session.CleanupInterval)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(inmemory.Options{
		Buffer:     cfg.Jobs.Buffer,
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
	}, jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(logger.WithContext(ctx, log))
	defer cancelWorker()

	log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, pipeline.NewReportJobHandler(opener, categorizer, jobStore)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	// Initialize handlers
	router := handlers.Router{
		Meta:    handlers.NewMetaHandler(cfg.Presentation),
		Rules:   handlers.NewRulesHandler(categorizer, log),
		Reports: handlers.NewReportsHandler(categorizer, sessions, cfg.Server.MaxUploadBytes, log),
		Jobs:    handlers.NewJobsHandler(jobStore, jobQueue, opener, log),
	}

	// Apply middleware
	handler := middleware.Chain(router.Mux(),
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS(cfg.Server.AllowedOrigin),
		middleware.MaxBytes(cfg.Server.MaxUploadBytes),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	cancelJanitor()

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
