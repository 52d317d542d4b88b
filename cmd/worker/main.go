package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/config"
	"github.com/dvloznov/budget-report/internal/gcs"
	infraBQ "github.com/dvloznov/budget-report/internal/infra/bigquery"
	"github.com/dvloznov/budget-report/internal/jobs"
	"github.com/dvloznov/budget-report/internal/jobs/inmemory"
	"github.com/dvloznov/budget-report/internal/logger"
	"github.com/dvloznov/budget-report/internal/pipeline"
	"github.com/dvloznov/budget-report/internal/render"
)

// worker builds reports for many ledgers at once through the job queue and
// prints one summary line per source.
func main() {
	timeout := flag.Duration("timeout", 10*time.Minute, "Give up on unfinished jobs after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err := logger.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log = logger.New()
		log.Fatal().Err(err).Msg("Invalid log settings")
	}

	sources := flag.Args()
	if len(sources) == 0 {
		log.Fatal().Msg("Usage: worker [-timeout D] SOURCE...")
	}

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()
	ctx = logger.WithContext(ctx, log)

	opener := pipeline.Opener{AllowFiles: true}
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
	}

	// Initialize job store and queue
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(inmemory.Options{
		Buffer:     len(sources),
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
	}, jobStore, log)

	if err := jobQueue.Start(ctx, pipeline.NewReportJobHandler(opener, categorize.New(), jobStore)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	ids := make([]string, 0, len(sources))
	for _, src := range sources {
		job := &jobs.ReportJob{Source: src}
		if err := jobQueue.PublishReport(ctx, job); err != nil {
			log.Fatal().Err(err).Str("source", src).Msg("Failed to enqueue job")
		}
		ids = append(ids, job.JobID)
	}

	log.Info().Int("jobs", len(ids)).Msg("Waiting for jobs...")
	finished := waitForJobs(ctx, jobStore, ids)

	// Stop the queue and wait for in-flight jobs
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	failed := 0
	for _, id := range ids {
		job, err := jobStore.GetJob(context.Background(), id)
		if err != nil {
			continue
		}
		switch job.Status {
		case jobs.JobStatusCompleted:
			bundle, err := jobStore.GetResult(context.Background(), id)
			if err != nil {
				failed++
				continue
			}
			fmt.Printf("%-10s %s\t%d transactions\tTotal Expenses %s\n",
				job.Status, job.Source, len(bundle.Transactions),
				render.FormatAmount(bundle.TotalExpenses, cfg.Presentation.CurrencySymbol))
		default:
			failed++
			fmt.Printf("%-10s %s\t%s\n", job.Status, job.Source, job.Error)
		}
	}

	if !finished || failed > 0 {
		os.Exit(1)
	}
}

// waitForJobs polls the store until every job is completed or failed. It
// reports false if ctx ends first.
func waitForJobs(ctx context.Context, store jobs.JobStore, ids []string) bool {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		done := true
		for _, id := range ids {
			job, err := store.GetJob(ctx, id)
			if err != nil || (job.Status != jobs.JobStatusCompleted && job.Status != jobs.JobStatusFailed) {
				done = false
				break
			}
		}
		if done {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}
