package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/gcs"
	"github.com/dvloznov/budget-report/internal/jobs"
	"github.com/dvloznov/budget-report/internal/ledger"
	"github.com/dvloznov/budget-report/internal/logger"
)

// NewReportJobHandler returns a handler that builds the report for a
// ReportJob and stores it as the job's result. Invalid URIs, oversized
// ledgers and ledger data errors are permanent; everything else is retried
// by the queue.
func NewReportJobHandler(opener Opener, c *categorize.Categorizer, store jobs.JobStore) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		rj, ok := job.(*jobs.ReportJob)
		if !ok {
			return jobs.Permanent(fmt.Errorf("unsupported job type %s", job.GetType()))
		}

		log := logger.FromContext(ctx).With().Str("job_id", rj.JobID).Str("source", rj.Source).Logger()
		ctx = logger.WithContext(ctx, log)

		src, err := opener.Open(ctx, rj.Source)
		if err != nil {
			return jobs.Permanent(err)
		}

		bundle, err := BuildReport(ctx, c, src)
		if err != nil {
			if isPermanentBuildError(err) {
				return jobs.Permanent(err)
			}
			return err
		}

		if err := store.SaveResult(ctx, rj.JobID, bundle); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		log.Info().Int("records", len(bundle.Transactions)).Msg("report built")
		return nil
	}
}

func isPermanentBuildError(err error) bool {
	return ledger.IsDataError(err) ||
		errors.Is(err, gcs.ErrObjectTooLarge) ||
		errors.Is(err, ledger.ErrTooLarge)
}
