// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/argus/internal/contracts"
	"github.com/wonny/argus/internal/ingest"
	"github.com/wonny/argus/internal/report"
	"github.com/wonny/argus/internal/validate"
	"github.com/wonny/argus/pkg/logger"
)

// ValidationJob re-validates the configured snapshot file on a schedule.
// Each run re-reads the file from disk, so an overwritten export is
// picked up without a restart.
type ValidationJob struct {
	snapshotPath string
	schedule     string
	runner       *validate.Runner
	repo         *report.Repository // nil means log-only, no persistence
	logger       *logger.Logger
}

// NewValidationJob creates the scheduled validation job. repo may be nil.
func NewValidationJob(snapshotPath, schedule string, runner *validate.Runner, repo *report.Repository, log *logger.Logger) *ValidationJob {
	return &ValidationJob{
		snapshotPath: snapshotPath,
		schedule:     schedule,
		runner:       runner,
		repo:         repo,
		logger:       log,
	}
}

func (j *ValidationJob) Name() string { return "snapshot_validation" }

func (j *ValidationJob) Schedule() string { return j.schedule }

// Run loads the snapshot, evaluates every detector, and stores the
// findings when a repository is configured.
func (j *ValidationJob) Run(ctx context.Context) error {
	loader, err := ingest.NewLoader(j.snapshotPath)
	if err != nil {
		return fmt.Errorf("validation job: %w", err)
	}

	snap, err := loader.Load()
	if err != nil {
		return fmt.Errorf("validation job: %w", err)
	}

	findings := j.runner.Run(ctx, snap)
	counts := contracts.CountBySeverity(findings)

	j.logger.WithFields(map[string]interface{}{
		"snapshot": j.snapshotPath,
		"rows":     len(snap.Positions),
		"findings": len(findings),
		"high":     counts[contracts.SeverityHigh],
		"medium":   counts[contracts.SeverityMedium],
		"low":      counts[contracts.SeverityLow],
	}).Info("Scheduled validation completed")

	if j.repo == nil {
		return nil
	}

	runID, err := j.repo.SaveRun(ctx, j.snapshotPath, findings)
	if err != nil {
		return fmt.Errorf("validation job: persist findings: %w", err)
	}
	j.logger.WithField("run_id", runID).Info("Findings persisted")

	return nil
}
