// Package report handles what happens to findings after a run: database
// persistence and human-readable summaries.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/argus/internal/contracts"
)

// Repository persists validation runs and their findings.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a findings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a completed validation run and all its findings in one
// transaction. Re-running the same snapshot replaces the previous run's
// findings instead of accumulating duplicates.
func (r *Repository) SaveRun(ctx context.Context, snapshotPath string, findings []contracts.Finding) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO audit.validation_runs (snapshot_path, run_at, finding_count)
		VALUES ($1, NOW(), $2)
		RETURNING id
	`, snapshotPath, len(findings)).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert validation run: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM audit.validation_findings
		WHERE run_id IN (
			SELECT id FROM audit.validation_runs
			WHERE snapshot_path = $1 AND id <> $2
		)
	`, snapshotPath, runID)
	if err != nil {
		return 0, fmt.Errorf("clear previous findings: %w", err)
	}

	batch := &pgx.Batch{}
	for _, f := range findings {
		batch.Queue(`
			INSERT INTO audit.validation_findings (
				run_id, finding_date, ticker, issue_type, description, severity
			) VALUES ($1, $2, $3, $4, $5, $6)
		`, runID, nullableDate(f.Date), f.Ticker, f.Type, f.Description, string(f.Severity))
	}

	br := tx.SendBatch(ctx, batch)
	for range findings {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, fmt.Errorf("insert finding: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close finding batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}

	return runID, nil
}

// GetFindings retrieves the findings of one run, optionally filtered by
// minimum severity, in the engine's canonical order.
func (r *Repository) GetFindings(ctx context.Context, runID int64, minSeverity contracts.Severity) ([]contracts.Finding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT finding_date, ticker, issue_type, description, severity
		FROM audit.validation_findings
		WHERE run_id = $1
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var findings []contracts.Finding
	for rows.Next() {
		var f contracts.Finding
		var date *time.Time
		var severity string
		if err := rows.Scan(&date, &f.Ticker, &f.Type, &f.Description, &severity); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if date != nil {
			f.Date = *date
		}
		f.Severity = contracts.Severity(severity)
		if f.Severity.Rank() < minSeverity.Rank() {
			continue
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}

	return findings, nil
}

// GetLatestRun retrieves the most recent run ID for a snapshot path.
func (r *Repository) GetLatestRun(ctx context.Context, snapshotPath string) (int64, time.Time, error) {
	var runID int64
	var runAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT id, run_at
		FROM audit.validation_runs
		WHERE snapshot_path = $1
		ORDER BY run_at DESC
		LIMIT 1
	`, snapshotPath).Scan(&runID, &runAt)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("get latest run: %w", err)
	}
	return runID, runAt, nil
}

// nullableDate maps the zero time to SQL NULL so findings on rows with
// unparseable dates survive a round trip.
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
