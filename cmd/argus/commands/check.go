package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/argus/internal/contracts"
	"github.com/wonny/argus/internal/ingest"
	"github.com/wonny/argus/internal/report"
	"github.com/wonny/argus/internal/validate"
	"github.com/wonny/argus/pkg/config"
	"github.com/wonny/argus/pkg/database"
	"github.com/wonny/argus/pkg/logger"
)

var (
	minSeverity string
	jsonOutput  bool
	saveRun     bool
)

// checkCmd represents the one-shot validation command
var checkCmd = &cobra.Command{
	Use:   "check <snapshot.csv>",
	Short: "Validate one portfolio snapshot file",
	Long: `Loads a CSV snapshot, runs every detector and prints the findings
ranked by severity.

Exit code is 0 even when findings exist; findings are review items,
not failures. Only unreadable input is an error.

Example:
  go run ./cmd/argus check positions.csv
  go run ./cmd/argus check positions.csv --min-severity High --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&minSeverity, "min-severity", "", "only report findings at or above this severity (Low|Medium|High)")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit findings as JSON instead of text")
	checkCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run to the database (requires DATABASE_URL)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	min, err := parseSeverity(minSeverity)
	if err != nil {
		return err
	}

	loader, err := ingest.NewLoader(args[0])
	if err != nil {
		return err
	}
	snap, err := loader.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	runner := validate.NewRunner(log, cfg.Validate.Workers)
	findings := runner.Run(ctx, snap)

	if saveRun {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		runID, err := report.NewRepository(db.Pool).SaveRun(ctx, args[0], findings)
		if err != nil {
			return err
		}
		log.WithField("run_id", runID).Info("Findings persisted")
	}

	filtered := report.FilterBySeverity(findings, min)
	if jsonOutput {
		sorted := make([]contracts.Finding, len(filtered))
		copy(sorted, filtered)
		contracts.SortFindings(sorted)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sorted)
	}
	return report.WriteText(os.Stdout, filtered)
}

// parseSeverity maps the flag value to a Severity; empty means no filter.
func parseSeverity(s string) (contracts.Severity, error) {
	switch s {
	case "":
		return "", nil
	case "Low", "low":
		return contracts.SeverityLow, nil
	case "Medium", "medium":
		return contracts.SeverityMedium, nil
	case "High", "high":
		return contracts.SeverityHigh, nil
	default:
		return "", fmt.Errorf("invalid severity %q: must be Low, Medium or High", s)
	}
}
