package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/argus/internal/report"
	"github.com/wonny/argus/internal/scheduler"
	"github.com/wonny/argus/internal/scheduler/jobs"
	"github.com/wonny/argus/internal/validate"
	"github.com/wonny/argus/pkg/config"
	"github.com/wonny/argus/pkg/database"
	"github.com/wonny/argus/pkg/logger"
)

var runNow bool

// scheduleCmd represents the recurring validation daemon
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-validate the configured snapshot on a cron schedule",
	Long: `Runs the validation job on the cron schedule from SCHEDULE_CRON,
re-reading SCHEDULE_SNAPSHOT_PATH on each run. With DATABASE_URL set,
each run's findings are persisted; otherwise they are only logged.

Example:
  SCHEDULE_SNAPSHOT_PATH=positions.csv go run ./cmd/argus schedule`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "run the job once immediately on startup")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	if cfg.Schedule.SnapshotPath == "" {
		return fmt.Errorf("SCHEDULE_SNAPSHOT_PATH is not set")
	}

	var repo *report.Repository
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		repo = report.NewRepository(db.Pool)
	} else {
		log.Warn("DATABASE_URL not set; findings will be logged but not persisted")
	}

	runner := validate.NewRunner(log, cfg.Validate.Workers)
	job := jobs.NewValidationJob(cfg.Schedule.SnapshotPath, cfg.Schedule.Cron, runner, repo, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if runNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	return nil
}
