package validate

import (
	"context"
	"sync"

	"github.com/wonny/argus/internal/contracts"
	"github.com/wonny/argus/pkg/logger"
)

// Detector is any component that turns a snapshot into findings. A
// detector must be stateless and must not mutate the snapshot: its output
// is a pure function of the two input tables.
type Detector interface {
	Name() string
	Evaluate(snap *contracts.Snapshot) []contracts.Finding
}

// Runner fans a snapshot out to every registered detector and merges the
// finding lists back in registry order, so a run is deterministic no
// matter how the workers are scheduled.
type Runner struct {
	detectors []Detector
	workers   int
	logger    *logger.Logger
}

// NewRunner creates a runner over the standard detector set.
func NewRunner(log *logger.Logger, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		detectors: []Detector{
			NewCompletenessDetector(),
			NewPriceSpikeDetector(),
			NewCalculationDetector(),
			NewConsistencyDetector(),
			NewReconciliationDetector(),
			NewFXConsistencyDetector(),
			NewWeightDetector(),
			NewStaticDataDetector(),
		},
		workers: workers,
		logger:  log.WithField("component", "validate.runner"),
	}
}

// Detectors returns the registry in execution order.
func (r *Runner) Detectors() []Detector {
	return r.detectors
}

// Run evaluates every detector against the snapshot and concatenates
// their findings. Detectors are independent, so they run on a bounded
// worker pool; a cancelled context stops detectors that have not started
// yet, but never truncates a detector's own output.
func (r *Runner) Run(ctx context.Context, snap *contracts.Snapshot) []contracts.Finding {
	results := make([][]contracts.Finding, len(r.detectors))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.detectors[i].Evaluate(snap)
			}
		}()
	}

	for i := range r.detectors {
		select {
		case <-ctx.Done():
			r.logger.Warn("context cancelled, skipping remaining detectors")
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	var findings []contracts.Finding
	for i, d := range r.detectors {
		findings = append(findings, results[i]...)
		r.logger.WithFields(map[string]interface{}{
			"detector": d.Name(),
			"findings": len(results[i]),
		}).Debug("Detector completed")
	}

	r.logger.WithFields(map[string]interface{}{
		"positions": len(snap.Positions),
		"trades":    len(snap.Trades),
		"findings":  len(findings),
	}).Info("Validation run completed")

	return findings
}
