// Package sweep runs batches of elections over shapes and seeds on a bounded worker pool.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"amoebot/internal/election"
	"amoebot/internal/shapes"
	"amoebot/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is one trial to run.
type Job struct {
	Shape string
	Size  int
	Fill  float64
	Seed  int64
}

// Plan expands shapes x seeds into jobs, seeds counting up from offset+1.
func Plan(shapeNames []string, size int, fill float64, seeds int, offset int64) []Job {
	jobs := make([]Job, 0, len(shapeNames)*max(seeds, 0))
	for _, name := range shapeNames {
		for i := 1; i <= seeds; i++ {
			jobs = append(jobs, Job{Shape: name, Size: size, Fill: fill, Seed: offset + int64(i)})
		}
	}
	return jobs
}

// Recorder persists finished trials.
type Recorder interface {
	Record(ctx context.Context, t *store.Trial) error
}

// Options configures a sweep.
type Options struct {
	Workers int
	// Budget caps activations per trial; zero means unlimited.
	Budget   int64
	Recorder Recorder
	Logger   *zap.Logger
}

// Report collects the outcome of a sweep in job order.
type Report struct {
	SweepID  string
	Trials   []store.Trial
	Failures int
	Elapsed  time.Duration
}

// Failed reports whether a trial did not end with exactly one leader.
func Failed(t store.Trial) bool {
	return t.Err != "" || !t.Terminated || t.Leaders != 1
}

// Run executes jobs with at most opts.Workers in flight. Trial failures are recorded in
// the report; only context cancellation and recorder errors abort the sweep.
func Run(ctx context.Context, jobs []Job, opts Options) (Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := max(opts.Workers, 1)
	report := Report{SweepID: uuid.NewString(), Trials: make([]store.Trial, len(jobs))}
	start := time.Now()

	log.Info("sweep started",
		zap.String("sweep", report.SweepID),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			trial, err := RunTrial(gctx, job, opts.Budget, log)
			if err != nil {
				return err
			}
			trial.SweepID = report.SweepID
			if opts.Recorder != nil {
				if err := opts.Recorder.Record(gctx, &trial); err != nil {
					return err
				}
			}
			report.Trials[i] = trial
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, t := range report.Trials {
		if Failed(t) {
			report.Failures++
		}
	}
	report.Elapsed = time.Since(start)
	log.Info("sweep finished",
		zap.String("sweep", report.SweepID),
		zap.Int("failures", report.Failures),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// RunTrial runs one job to termination. The returned error is non-nil only when ctx
// ends the run; protocol failures are reported in the trial.
func RunTrial(ctx context.Context, job Job, budget int64, log *zap.Logger) (trial store.Trial, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	trial = store.Trial{Shape: job.Shape, Size: job.Size, Fill: job.Fill, Seed: job.Seed}
	start := time.Now()
	defer func() {
		trial.Duration = time.Since(start)
	}()

	nodes, err := shapes.Build(shapes.Spec{Name: job.Shape, Size: job.Size, Fill: job.Fill, Seed: job.Seed})
	if err != nil {
		trial.Err = err.Error()
		return trial, nil
	}
	sys, err := election.NewSystem(nodes, election.WithSeed(job.Seed), election.WithLogger(log))
	if err != nil {
		trial.Err = err.Error()
		return trial, nil
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var inv *election.InvariantError
		if e, ok := r.(error); ok && errors.As(e, &inv) {
			log.Error("protocol invariant violated",
				zap.String("shape", job.Shape),
				zap.Int64("seed", job.Seed),
				zap.Error(inv),
			)
			trial.FromMetrics(sys.Metrics())
			trial.Err = inv.Error()
			err = nil
			return
		}
		panic(r)
	}()

	runErr := sys.Run(ctx, budget)
	trial.FromMetrics(sys.Metrics())
	switch {
	case runErr == nil:
	case errors.Is(runErr, election.ErrBudgetExhausted):
		trial.Err = runErr.Error()
	default:
		return trial, fmt.Errorf("trial %s/%d: %w", job.Shape, job.Seed, runErr)
	}
	if Failed(trial) {
		log.Warn("trial failed",
			zap.String("shape", job.Shape),
			zap.Int64("seed", job.Seed),
			zap.Int("leaders", trial.Leaders),
			zap.String("err", trial.Err),
		)
	}
	return trial, nil
}
