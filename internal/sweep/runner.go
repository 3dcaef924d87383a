package sweep

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/bitmapbench/internal/monitoring"
	"github.com/banshee-data/bitmapbench/internal/probe"
	"github.com/banshee-data/bitmapbench/internal/timeutil"
)

// Status represents the current state of a batch.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// ErrHeaderChanged is returned when a Runner that already wrote a header is
// asked to run a plan with different columns.
var ErrHeaderChanged = errors.New("sweep: plan columns differ from the header already written")

// State holds the progress of the current batch.
type State struct {
	Status      Status     `json:"status"`
	Mode        string     `json:"mode,omitempty"`
	Total       int        `json:"total"`
	Completed   int        `json:"completed"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Summary describes the measured times of a finished batch.
type Summary struct {
	Trials int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Wall   time.Duration
}

// Runner executes plans against a probe builder and writes every row to a
// sink. Builds are cached per option set for the life of the Runner.
type Runner struct {
	builder probe.Builder
	sink    Sink
	clock   timeutil.Clock

	// ProgressEvery controls how often progress is logged; zero logs every
	// tenth of the batch.
	ProgressEvery int

	mu     sync.RWMutex
	state  State
	header []string
	builds map[probe.BuildOptions]probe.Runner
}

// NewRunner creates a runner.
func NewRunner(builder probe.Builder, sink Sink) *Runner {
	return &Runner{
		builder: builder,
		sink:    sink,
		clock:   timeutil.RealClock{},
		state:   State{Status: StatusIdle},
		builds:  make(map[probe.BuildOptions]probe.Runner),
	}
}

// SetClock replaces the clock used for state timestamps.
func (r *Runner) SetClock(c timeutil.Clock) { r.clock = c }

// State returns a snapshot of the current batch state.
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Builds returns how many distinct builds have been prepared.
func (r *Runner) Builds() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.builds)
}

// Run executes n trials of plan. Any build, probe or sink failure aborts the
// batch; rows written before the failure are kept.
func (r *Runner) Run(ctx context.Context, plan Plan, n int, rng *rand.Rand) (Summary, error) {
	start := r.clock.Now()
	r.mu.Lock()
	r.state = State{Status: StatusRunning, Mode: plan.Mode(), Total: n, StartedAt: &start}
	r.mu.Unlock()

	times, err := r.run(ctx, plan, n, rng)

	end := r.clock.Now()
	r.mu.Lock()
	r.state.CompletedAt = &end
	if err != nil {
		r.state.Status = StatusError
		r.state.Error = err.Error()
	} else {
		r.state.Status = StatusComplete
	}
	r.mu.Unlock()

	return summarize(times, end.Sub(start)), err
}

func (r *Runner) run(ctx context.Context, plan Plan, n int, rng *rand.Rand) ([]float64, error) {
	if err := r.writeHeader(plan.Header()); err != nil {
		return nil, err
	}

	every := r.ProgressEvery
	if every <= 0 {
		every = max(n/10, 1)
	}

	times := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return times, err
		}
		trial, err := plan.Next(rng)
		if err != nil {
			return times, fmt.Errorf("trial %d: %w", i, err)
		}
		trial.Seq = i

		exe, err := r.build(ctx, trial.Build)
		if err != nil {
			return times, fmt.Errorf("trial %d: build %s: %w", i, trial.Build.Key(), err)
		}
		elapsed, err := exe.Run(ctx, trial.Args)
		if err != nil {
			return times, fmt.Errorf("trial %d: %w", i, err)
		}

		row := append([]string{strconv.FormatFloat(elapsed, 'f', -1, 64)}, trial.Fields...)
		if err := r.sink.WriteRow(row); err != nil {
			return times, fmt.Errorf("trial %d: write: %w", i, err)
		}
		times = append(times, elapsed)

		r.mu.Lock()
		r.state.Completed = i + 1
		r.mu.Unlock()

		monitoring.Debugf("trial %d: %v", i, trial.Fields)
		if (i+1)%every == 0 || i+1 == n {
			monitoring.Logf("%d/%d", i+1, n)
		}
	}
	return times, r.sink.Flush()
}

func (r *Runner) writeHeader(cols []string) error {
	header := append([]string{"time"}, cols...)
	if r.header != nil {
		if !slices.Equal(r.header, header) {
			return ErrHeaderChanged
		}
		return nil
	}
	if err := r.sink.WriteHeader(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	r.header = header
	return nil
}

func (r *Runner) build(ctx context.Context, opts probe.BuildOptions) (probe.Runner, error) {
	r.mu.RLock()
	exe, ok := r.builds[opts]
	r.mu.RUnlock()
	if ok {
		return exe, nil
	}
	exe, err := r.builder.Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.builds[opts] = exe
	r.mu.Unlock()
	return exe, nil
}

func summarize(times []float64, wall time.Duration) Summary {
	s := Summary{Trials: len(times), Wall: wall}
	if len(times) == 0 {
		return s
	}
	s.Min = floats.Min(times)
	s.Max = floats.Max(times)
	if len(times) < 2 {
		s.Mean = times[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(times, nil)
	return s
}
