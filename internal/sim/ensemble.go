package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/chime/internal/arena"
)

// Job is one headless run: Frames fixed steps of Dt on World.
type Job struct {
	World     *arena.Simulation
	Dt        float64
	Frames    int
	Observers []Observer
}

// Ensemble runs independent jobs on a bounded number of goroutines. Jobs
// must not share a Simulation or an Observer.
type Ensemble struct {
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{workers: workers}
}

func (e *Ensemble) Workers() int { return e.workers }

// Run executes every job and returns the first failure. Remaining jobs are
// cancelled once one fails.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := runJob(gctx, jobs[i]); err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func runJob(ctx context.Context, j Job) error {
	if !(j.Dt > 0) || math.IsInf(j.Dt, 1) || j.Frames < 1 {
		return fmt.Errorf("%w: job needs dt > 0 and frames >= 1", ErrInvalidConfig)
	}
	s, err := New(j.World, NewStepClock(j.Dt), nil, nil, Config{MaxDt: j.Dt, MaxFrames: j.Frames})
	if err != nil {
		return err
	}
	for _, o := range j.Observers {
		s.AddObserver(o)
	}
	return s.Run(ctx)
}
