package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/convdiff/internal/grid"
	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/physics"
)

// Job is one independent march inside an Ensemble.
type Job struct {
	Name   string
	Model  *physics.Model
	Solver linalg.Solver
	Grid   *grid.Grid
	Dx, Dt float64
}

// Ensemble runs jobs concurrently, one goroutine per job. Jobs must not
// share grids.
type Ensemble struct {
	metrics func() []Metric
}

// NewEnsemble returns an ensemble. newMetrics, when non-nil, is called once
// per job so metric state is never shared between goroutines.
func NewEnsemble(newMetrics func() []Metric) *Ensemble {
	return &Ensemble{metrics: newMetrics}
}

func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			job := jobs[idx]
			if job.Model == nil {
				errs[idx] = fmt.Errorf("job %s: %w", job.Name, physics.ErrInvalidModel)
				return
			}
			m := New(job.Model.Clone(), job.Solver)
			if e.metrics != nil {
				for _, metric := range e.metrics() {
					m.AddMetric(metric)
				}
			}
			res, err := m.Run(ctx, job.Grid, job.Dx, job.Dt)
			results[idx] = res
			if err != nil {
				errs[idx] = fmt.Errorf("job %s: %w", job.Name, err)
			}
		}(i)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return results, err
	}
	return results, nil
}
