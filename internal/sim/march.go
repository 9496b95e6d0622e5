package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/convdiff/internal/grid"
	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/logging"
	"github.com/san-kum/convdiff/internal/physics"
)

// Marcher advances a grid with the Crank-Nicolson scheme
//
//	row[t] = ((I - dt/2·D(t-1))·row[t-1] + f·dt) / (I + dt/2·D(t))
//
// where D is the assembled spatial operator and the division is the
// configured linear solver.
type Marcher struct {
	model     *physics.Model
	solver    linalg.Solver
	metrics   []Metric
	observers []Observer

	// ValidateState stops the march at the first time level holding NaN or
	// Inf.
	ValidateState bool
}

// New returns a marcher for m. A nil solver selects Gauss-Seidel with the
// default sweep budget.
func New(m *physics.Model, solver linalg.Solver) *Marcher {
	if solver == nil {
		solver = linalg.NewGaussSeidel(linalg.DefaultMaxIterations, 0)
	}
	return &Marcher{
		model:         m,
		solver:        solver,
		metrics:       make([]Metric, 0),
		observers:     make([]Observer, 0),
		ValidateState: true,
	}
}

func (s *Marcher) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Marcher) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Marcher) Model() *physics.Model { return s.model }
func (s *Marcher) Solver() linalg.Solver { return s.solver }

// Run fills every time level of g. Any rows already written are discarded.
// On error the levels completed so far stay in g.
func (s *Marcher) Run(ctx context.Context, g *grid.Grid, dx, dt float64) (*Result, error) {
	if err := s.validate(g, dx, dt); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx).WithValues("model", s.model.Name)

	width, levels := g.Width(), g.TimeSteps()
	logger.Info("march started", "levels", levels, "width", width, "dx", dx, "dt", dt)

	result := &Result{
		Solves:  make([]linalg.Stats, 0, levels-1),
		Metrics: make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	g.Reset()
	row := linalg.NewVector(width, 0)
	for j := range row {
		row[j] = s.model.Initial(float64(j) * dx)
	}
	if err := s.commit(g, 0, 0, row, linalg.Stats{}); err != nil {
		return result, err
	}

	identity, err := linalg.Identity(width)
	if err != nil {
		return result, err
	}
	f := linalg.NewVector(width, 0)
	previous, err := linalg.NewTridiagonal(width, 0, 0, 0)
	if err != nil {
		return result, err
	}
	if err := Assemble(s.model, previous, f, dx, dt, 0); err != nil {
		return result, &StepError{Step: 0, Time: 0, Wrapped: err}
	}

	pool := linalg.NewVectorPool(width)
	for step := 1; step < levels; step++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("march interrupted at step %d: %w", step, ctx.Err())
		default:
		}

		t := float64(step) * dt
		current, err := linalg.NewTridiagonal(width, 0, 0, 0)
		if err != nil {
			return result, err
		}
		if err := Assemble(s.model, current, f, dx, dt, t); err != nil {
			return result, &StepError{Step: step, Time: t, Wrapped: err}
		}

		next, stats, err := s.advance(identity, previous, current, row, f, dt, pool)
		if err != nil {
			return result, &StepError{Step: step, Time: t, Wrapped: err}
		}
		if s.ValidateState && !next.IsValid() {
			return result, &StepError{Step: step, Time: t, Wrapped: ErrUnstable}
		}

		result.Steps++
		result.Solves = append(result.Solves, stats)
		result.MaxResidual = math.Max(result.MaxResidual, stats.Residual)
		if err := s.commit(g, step, t, next, stats); err != nil {
			return result, err
		}
		logger.V(logging.DEBUG).Info("time level written", "step", step, "t", t,
			"sweeps", stats.Iterations, "residual", stats.Residual)

		row = next
		previous = current
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	logger.Info("march finished", "steps", result.Steps, "maxResidual", result.MaxResidual)
	return result, nil
}

// advance performs one Crank-Nicolson update from row.
func (s *Marcher) advance(identity, previous, current *linalg.Tridiagonal, row, f linalg.Vector, dt float64, pool *linalg.VectorPool) (linalg.Vector, linalg.Stats, error) {
	explicit, err := identity.Sub(previous.Scale(0.5 * dt))
	if err != nil {
		return nil, linalg.Stats{}, err
	}
	implicit, err := identity.Add(current.Scale(0.5 * dt))
	if err != nil {
		return nil, linalg.Stats{}, err
	}

	rhs, err := explicit.Apply(row)
	if err != nil {
		return nil, linalg.Stats{}, err
	}
	forcing := pool.GetAndCopy(f)
	defer pool.Put(forcing)
	if _, err := rhs.AddInPlace(forcing.ScaleInPlace(dt)); err != nil {
		return nil, linalg.Stats{}, err
	}
	return s.solver.Solve(implicit, rhs)
}

func (s *Marcher) commit(g *grid.Grid, step int, t float64, row linalg.Vector, stats linalg.Stats) error {
	if err := g.SetRow(step, row); err != nil {
		return &StepError{Step: step, Time: t, Wrapped: err}
	}
	for _, m := range s.metrics {
		m.Observe(step, t, row)
	}
	for _, o := range s.observers {
		o.OnStep(step, t, row, stats)
	}
	return nil
}

func (s *Marcher) validate(g *grid.Grid, dx, dt float64) error {
	if g == nil || g.Width() <= 0 || g.TimeSteps() <= 0 {
		return fmt.Errorf("march: %w", linalg.ErrInvalidGridGeometry)
	}
	if !(dx > 0) || !(dt > 0) || math.IsInf(dx, 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("dx=%g dt=%g: %w", dx, dt, ErrInvalidStep)
	}
	return s.model.Validate()
}
