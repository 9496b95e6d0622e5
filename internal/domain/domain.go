// Package domain sizes a space-time grid from physical extents and runs the
// convection-diffusion march over it.
//
// A Domain is the read side consumed by plotting and viewers: after Solve it
// answers TimeSteps, Width and point queries At(i, j).
package domain

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/convdiff/internal/grid"
	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/physics"
	"github.com/san-kum/convdiff/internal/sim"
)

// ErrNotSolved indicates a query before Solve completed.
var ErrNotSolved = errors.New("domain: not solved")

type Domain struct {
	time     float64
	width    float64
	accuracy float64

	model     *physics.Model
	solver    linalg.Solver
	observers []sim.Observer
	metrics   []sim.Metric

	grid   *grid.Grid
	result *sim.Result
	solved bool
}

type Option func(*Domain)

func WithModel(m *physics.Model) Option {
	return func(d *Domain) { d.model = m }
}

func WithSolver(s linalg.Solver) Option {
	return func(d *Domain) { d.solver = s }
}

func WithObserver(o sim.Observer) Option {
	return func(d *Domain) { d.observers = append(d.observers, o) }
}

func WithMetric(m sim.Metric) Option {
	return func(d *Domain) { d.metrics = append(d.metrics, m) }
}

// New sizes a grid of round(time/accuracy)+1 levels by
// round(width/accuracy)+1 points. The reference model and the default
// Gauss-Seidel solver are used unless overridden.
func New(time, width, accuracy float64, opts ...Option) (*Domain, error) {
	for _, v := range []float64{time, width, accuracy} {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("time=%g width=%g accuracy=%g: %w",
				time, width, accuracy, linalg.ErrInvalidGridGeometry)
		}
	}
	levels := Levels(time, accuracy)
	points := Levels(width, accuracy)
	g, err := grid.New(levels, points)
	if err != nil {
		return nil, err
	}

	d := &Domain{time: time, width: width, accuracy: accuracy, grid: g}
	for _, opt := range opts {
		opt(d)
	}
	if d.model == nil {
		d.model = physics.Reference()
	}
	if err := d.model.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Levels returns the number of grid nodes covering extent at the given
// spacing, counting both ends.
func Levels(extent, accuracy float64) int {
	return int(math.Round(extent/accuracy)) + 1
}

// Solve marches the whole grid. Steps are width/Width() and
// time/TimeSteps(), so the Dirichlet ghost node lies at x = DomainWidth().
// Solving again recomputes every level.
func (d *Domain) Solve(ctx context.Context) error {
	d.solved = false
	m := sim.New(d.model, d.solver)
	for _, o := range d.observers {
		m.AddObserver(o)
	}
	for _, mt := range d.metrics {
		m.AddMetric(mt)
	}

	res, err := m.Run(ctx, d.grid, d.Dx(), d.Dt())
	d.result = res
	if err != nil {
		return fmt.Errorf("solve %s: %w", d.model.Name, err)
	}
	d.solved = true
	return nil
}

// AddMetric attaches m to subsequent solves.
func (d *Domain) AddMetric(m sim.Metric) { d.metrics = append(d.metrics, m) }

func (d *Domain) AddObserver(o sim.Observer) { d.observers = append(d.observers, o) }

// At returns the value at time level i and grid point j.
func (d *Domain) At(i, j int) (float64, error) {
	if !d.solved {
		return 0, ErrNotSolved
	}
	return d.grid.At(i, j)
}

func (d *Domain) TimeSteps() int { return d.grid.TimeSteps() }

// Width is the number of spatial grid points.
func (d *Domain) Width() int { return d.grid.Width() }

// DomainWidth is the physical width of the domain.
func (d *Domain) DomainWidth() float64 { return d.width }

func (d *Domain) Time() float64     { return d.time }
func (d *Domain) Accuracy() float64 { return d.accuracy }

func (d *Domain) Dx() float64 { return d.width / float64(d.grid.Width()) }
func (d *Domain) Dt() float64 { return d.time / float64(d.grid.TimeSteps()) }

func (d *Domain) Model() *physics.Model { return d.model }
func (d *Domain) Solved() bool          { return d.solved }

// Result reports solver statistics of the last Solve, or nil.
func (d *Domain) Result() *sim.Result { return d.result }

// Grid returns a copy of the solution.
func (d *Domain) Grid() (*grid.Grid, error) {
	if !d.solved {
		return nil, ErrNotSolved
	}
	return d.grid.Clone(), nil
}
