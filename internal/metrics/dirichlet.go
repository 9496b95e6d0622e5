package metrics

import (
	"math"

	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/physics"
)

// DirichletError measures how far the right edge of each time level is from
// the boundary value. The Dirichlet node is the ghost point x = n·dx, so the
// last two points are extrapolated onto it and compared with G(n·dx, t).
// Level 0 holds the initial condition and is skipped.
type DirichletError struct {
	boundary physics.ScalarField
	dx       float64
	worst    float64
	last     float64
}

func NewDirichletError(m *physics.Model, dx float64) *DirichletError {
	return &DirichletError{boundary: m.Boundary, dx: dx}
}

func (d *DirichletError) Name() string { return "dirichlet_error" }

func (d *DirichletError) Observe(step int, t float64, row linalg.Vector) {
	n := len(row)
	if step == 0 || n == 0 {
		return
	}
	edge := row[n-1]
	if n > 1 {
		edge = 2*row[n-1] - row[n-2]
	}
	d.last = math.Abs(edge - d.boundary(float64(n)*d.dx, t))
	d.worst = math.Max(d.worst, d.last)
}

// Value is the error of the final observed level.
func (d *DirichletError) Value() float64 { return d.last }

// Worst is the largest error over all observed levels.
func (d *DirichletError) Worst() float64 { return d.worst }

func (d *DirichletError) Reset() {
	d.worst = 0
	d.last = 0
}
