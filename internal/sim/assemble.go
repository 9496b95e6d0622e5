package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/physics"
)

// Assemble writes the spatial operator of m at time t into d and the
// right-hand side into f.
//
// Convection is upwinded on the sign of C, diffusion adds ε/dx² times the
// (-1, 2, -1) stencil, the left ghost coefficient is folded into row 0 for
// the Robin condition, and the Dirichlet value G(n·dx) enters f through the
// right ghost coefficient. Source and boundary terms are evaluated at
// t - dt/2 and are only written once t > dt/2; at t = 0 f is left untouched.
func Assemble(m *physics.Model, d *linalg.Tridiagonal, f linalg.Vector, dx, dt, t float64) error {
	n := d.Width()
	if len(f) != n {
		return fmt.Errorf("assemble: operator width %d, right-hand side length %d: %w",
			n, len(f), linalg.ErrDimensionMismatch)
	}
	half := t > dt/2
	tHalf := t - dt/2

	for j := 0; j < n; j++ {
		x := float64(j) * dx
		if half {
			f[j] = m.Source(x, tHalf)
		}
		var err error
		if c := m.Convection(x, t); c > 0 {
			err = errors.Join(d.Set(j, j, c/dx), d.Set(j, j-1, -c/dx), d.Set(j, j+1, 0))
		} else {
			err = errors.Join(d.Set(j, j, -c/dx), d.Set(j, j-1, 0), d.Set(j, j+1, c/dx))
		}
		if err != nil {
			return fmt.Errorf("assemble row %d: %w", j, err)
		}
	}

	diffusion, err := linalg.SecondDifference(n)
	if err != nil {
		return err
	}
	if _, err := d.AddInPlace(diffusion.ScaleInPlace(m.Epsilon / dx / dx)); err != nil {
		return err
	}

	ghostLeft, err := d.At(0, -1)
	if err != nil {
		return err
	}
	if err := errors.Join(
		d.AddAt(0, 0, ghostLeft),
		d.AddAt(0, 0, -ghostLeft*dx*m.Alpha(0, t)),
	); err != nil {
		return err
	}

	if half {
		ghostRight, err := d.At(n-1, n)
		if err != nil {
			return err
		}
		f[0] -= ghostLeft * dx * m.Boundary(0, tHalf)
		f[n-1] -= ghostRight * m.Boundary(float64(n)*dx, tHalf)
	}
	return nil
}
