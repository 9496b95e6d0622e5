package linalg

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/exascience/pargo/parallel"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxIterations is the fixed sweep budget of the relaxation solvers.
const DefaultMaxIterations = 100

// Stats describes a finished solve.
type Stats struct {
	Iterations int
	// Residual is max |f - D·x| for the returned x.
	Residual float64
}

// Solver computes x with D·x = f, the "division" f / D.
type Solver interface {
	Solve(d *Tridiagonal, f Vector) (Vector, Stats, error)
}

// GaussSeidel relaxes D·x = f starting from x = f. It always runs
// MaxIterations sweeps unless Tolerance > 0 and a sweep's largest row
// residual drops to Tolerance or below.
type GaussSeidel struct {
	MaxIterations int
	Tolerance     float64
}

func NewGaussSeidel(maxIterations int, tolerance float64) *GaussSeidel {
	return &GaussSeidel{MaxIterations: maxIterations, Tolerance: tolerance}
}

func (g *GaussSeidel) Solve(d *Tridiagonal, f Vector) (Vector, Stats, error) {
	if err := checkSystem(d, f); err != nil {
		return nil, Stats{}, err
	}
	n := len(f)
	sweeps := sweepBudget(g.MaxIterations)
	x := f.Clone()
	b := d.bands.items
	diag := b[Main]

	var stats Stats
	for it := 0; it < sweeps; it++ {
		worst := 0.0
		for i := 0; i < n; i++ {
			r := f[i]
			for j := max(0, i-1); j <= min(n-1, i+1); j++ {
				r -= b[j-i+1][i] * x[j]
			}
			x[i] += r / diag[i]
			worst = math.Max(worst, math.Abs(r))
		}
		stats.Iterations = it + 1
		if g.Tolerance > 0 && worst <= g.Tolerance {
			break
		}
	}
	stats.Residual = residualNorm(d, x, f)
	return x, stats, nil
}

// Divide solves D·x = f with the default Gauss-Seidel budget.
func Divide(f Vector, d *Tridiagonal) (Vector, error) {
	x, _, err := NewGaussSeidel(DefaultMaxIterations, 0).Solve(d, f)
	return x, err
}

// RedBlack is Gauss-Seidel with odd/even ordering. Each colour is relaxed in
// parallel, so results differ slightly from the sequential sweep.
type RedBlack struct {
	MaxIterations int
	Tolerance     float64
}

func NewRedBlack(maxIterations int, tolerance float64) *RedBlack {
	return &RedBlack{MaxIterations: maxIterations, Tolerance: tolerance}
}

func (r *RedBlack) Solve(d *Tridiagonal, f Vector) (Vector, Stats, error) {
	if err := checkSystem(d, f); err != nil {
		return nil, Stats{}, err
	}
	n := len(f)
	sweeps := sweepBudget(r.MaxIterations)
	x := f.Clone()
	b := d.bands.items

	var stats Stats
	for it := 0; it < sweeps; it++ {
		for color := 0; color < 2; color++ {
			count := (n - color + 1) / 2
			if count == 0 {
				continue
			}
			parallel.Range(0, count, 0, func(low, high int) {
				for k := low; k < high; k++ {
					i := 2*k + color
					res := f[i]
					for j := max(0, i-1); j <= min(n-1, i+1); j++ {
						res -= b[j-i+1][i] * x[j]
					}
					x[i] += res / b[Main][i]
				}
			})
		}
		stats.Iterations = it + 1
		if r.Tolerance > 0 {
			if stats.Residual = residualNorm(d, x, f); stats.Residual <= r.Tolerance {
				return x, stats, nil
			}
		}
	}
	stats.Residual = residualNorm(d, x, f)
	return x, stats, nil
}

// Thomas solves the system directly by tridiagonal elimination.
type Thomas struct{}

func (Thomas) Solve(d *Tridiagonal, f Vector) (Vector, Stats, error) {
	if err := checkSystem(d, f); err != nil {
		return nil, Stats{}, err
	}
	n := len(f)
	sub, diag, sup := d.raw()
	cp := make([]float64, n)
	dp := make([]float64, n)

	cp[0] = sup[0] / diag[0]
	dp[0] = f[0] / diag[0]
	for i := 1; i < n; i++ {
		denom := diag[i] - sub[i]*cp[i-1]
		if denom == 0 {
			return nil, Stats{}, fmt.Errorf("thomas elimination row %d: %w", i, ErrZeroPivot)
		}
		if i < n-1 {
			cp[i] = sup[i] / denom
		}
		dp[i] = (f[i] - sub[i]*dp[i-1]) / denom
	}

	x := NewVector(n, 0)
	x[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		x[i] = dp[i] - cp[i]*x[i+1]
	}
	return x, Stats{Iterations: 1, Residual: residualNorm(d, x, f)}, nil
}

// Direct solves the expanded dense system with gonum's LU factorisation.
type Direct struct{}

func (Direct) Solve(d *Tridiagonal, f Vector) (Vector, Stats, error) {
	if err := checkSystem(d, f); err != nil {
		return nil, Stats{}, err
	}
	n := len(f)
	var x mat.VecDense
	if err := x.SolveVec(d.Dense(), mat.NewVecDense(n, f.Clone())); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, Stats{}, fmt.Errorf("dense solve: %w", err)
		}
	}
	out := NewVector(n, 0)
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, Stats{Iterations: 1, Residual: residualNorm(d, out, f)}, nil
}

// Residual returns f - D·x.
func Residual(d *Tridiagonal, x, f Vector) (Vector, error) {
	if err := checkSystem(d, f); err != nil {
		return nil, err
	}
	dx, err := d.Apply(x)
	if err != nil {
		return nil, err
	}
	return f.Sub(dx)
}

var solvers = map[string]func(maxIterations int, tolerance float64) Solver{
	"gauss-seidel": func(m int, t float64) Solver { return NewGaussSeidel(m, t) },
	"red-black":    func(m int, t float64) Solver { return NewRedBlack(m, t) },
	"thomas":       func(int, float64) Solver { return Thomas{} },
	"direct":       func(int, float64) Solver { return Direct{} },
}

// SolverByName returns a registered solver. The iteration budget and
// tolerance only apply to the relaxation solvers.
func SolverByName(name string, maxIterations int, tolerance float64) (Solver, error) {
	fn, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s (available: %v)", name, SolverNames())
	}
	return fn(maxIterations, tolerance), nil
}

func SolverNames() []string {
	names := make([]string, 0, len(solvers))
	for name := range solvers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sweepBudget(n int) int {
	if n <= 0 {
		return DefaultMaxIterations
	}
	return n
}

func checkSystem(d *Tridiagonal, f Vector) error {
	n := d.Width()
	if len(f) != n {
		return fmt.Errorf("operator width %d, right-hand side length %d: %w", n, len(f), ErrDimensionMismatch)
	}
	for i, v := range d.bands.items[Main] {
		if v == 0 {
			return fmt.Errorf("diagonal entry %d: %w", i, ErrZeroPivot)
		}
	}
	return nil
}

func residualNorm(d *Tridiagonal, x, f Vector) float64 {
	dx := make(Vector, len(x))
	d.applyInto(dx, x)
	worst := 0.0
	for i := range f {
		worst = math.Max(worst, math.Abs(f[i]-dx[i]))
	}
	return worst
}
