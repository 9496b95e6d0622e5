package linalg

import (
	"fmt"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

// diffusionSystem is ε/dx²·(-1, 2, -1) with ε = 1, dx = 0.1 and n = 10,
// together with the right-hand side of a known solution.
func diffusionSystem(t *testing.T) (*Tridiagonal, Vector, Vector) {
	t.Helper()
	d, err := SecondDifference(10)
	require.NoError(t, err)
	d.ScaleInPlace(1 / 0.1 / 0.1)

	want := NewVector(10, 0)
	for i := range want {
		want[i] = math.Sin(float64(i))
	}
	f, err := d.Apply(want)
	require.NoError(t, err)
	return d, f, want
}

func maxError(a, b Vector) float64 {
	diff, _ := a.Sub(b)
	return diff.MaxNorm()
}

func TestGaussSeidelRecoversSolution(t *testing.T) {
	d, f, want := diffusionSystem(t)

	prev := math.Inf(1)
	for _, sweeps := range []int{10, 50, 100, 400} {
		x, stats, err := NewGaussSeidel(sweeps, 0).Solve(d, f)
		require.NoError(t, err)
		require.Equal(t, sweeps, stats.Iterations)

		e := maxError(x, want)
		require.Less(t, e, prev, "error must shrink with %d sweeps", sweeps)
		prev = e
	}
	require.Less(t, prev, 1e-10)

	x, err := Divide(f, d)
	require.NoError(t, err)
	require.Less(t, maxError(x, want), 1e-2, "default budget")
}

func TestGaussSeidelToleranceStopsEarly(t *testing.T) {
	d, f, want := diffusionSystem(t)

	x, stats, err := NewGaussSeidel(10000, 1e-9).Solve(d, f)
	require.NoError(t, err)
	require.Less(t, stats.Iterations, 10000)
	require.Less(t, maxError(x, want), 1e-8)

	r, err := Residual(d, x, f)
	require.NoError(t, err)
	chk.Float64(t, "reported residual", 1e-15, stats.Residual, r.MaxNorm())
}

func TestGaussSeidelDefaultBudget(t *testing.T) {
	d, f, _ := diffusionSystem(t)
	_, stats, err := (&GaussSeidel{}).Solve(d, f)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxIterations, stats.Iterations)
}

func TestSolversAgree(t *testing.T) {
	d, f, want := diffusionSystem(t)

	for _, name := range SolverNames() {
		t.Run(name, func(t *testing.T) {
			s, err := SolverByName(name, 400, 0)
			require.NoError(t, err)
			x, stats, err := s.Solve(d, f)
			require.NoError(t, err)
			chk.Array(t, name, 1e-9, x, want)
			require.Less(t, stats.Residual, 1e-6)
		})
	}
}

func TestSolverErrors(t *testing.T) {
	d, _ := SecondDifference(4)
	singular, _ := NewTridiagonal(4, 1, 0, 1)

	for _, name := range SolverNames() {
		t.Run(name, func(t *testing.T) {
			s, err := SolverByName(name, 10, 0)
			require.NoError(t, err)

			_, _, err = s.Solve(d, NewVector(3, 1))
			require.ErrorIs(t, err, ErrDimensionMismatch)

			_, _, err = s.Solve(singular, NewVector(4, 1))
			require.ErrorIs(t, err, ErrZeroPivot)
		})
	}
}

func TestSolverByNameUnknown(t *testing.T) {
	_, err := SolverByName("jacobi", 10, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "gauss-seidel")
}

func BenchmarkSolvers(b *testing.B) {
	for _, n := range []int{101, 1001} {
		d, _ := SecondDifference(n)
		d.ScaleInPlace(0.01)
		id, _ := Identity(n)
		d.AddInPlace(id)
		f := NewVector(n, 1)

		for _, name := range SolverNames() {
			s, _ := SolverByName(name, DefaultMaxIterations, 0)
			b.Run(fmt.Sprintf("%s/n=%d", name, n), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					s.Solve(d, f)
				}
			})
		}
	}
}

func BenchmarkApply(b *testing.B) {
	d, _ := SecondDifference(1001)
	v := NewVector(1001, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Apply(v)
	}
}
