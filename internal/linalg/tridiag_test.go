package linalg

import (
	"errors"
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

func randomOperator(n int, seed float64) *Tridiagonal {
	d, _ := NewTridiagonal(n, 0, 0, 0)
	for i := 0; i < n; i++ {
		for j := i - 1; j <= i+1; j++ {
			_ = d.Set(i, j, math.Sin(seed*float64(3*i+j+2)))
		}
	}
	return d
}

func testVector(n int) Vector {
	v := NewVector(n, 0)
	for i := range v {
		v[i] = math.Cos(0.7*float64(i)) + 0.1*float64(i)
	}
	return v
}

func TestTridiagonalLinearity(t *testing.T) {
	for _, n := range []int{1, 2, 7, 33} {
		d1, d2 := randomOperator(n, 1.3), randomOperator(n, -0.4)
		v := testVector(n)

		sum, err := d1.Add(d2)
		require.NoError(t, err)
		lhs, err := sum.Apply(v)
		require.NoError(t, err)

		a, _ := d1.Apply(v)
		b, _ := d2.Apply(v)
		rhs, err := a.Add(b)
		require.NoError(t, err)

		chk.Array(t, "(D1+D2)v", 1e-12, lhs, rhs)
	}
}

func TestTridiagonalIdentity(t *testing.T) {
	for _, n := range []int{1, 4, 50} {
		id, err := Identity(n)
		require.NoError(t, err)
		v := testVector(n)
		got, err := id.Apply(v)
		require.NoError(t, err)
		chk.Array(t, "I*v", 0, got, v)
	}
}

func TestTridiagonalApplyIgnoresGhosts(t *testing.T) {
	d, err := NewTridiagonal(3, 5, 1, 7)
	require.NoError(t, err)
	got, err := d.Apply(Vector{1, 1, 1})
	require.NoError(t, err)
	require.Equal(t, Vector{8, 13, 6}, got)
}

func TestTridiagonalArithmetic(t *testing.T) {
	d, err := SecondDifference(4)
	require.NoError(t, err)
	id, _ := Identity(4)

	composed, err := id.Add(d.Scale(0.5))
	require.NoError(t, err)
	diag, _ := composed.Band(Main)
	sub, _ := composed.Band(Sub)
	require.Equal(t, Vector{2, 2, 2, 2}, diag)
	require.Equal(t, Vector{-0.5, -0.5, -0.5, -0.5}, sub)

	back, err := composed.Sub(id)
	require.NoError(t, err)
	for k := Sub; k <= Super; k++ {
		got, _ := back.Band(k)
		want, _ := d.Scale(0.5).Band(k)
		require.Equal(t, want, got)
	}

	orig, _ := d.Band(Main)
	require.Equal(t, Vector{2, 2, 2, 2}, orig, "binary forms leave operands untouched")

	_, err = d.AddInPlace(id.Clone().ScaleInPlace(3))
	require.NoError(t, err)
	diag, _ = d.Band(Main)
	require.Equal(t, Vector{5, 5, 5, 5}, diag)
}

func TestTridiagonalWidthMismatch(t *testing.T) {
	a, _ := Identity(3)
	b, _ := Identity(4)
	_, err := a.Add(b)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = a.SubInPlace(b)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = a.Apply(NewVector(4, 1))
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestTridiagonalAccess(t *testing.T) {
	d, err := NewTridiagonal(4, 0, 0, 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		i, j int
		want error
	}{
		{"diagonal", 2, 2, nil},
		{"sub", 2, 1, nil},
		{"super", 2, 3, nil},
		{"left ghost", 0, -1, nil},
		{"right ghost", 3, 4, nil},
		{"two off", 1, 3, ErrOutOfBandAccess},
		{"far below", 3, 0, ErrOutOfBandAccess},
		{"row too large", 4, 4, ErrIndexOutOfRange},
		{"negative row", -1, 0, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Set(tt.i, tt.j, 1.5)
			if tt.want == nil {
				require.NoError(t, err)
				got, err := d.At(tt.i, tt.j)
				require.NoError(t, err)
				require.Equal(t, 1.5, got)
				require.NoError(t, d.AddAt(tt.i, tt.j, 1))
				got, _ = d.At(tt.i, tt.j)
				require.Equal(t, 2.5, got)
				return
			}
			require.True(t, errors.Is(err, tt.want), "got %v", err)
			_, err = d.At(tt.i, tt.j)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTridiagonalCloneAndAssign(t *testing.T) {
	d, _ := SecondDifference(3)
	c := d.Clone()
	require.NoError(t, c.Set(1, 1, 100))
	got, _ := d.At(1, 1)
	require.Equal(t, 2.0, got)

	dst, _ := Identity(8)
	dst.Assign(c)
	require.Equal(t, 3, dst.Width())
	got, _ = dst.At(1, 1)
	require.Equal(t, 100.0, got)
	require.NoError(t, c.Set(1, 1, 0))
	got, _ = dst.At(1, 1)
	require.Equal(t, 100.0, got)
}

func TestTridiagonalDense(t *testing.T) {
	d, _ := NewTridiagonal(3, -1, 4, -2)
	m := d.Dense()
	r, c := m.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)
	require.Equal(t, []float64{4, -2, 0}, []float64{m.At(0, 0), m.At(0, 1), m.At(0, 2)})
	require.Equal(t, []float64{0, -1, 4}, []float64{m.At(2, 0), m.At(2, 1), m.At(2, 2)})
	require.True(t, d.DiagonallyDominant())

	weak, _ := NewTridiagonal(3, -1, 1, -1)
	require.False(t, weak.DiagonallyDominant())
}

func TestNewTridiagonalRejectsEmpty(t *testing.T) {
	_, err := NewTridiagonal(0, 0, 1, 0)
	require.ErrorIs(t, err, ErrInvalidGridGeometry)
	_, err = Identity(-2)
	require.ErrorIs(t, err, ErrInvalidGridGeometry)
}
