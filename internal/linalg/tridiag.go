package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Band indices of a Tridiagonal.
const (
	Sub = iota
	Main
	Super
)

// Tridiagonal is an n×n banded operator stored as three bands of length n.
// Sub[0] and Super[n-1] fall outside the matrix; they carry the ghost
// coefficients coupling the first and last rows to boundary values.
type Tridiagonal struct {
	bands *List[Vector]
}

// NewTridiagonal builds an operator of width n with constant bands.
func NewTridiagonal(n int, sub, main, super float64) (*Tridiagonal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("operator width %d: %w", n, ErrInvalidGridGeometry)
	}
	fill := [3]float64{sub, main, super}
	return &Tridiagonal{
		bands: NewList(3, func(k int) Vector { return NewVector(n, fill[k]) }),
	}, nil
}

// Identity returns the (0, 1, 0) operator.
func Identity(n int) (*Tridiagonal, error) { return NewTridiagonal(n, 0, 1, 0) }

// SecondDifference returns the (-1, 2, -1) stencil.
func SecondDifference(n int) (*Tridiagonal, error) { return NewTridiagonal(n, -1, 2, -1) }

func (d *Tridiagonal) Width() int { return len(d.bands.items[Main]) }

// Band returns the band k owned by the operator.
func (d *Tridiagonal) Band(k int) (Vector, error) {
	if k < Sub || k > Super {
		return nil, fmt.Errorf("band %d: %w", k, ErrOutOfBandAccess)
	}
	return d.bands.items[k], nil
}

func (d *Tridiagonal) Clone() *Tridiagonal {
	return &Tridiagonal{bands: d.bands.Clone()}
}

// Assign makes d an exact deep copy of src.
func (d *Tridiagonal) Assign(src *Tridiagonal) {
	d.bands.Assign(src.bands)
}

func (d *Tridiagonal) AddInPlace(o *Tridiagonal) (*Tridiagonal, error) {
	if err := d.sameWidth(o); err != nil {
		return d, err
	}
	for k := range d.bands.items {
		if _, err := d.bands.items[k].AddInPlace(o.bands.items[k]); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (d *Tridiagonal) SubInPlace(o *Tridiagonal) (*Tridiagonal, error) {
	if err := d.sameWidth(o); err != nil {
		return d, err
	}
	for k := range d.bands.items {
		if _, err := d.bands.items[k].SubInPlace(o.bands.items[k]); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (d *Tridiagonal) ScaleInPlace(a float64) *Tridiagonal {
	for _, b := range d.bands.items {
		b.ScaleInPlace(a)
	}
	return d
}

func (d *Tridiagonal) Add(o *Tridiagonal) (*Tridiagonal, error) {
	return d.Clone().AddInPlace(o)
}

func (d *Tridiagonal) Sub(o *Tridiagonal) (*Tridiagonal, error) {
	return d.Clone().SubInPlace(o)
}

func (d *Tridiagonal) Scale(a float64) *Tridiagonal {
	return d.Clone().ScaleInPlace(a)
}

// At reads entry (i, j). Row i must be inside the operator and |i-j| <= 1;
// columns -1 and Width() address the ghost slots of the first and last row.
func (d *Tridiagonal) At(i, j int) (float64, error) {
	k, err := d.slot(i, j)
	if err != nil {
		return 0, err
	}
	return d.bands.items[k][i], nil
}

func (d *Tridiagonal) Set(i, j int, v float64) error {
	k, err := d.slot(i, j)
	if err != nil {
		return err
	}
	d.bands.items[k][i] = v
	return nil
}

// AddAt adds v to entry (i, j).
func (d *Tridiagonal) AddAt(i, j int, v float64) error {
	k, err := d.slot(i, j)
	if err != nil {
		return err
	}
	d.bands.items[k][i] += v
	return nil
}

// Apply returns d·v. Ghost slots do not contribute.
func (d *Tridiagonal) Apply(v Vector) (Vector, error) {
	n := d.Width()
	if len(v) != n {
		return nil, fmt.Errorf("operator width %d, vector length %d: %w", n, len(v), ErrDimensionMismatch)
	}
	out := NewVector(n, 0)
	d.applyInto(out, v)
	return out, nil
}

func (d *Tridiagonal) applyInto(dst, v Vector) {
	n := len(v)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := max(0, i-1); j <= min(n-1, i+1); j++ {
			sum += d.bands.items[j-i+1][i] * v[j]
		}
		dst[i] = sum
	}
}

// DiagonallyDominant reports whether |main| >= |sub| + |super| on every row,
// counting only in-matrix entries.
func (d *Tridiagonal) DiagonallyDominant() bool {
	sub, diag, sup := d.raw()
	n := len(diag)
	for i := 0; i < n; i++ {
		off := 0.0
		if i > 0 {
			off += math.Abs(sub[i])
		}
		if i < n-1 {
			off += math.Abs(sup[i])
		}
		if math.Abs(diag[i]) < off {
			return false
		}
	}
	return true
}

// Dense expands the operator into an n×n gonum matrix, dropping ghost slots.
func (d *Tridiagonal) Dense() *mat.Dense {
	sub, diag, sup := d.raw()
	n := len(diag)
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, diag[i])
		if i > 0 {
			m.Set(i, i-1, sub[i])
		}
		if i < n-1 {
			m.Set(i, i+1, sup[i])
		}
	}
	return m
}

func (d *Tridiagonal) raw() (sub, diag, sup Vector) {
	return d.bands.items[Sub], d.bands.items[Main], d.bands.items[Super]
}

func (d *Tridiagonal) slot(i, j int) (int, error) {
	if i < 0 || i >= d.Width() {
		return 0, fmt.Errorf("operator row %d of %d: %w", i, d.Width(), ErrIndexOutOfRange)
	}
	k := j - i + 1
	if k < Sub || k > Super {
		return 0, fmt.Errorf("operator entry (%d, %d): %w", i, j, ErrOutOfBandAccess)
	}
	return k, nil
}

func (d *Tridiagonal) sameWidth(o *Tridiagonal) error {
	if d.Width() != o.Width() {
		return fmt.Errorf("operator widths %d and %d: %w", d.Width(), o.Width(), ErrDimensionMismatch)
	}
	return nil
}
