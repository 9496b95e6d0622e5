package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Vector is a dense numeric buffer indexed 0..Dim()-1.
//
// In-place operations mutate the receiver and return it for chaining. The
// non-mutating forms copy the receiver first.
type Vector []float64

func NewVector(n int, fill float64) Vector {
	if n < 0 {
		n = 0
	}
	v := make(Vector, n)
	if fill != 0 {
		v.Fill(fill)
	}
	return v
}

func (v Vector) Dim() int { return len(v) }

func (v Vector) Clone() Vector {
	c := make(Vector, len(v))
	copy(c, v)
	return c
}

// Resize returns a vector of length n holding the first min(n, Dim())
// values of v and zeros after them.
func (v Vector) Resize(n int) Vector {
	r := NewVector(n, 0)
	copy(r, v)
	return r
}

func (v Vector) IsValid() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (v Vector) Norm() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, 2)
}

// MaxNorm returns max |v[i]|.
func (v Vector) MaxNorm() float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, math.Inf(1))
}

func (v Vector) At(i int) (float64, error) {
	if i < 0 || i >= len(v) {
		return 0, fmt.Errorf("vector index %d of %d: %w", i, len(v), ErrIndexOutOfRange)
	}
	return v[i], nil
}

func (v Vector) SetAt(i int, x float64) error {
	if i < 0 || i >= len(v) {
		return fmt.Errorf("vector index %d of %d: %w", i, len(v), ErrIndexOutOfRange)
	}
	v[i] = x
	return nil
}

func (v Vector) Fill(a float64) Vector {
	for i := range v {
		v[i] = a
	}
	return v
}

func (v Vector) AddInPlace(o Vector) (Vector, error) {
	if err := sameDim(v, o); err != nil {
		return v, err
	}
	floats.Add(v, o)
	return v, nil
}

func (v Vector) SubInPlace(o Vector) (Vector, error) {
	if err := sameDim(v, o); err != nil {
		return v, err
	}
	floats.Sub(v, o)
	return v, nil
}

func (v Vector) ScaleInPlace(a float64) Vector {
	floats.Scale(a, v)
	return v
}

// DivInPlace divides every component by a. Division by zero follows IEEE
// semantics.
func (v Vector) DivInPlace(a float64) Vector {
	for i := range v {
		v[i] /= a
	}
	return v
}

func (v Vector) Add(o Vector) (Vector, error) {
	if err := sameDim(v, o); err != nil {
		return nil, err
	}
	return v.Clone().AddInPlace(o)
}

func (v Vector) Sub(o Vector) (Vector, error) {
	if err := sameDim(v, o); err != nil {
		return nil, err
	}
	return v.Clone().SubInPlace(o)
}

func (v Vector) Scale(a float64) Vector { return v.Clone().ScaleInPlace(a) }

func (v Vector) Div(a float64) Vector { return v.Clone().DivInPlace(a) }

func (v Vector) Neg() Vector { return v.Clone().ScaleInPlace(-1) }

func (v Vector) Dot(o Vector) (float64, error) {
	if err := sameDim(v, o); err != nil {
		return 0, err
	}
	if len(v) == 0 {
		return 0, nil
	}
	return floats.Dot(v, o), nil
}

func sameDim(u, v Vector) error {
	if len(u) != len(v) {
		return fmt.Errorf("vector lengths %d and %d: %w", len(u), len(v), ErrDimensionMismatch)
	}
	return nil
}
