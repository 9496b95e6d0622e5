package viz

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptySource indicates a source without any time level or point.
var ErrEmptySource = errors.New("viz: empty grid")

// Source is the read-only view of a solved grid.
type Source interface {
	TimeSteps() int
	Width() int
	At(i, j int) (float64, error)
}

// Rows adapts plain time levels, such as those loaded from a run, to Source.
type Rows [][]float64

func (r Rows) TimeSteps() int { return len(r) }

func (r Rows) Width() int {
	if len(r) == 0 {
		return 0
	}
	return len(r[0])
}

func (r Rows) At(i, j int) (float64, error) {
	if i < 0 || i >= len(r) || j < 0 || j >= len(r[i]) {
		return 0, fmt.Errorf("point (%d, %d) outside %d×%d grid", i, j, len(r), r.Width())
	}
	return r[i][j], nil
}

// Level copies time level i.
func Level(src Source, i int) ([]float64, error) {
	out := make([]float64, src.Width())
	for j := range out {
		v, err := src.At(i, j)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

// Series copies the history of grid point j.
func Series(src Source, j int) ([]float64, error) {
	out := make([]float64, src.TimeSteps())
	for i := range out {
		v, err := src.At(i, j)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Bounds returns the smallest and largest finite value in the grid.
func Bounds(src Source) (lo, hi float64, err error) {
	if src.TimeSteps() == 0 || src.Width() == 0 {
		return 0, 0, ErrEmptySource
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < src.TimeSteps(); i++ {
		for j := 0; j < src.Width(); j++ {
			v, err := src.At(i, j)
			if err != nil {
				return 0, 0, err
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0, ErrEmptySource
	}
	return lo, hi, nil
}
