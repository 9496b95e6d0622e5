// Package grid holds the space-time solution of a 1-D marching scheme: one
// vector of spatial values per time level.
package grid

import (
	"errors"
	"fmt"

	"github.com/san-kum/convdiff/internal/linalg"
)

// ErrRowRewrite indicates a write to a time level at or below one already
// sealed by SetRow.
var ErrRowRewrite = errors.New("grid: time level already written")

// Grid is a deep-copy list of time levels sharing one spatial width. Levels
// are written once, in increasing order.
type Grid struct {
	rows    *linalg.List[linalg.Vector]
	width   int
	written int
}

func New(timeLevels, width int) (*Grid, error) {
	if timeLevels <= 0 || width <= 0 {
		return nil, fmt.Errorf("grid %d×%d: %w", timeLevels, width, linalg.ErrInvalidGridGeometry)
	}
	return &Grid{
		rows:    linalg.NewList(timeLevels, func(int) linalg.Vector { return linalg.NewVector(width, 0) }),
		width:   width,
		written: -1,
	}, nil
}

func (g *Grid) TimeSteps() int { return g.rows.Len() }

func (g *Grid) Width() int { return g.width }

// Written returns the highest sealed time level, or -1.
func (g *Grid) Written() int { return g.written }

// Row returns a copy of time level t.
func (g *Grid) Row(t int) (linalg.Vector, error) {
	return g.rows.CloneAt(t)
}

// SetRow stores a copy of v as time level t and seals every level up to t.
func (g *Grid) SetRow(t int, v linalg.Vector) error {
	if len(v) != g.width {
		return fmt.Errorf("time level %d: width %d, got %d: %w", t, g.width, len(v), linalg.ErrDimensionMismatch)
	}
	if t <= g.written {
		return fmt.Errorf("time level %d (sealed through %d): %w", t, g.written, ErrRowRewrite)
	}
	if err := g.rows.Set(t, v); err != nil {
		return err
	}
	g.written = t
	return nil
}

func (g *Grid) At(t, j int) (float64, error) {
	row, err := g.rows.At(t)
	if err != nil {
		return 0, err
	}
	return row.At(j)
}

// Set writes a single point of an unsealed time level.
func (g *Grid) Set(t, j int, v float64) error {
	if t <= g.written && t >= 0 {
		return fmt.Errorf("time level %d (sealed through %d): %w", t, g.written, ErrRowRewrite)
	}
	row, err := g.rows.At(t)
	if err != nil {
		return err
	}
	return row.SetAt(j, v)
}

// Reset zeroes every level and unseals the grid.
func (g *Grid) Reset() {
	g.rows.Each(func(_ int, row linalg.Vector) bool {
		row.Fill(0)
		return true
	})
	g.written = -1
}

func (g *Grid) Clone() *Grid {
	return &Grid{rows: g.rows.Clone(), width: g.width, written: g.written}
}

// Rows copies the grid into plain slices, one per time level.
func (g *Grid) Rows() [][]float64 {
	out := make([][]float64, 0, g.rows.Len())
	g.rows.Each(func(_ int, row linalg.Vector) bool {
		out = append(out, []float64(row.Clone()))
		return true
	})
	return out
}
