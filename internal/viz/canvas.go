package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2×4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// at code point 0x2800 plus the dot bits.
const brailleBase = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille pixel canvas of Width×Height cells, addressed in
// sub-pixels of (2·Width)×(4·Height) with y growing downwards.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). Points off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= pixelMap[y%4][x%2]
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= pixelMap[y%4][x%2]
	}
}

// IsSet reports whether sub-pixel (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// PlotCurve draws values as a polyline spanning the full canvas width, with
// lo at the bottom edge and hi at the top. Non-finite values break the line.
func (c *Canvas) PlotCurve(values []float64, lo, hi float64) {
	if len(values) == 0 {
		return
	}
	px, py := c.Width*2, c.Height*4
	if hi <= lo {
		hi = lo + 1
	}
	project := func(k int, v float64) (int, int) {
		x := 0
		if len(values) > 1 {
			x = int(math.Round(float64(k) * float64(px-1) / float64(len(values)-1)))
		}
		y := int(math.Round((hi - v) / (hi - lo) * float64(py-1)))
		return x, y
	}

	prevOK := false
	var x0, y0 int
	for k, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			prevOK = false
			continue
		}
		x, y := project(k, v)
		if prevOK {
			c.DrawLine(x0, y0, x, y)
		} else {
			c.Set(x, y)
		}
		x0, y0, prevOK = x, y, true
	}
}

// MarkColumn draws a dotted vertical guide at sub-pixel column x.
func (c *Canvas) MarkColumn(x int) {
	for y := 0; y < c.Height*4; y += 2 {
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	return row, col, true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
