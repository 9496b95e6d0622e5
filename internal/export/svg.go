// Package export renders stored grids as standalone SVG images.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/convdiff/internal/viz"
)

// ErrShortProfile indicates fewer than two finite points to draw.
var ErrShortProfile = errors.New("export: profile needs at least two finite points")

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// ProfileSVG draws u against x as a single path with 10% padding on every
// side. Non-finite values break the path.
func ProfileSVG(x, u []float64, width, height int, strokeColor string) (string, error) {
	if len(x) != len(u) {
		return "", fmt.Errorf("export: %d positions but %d values", len(x), len(u))
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	finite := 0
	for i := range u {
		if !isFinite(u[i]) {
			continue
		}
		finite++
		minX, maxX = math.Min(minX, x[i]), math.Max(maxX, x[i])
		minY, maxY = math.Min(minY, u[i]), math.Max(maxY, u[i])
	}
	if finite < 2 {
		return "", ErrShortProfile
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, strokeColor))

	move := true
	for i := range u {
		if !isFinite(u[i]) {
			move = true
			continue
		}
		px := (x[i] - minX) / rangeX * float64(width)
		py := float64(height) - (u[i]-minY)/rangeY*float64(height)
		cmd := "L"
		if move {
			cmd = "M"
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f ", cmd, px, py))
		move = false
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String(), nil
}

// HeatmapSVG paints every grid point as a cell×cell square, time running
// upwards and x to the right. Colors run from blue at the grid minimum to
// red at the maximum; non-finite points are left as background.
func HeatmapSVG(src viz.Source, cell float64) (string, error) {
	lo, hi, err := viz.Bounds(src)
	if err != nil {
		return "", err
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	levels, points := src.TimeSteps(), src.Width()
	height := float64(levels) * cell

	var sb strings.Builder
	header(&sb, float64(points)*cell, height)
	sb.WriteString(`<g shape-rendering="crispEdges">
`)
	for i := 0; i < levels; i++ {
		y := height - float64(i+1)*cell
		for j := 0; j < points; j++ {
			v, err := src.At(i, j)
			if err != nil {
				return "", err
			}
			if !isFinite(v) {
				continue
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(j)*cell, y, cell, cell, heat((v-lo)/span)))
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String(), nil
}

// heat maps s in [0, 1] from blue through white to red.
func heat(s float64) string {
	s = math.Max(0, math.Min(1, s))
	var r, g, b float64
	if s < 0.5 {
		k := s / 0.5
		r, g, b = k, k, 1
	} else {
		k := (s - 0.5) / 0.5
		r, g, b = 1, 1-k, 1-k
	}
	return fmt.Sprintf("#%02x%02x%02x", int(r*255), int(g*255), int(b*255))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
