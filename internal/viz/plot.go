package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// PlotOptions sizes a chart in terminal cells.
type PlotOptions struct {
	Height int
	Width  int
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Height: 15, Width: 80}
}

// PlotProfile charts u(x) at time level i. The vertical axis is pinned to
// the whole grid's range so levels are comparable.
func PlotProfile(src Source, i int, opts PlotOptions) (string, error) {
	values, err := Level(src, i)
	if err != nil {
		return "", err
	}
	lo, hi, err := Bounds(src)
	if err != nil {
		return "", err
	}
	caption := fmt.Sprintf("u(x) at level %d/%d", i, src.TimeSteps()-1)
	return chart(values, caption, opts, asciigraph.LowerBound(lo), asciigraph.UpperBound(hi)), nil
}

// PlotSeries charts u(t) at grid point j.
func PlotSeries(src Source, j int, opts PlotOptions) (string, error) {
	values, err := Series(src, j)
	if err != nil {
		return "", err
	}
	return chart(values, fmt.Sprintf("u(t) at point %d", j), opts), nil
}

func chart(values []float64, caption string, opts PlotOptions, extra ...asciigraph.Option) string {
	if len(values) == 1 {
		values = append(values, values[0])
	}
	options := append([]asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	}, extra...)
	return asciigraph.Plot(values, options...)
}
