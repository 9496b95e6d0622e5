package physics

import (
	"fmt"
	"math"
	"sort"
)

var presets = map[string]func() *Model{
	"reference": Reference,
	"diffusion": func() *Model {
		m := Reference()
		m.Name = "diffusion"
		m.Convection = Constant(0)
		return m
	},
	"advection-left": func() *Model {
		m := Reference()
		m.Name = "advection-left"
		m.Epsilon = 0.05
		m.Convection = Constant(-0.5)
		return m
	},
	"robin": func() *Model {
		m := Reference()
		m.Name = "robin"
		m.Alpha = Constant(1)
		return m
	},
	"source": func() *Model {
		m := Reference()
		m.Name = "source"
		m.Source = func(x, _ float64) float64 { return math.Sin(math.Pi * x) }
		return m
	},
}

// Preset returns a fresh copy of the named model.
func Preset(name string) (*Model, error) {
	fn, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, ListPresets())
	}
	return fn(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
