package config

import "sort"

// Presets holds named run setups per physics model.
var Presets = map[string]map[string]*Config{
	"reference": {
		"quick":  {Time: 0.5, Width: 1, Accuracy: 0.1, Model: "reference", Solver: "gauss-seidel", MaxIterations: 100},
		"coarse": {Time: 1, Width: 1, Accuracy: 0.05, Model: "reference", Solver: "gauss-seidel", MaxIterations: 100},
		"fine":   {Time: 10, Width: 1, Accuracy: 0.005, Model: "reference", Solver: "thomas"},
	},
	"diffusion": {
		"steady": {Time: 20, Width: 1, Accuracy: 0.05, Model: "diffusion", Solver: "gauss-seidel", MaxIterations: 200},
		"coarse": {Time: 1, Width: 1, Accuracy: 0.05, Model: "diffusion", Solver: "gauss-seidel", MaxIterations: 100},
	},
	"advection-left": {
		"sharp": {Time: 2, Width: 1, Accuracy: 0.01, Model: "advection-left", Solver: "thomas"},
	},
	"robin": {
		"coarse": {Time: 1, Width: 1, Accuracy: 0.05, Model: "robin", Solver: "gauss-seidel", MaxIterations: 100},
		"strong": {Time: 2, Width: 1, Accuracy: 0.02, Model: "robin", Params: map[string]float64{"alpha": 5}, Solver: "red-black", MaxIterations: 200},
	},
	"source": {
		"pulse": {Time: 2, Width: 1, Accuracy: 0.02, Model: "source", Solver: "gauss-seidel", MaxIterations: 100},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if cfg.Params != nil {
		c.Params = make(map[string]float64, len(cfg.Params))
		for k, v := range cfg.Params {
			c.Params[k] = v
		}
	}
	return &c
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
