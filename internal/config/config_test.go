package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "reference" {
		t.Errorf("expected model reference, got %s", cfg.Model)
	}
	if cfg.Solver != "gauss-seidel" || cfg.MaxIterations != 100 {
		t.Errorf("expected gauss-seidel with 100 sweeps, got %s/%d", cfg.Solver, cfg.MaxIterations)
	}
	if cfg.Tolerance != 0 {
		t.Errorf("early exit should be off by default, got %g", cfg.Tolerance)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Time != DefaultTime || cfg.Accuracy != DefaultAccuracy || cfg.Log.Level != "info" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := "accuracy: 0.05\nmodel: robin\nparams:\n  alpha: 2\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Accuracy != 0.05 || cfg.Model != "robin" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Width != DefaultWidth || cfg.Solver != DefaultSolver {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Params["alpha"] != 2 {
		t.Errorf("expected alpha param 2, got %v", cfg.Params)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.Log.Level)
	}

	m, err := cfg.BuildModel()
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	if m.Alpha(0, 0) != 2 {
		t.Errorf("param not applied to model")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONVDIFF_ACCURACY", "0.02")
	t.Setenv("CONVDIFF_SOLVER", "thomas")
	t.Setenv("CONVDIFF_LOG_LEVEL", "trace")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Accuracy != 0.02 || cfg.Solver != "thomas" || cfg.Log.Level != "trace" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("robin", "strong")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Solver != "red-black" || loaded.MaxIterations != 200 || loaded.Params["alpha"] != 5 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero time", func(c *Config) { c.Time = 0 }},
		{"negative width", func(c *Config) { c.Width = -1 }},
		{"zero accuracy", func(c *Config) { c.Accuracy = 0 }},
		{"accuracy wider than domain", func(c *Config) { c.Accuracy = 2 }},
		{"unknown model", func(c *Config) { c.Model = "burgers" }},
		{"unknown solver", func(c *Config) { c.Solver = "jacobi" }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"negative iterations", func(c *Config) { c.MaxIterations = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("reference", "coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Accuracy != 0.05 {
		t.Errorf("expected accuracy 0.05, got %f", cfg.Accuracy)
	}

	cfg.Accuracy = 1
	if GetPreset("reference", "coarse").Accuracy != 0.05 {
		t.Error("preset mutated through returned copy")
	}

	strong := GetPreset("robin", "strong")
	strong.Params["alpha"] = 0
	if Presets["robin"]["strong"].Params["alpha"] != 5 {
		t.Error("preset params shared with copy")
	}

	if GetPreset("reference", "missing") != nil || GetPreset("missing", "coarse") != nil {
		t.Error("expected nil for unknown preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for model := range Presets {
		for _, name := range ListPresets(model) {
			if err := GetPreset(model, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}
