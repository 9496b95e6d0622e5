package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/physics"
)

const (
	DefaultTime          = 10.0
	DefaultWidth         = 1.0
	DefaultAccuracy      = 0.01
	DefaultModel         = "reference"
	DefaultSolver        = "gauss-seidel"
	DefaultMaxIterations = linalg.DefaultMaxIterations
	DefaultLogLevel      = "info"

	// EnvPrefix prefixes environment overrides, e.g. CONVDIFF_ACCURACY.
	EnvPrefix = "CONVDIFF"
)

// ErrInvalidConfig indicates a configuration that cannot drive a solve.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Time          float64            `yaml:"time" mapstructure:"time"`
	Width         float64            `yaml:"width" mapstructure:"width"`
	Accuracy      float64            `yaml:"accuracy" mapstructure:"accuracy"`
	Model         string             `yaml:"model" mapstructure:"model"`
	Params        map[string]float64 `yaml:"params,omitempty" mapstructure:"params"`
	Solver        string             `yaml:"solver" mapstructure:"solver"`
	MaxIterations int                `yaml:"max_iterations" mapstructure:"max_iterations"`
	Tolerance     float64            `yaml:"tolerance" mapstructure:"tolerance"`
	Log           LogConfig          `yaml:"log" mapstructure:"log"`
}

type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Time:          DefaultTime,
		Width:         DefaultWidth,
		Accuracy:      DefaultAccuracy,
		Model:         DefaultModel,
		Solver:        DefaultSolver,
		MaxIterations: DefaultMaxIterations,
		Log:           LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads a YAML file on top of the defaults. Environment variables
// named CONVDIFF_<KEY> override both, with nested keys joined by an
// underscore (CONVDIFF_LOG_LEVEL). An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("time", def.Time)
	v.SetDefault("width", def.Width)
	v.SetDefault("accuracy", def.Accuracy)
	v.SetDefault("model", def.Model)
	v.SetDefault("solver", def.Solver)
	v.SetDefault("max_iterations", def.MaxIterations)
	v.SetDefault("tolerance", def.Tolerance)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.development", def.Log.Development)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	for name, v := range map[string]float64{"time": c.Time, "width": c.Width, "accuracy": c.Accuracy} {
		if !(v > 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", name, v))
		}
	}
	if c.Accuracy > 0 && (c.Accuracy > c.Width || c.Accuracy > c.Time) {
		errs = append(errs, fmt.Errorf("accuracy %g exceeds the domain", c.Accuracy))
	}
	if c.MaxIterations < 0 {
		errs = append(errs, fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations))
	}
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance must not be negative, got %g", c.Tolerance))
	}
	if _, err := physics.Preset(c.Model); err != nil {
		errs = append(errs, err)
	}
	if _, err := linalg.SolverByName(c.Solver, c.MaxIterations, c.Tolerance); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// BuildModel returns the configured preset with Params applied.
func (c *Config) BuildModel() (*physics.Model, error) {
	m, err := physics.Preset(c.Model)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := m.SetParam(name, c.Params[name]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (c *Config) BuildSolver() (linalg.Solver, error) {
	return linalg.SolverByName(c.Solver, c.MaxIterations, c.Tolerance)
}
