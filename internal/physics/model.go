package physics

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidModel indicates a model with a missing field or a negative ε.
	ErrInvalidModel = errors.New("physics: invalid model")

	// ErrUnknownParam indicates a parameter name the model does not expose.
	ErrUnknownParam = errors.New("physics: unknown parameter")
)

// ScalarField is a space-time coefficient f(x, t).
type ScalarField func(x, t float64) float64

// Model is the physical description of one convection-diffusion problem.
type Model struct {
	Name string

	// Epsilon is the diffusion coefficient ε.
	Epsilon float64

	Source     ScalarField // F
	Convection ScalarField // C
	Alpha      ScalarField // α, Robin weight on the left edge
	Boundary   ScalarField // G, shared by both edges
	Initial    func(x float64) float64

	overrides map[string]float64
}

func Constant(c float64) ScalarField {
	return func(float64, float64) float64 { return c }
}

// Linear returns a·x + b.
func Linear(a, b float64) ScalarField {
	return func(x, _ float64) float64 { return a*x + b }
}

// Reference returns the default problem: no source, slow rightward
// convection, zero Robin weight, G = 1.5x - 1 and u0 = 1.5 - x².
func Reference() *Model {
	return &Model{
		Name:       "reference",
		Epsilon:    1.0,
		Source:     Constant(0),
		Convection: Constant(0.1),
		Alpha:      Constant(0),
		Boundary:   Linear(1.5, -1.0),
		Initial:    func(x float64) float64 { return 1.5 - x*x },
	}
}

func (m *Model) Validate() error {
	switch {
	case m == nil:
		return fmt.Errorf("nil model: %w", ErrInvalidModel)
	case m.Source == nil:
		return fmt.Errorf("model %q: missing source: %w", m.Name, ErrInvalidModel)
	case m.Convection == nil:
		return fmt.Errorf("model %q: missing convection: %w", m.Name, ErrInvalidModel)
	case m.Alpha == nil:
		return fmt.Errorf("model %q: missing alpha: %w", m.Name, ErrInvalidModel)
	case m.Boundary == nil:
		return fmt.Errorf("model %q: missing boundary: %w", m.Name, ErrInvalidModel)
	case m.Initial == nil:
		return fmt.Errorf("model %q: missing initial condition: %w", m.Name, ErrInvalidModel)
	case m.Epsilon < 0 || math.IsNaN(m.Epsilon) || math.IsInf(m.Epsilon, 0):
		return fmt.Errorf("model %q: epsilon %g: %w", m.Name, m.Epsilon, ErrInvalidModel)
	}
	return nil
}

// Clone copies the model. Callables are shared; they are treated as pure.
func (m *Model) Clone() *Model {
	c := *m
	if m.overrides != nil {
		c.overrides = make(map[string]float64, len(m.overrides))
		for k, v := range m.overrides {
			c.overrides[k] = v
		}
	}
	return &c
}

// GetParams reports ε and any coefficient replaced through SetParam.
func (m *Model) GetParams() map[string]float64 {
	p := map[string]float64{"epsilon": m.Epsilon}
	for k, v := range m.overrides {
		p[k] = v
	}
	return p
}

// SetParam tunes ε or replaces the source, convection or alpha field with
// a constant.
func (m *Model) SetParam(name string, value float64) error {
	switch name {
	case "epsilon":
		if value < 0 {
			return fmt.Errorf("epsilon %g: %w", value, ErrInvalidModel)
		}
		m.Epsilon = value
		return nil
	case "source":
		m.Source = Constant(value)
	case "convection":
		m.Convection = Constant(value)
	case "alpha":
		m.Alpha = Constant(value)
	default:
		return fmt.Errorf("%q (available: %v): %w", name, ParamNames(), ErrUnknownParam)
	}
	if m.overrides == nil {
		m.overrides = make(map[string]float64)
	}
	m.overrides[name] = value
	return nil
}

func ParamNames() []string {
	names := []string{"alpha", "convection", "epsilon", "source"}
	sort.Strings(names)
	return names
}
