package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/convdiff/internal/linalg"
)

var (
	// ErrInvalidStep indicates a non-positive spatial or time step.
	ErrInvalidStep = errors.New("sim: dx and dt must be positive")

	// ErrUnstable indicates a time level containing NaN or Inf.
	ErrUnstable = errors.New("sim: non-finite value in time level")
)

// Observer is notified after every time level is written, including the
// initial condition at step 0.
type Observer interface {
	OnStep(step int, t float64, row linalg.Vector, stats linalg.Stats)
}

// Metric accumulates a scalar summary of a march.
type Metric interface {
	Name() string
	Observe(step int, t float64, row linalg.Vector)
	Value() float64
	Reset()
}

type Result struct {
	Steps       int
	Solves      []linalg.Stats
	MaxResidual float64
	Metrics     map[string]float64
}

// StepError attaches the failing time level to an error.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
