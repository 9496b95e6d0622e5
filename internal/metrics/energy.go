package metrics

import (
	"math"

	"github.com/san-kum/convdiff/internal/linalg"
)

// L2Energy returns the discrete energy ½·dx·Σu².
func L2Energy(row linalg.Vector, dx float64) float64 {
	sum := 0.0
	for _, u := range row {
		sum += u * u
	}
	return 0.5 * dx * sum
}

// Energy averages L2Energy over all observed time levels.
type Energy struct {
	name        string
	dx          float64
	samples     int
	totalEnergy float64
}

func NewEnergy(dx float64) *Energy {
	return &Energy{
		name: "energy",
		dx:   dx,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(_ int, _ float64, row linalg.Vector) {
	e.totalEnergy += L2Energy(row, e.dx)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of L2Energy against the
// initial condition.
type EnergyDrift struct {
	name          string
	dx            float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(dx float64) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dx:   dx,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(_ int, _ float64, row linalg.Vector) {
	energy := L2Energy(row, e.dx)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
