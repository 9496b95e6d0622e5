package metrics

import (
	"math"

	"github.com/san-kum/convdiff/internal/linalg"
)

// Stability is the fraction of time levels whose values all stay within
// ±threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(_ int, _ float64, row linalg.Vector) {
	s.samples++
	for _, val := range row {
		if math.IsNaN(val) || math.Abs(val) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxAbs tracks the largest |u| seen over the whole march.
type MaxAbs struct {
	peak float64
}

func NewMaxAbs() *MaxAbs { return &MaxAbs{} }

func (m *MaxAbs) Name() string { return "max_abs" }

func (m *MaxAbs) Observe(_ int, _ float64, row linalg.Vector) {
	m.peak = math.Max(m.peak, row.MaxNorm())
}

func (m *MaxAbs) Value() float64 { return m.peak }

func (m *MaxAbs) Reset() { m.peak = 0 }
