package sim

import (
	"context"
	"errors"
	"math"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/convdiff/internal/grid"
	"github.com/san-kum/convdiff/internal/linalg"
	"github.com/san-kum/convdiff/internal/physics"
)

type countingObserver struct {
	steps []int
	times []float64
}

func (c *countingObserver) OnStep(step int, t float64, _ linalg.Vector, _ linalg.Stats) {
	c.steps = append(c.steps, step)
	c.times = append(c.times, t)
}

type lastValue struct{ v float64 }

func (l *lastValue) Name() string { return "last" }
func (l *lastValue) Observe(_ int, _ float64, row linalg.Vector) {
	l.v = row[len(row)-1]
}
func (l *lastValue) Value() float64 { return l.v }
func (l *lastValue) Reset()         { l.v = math.NaN() }

func diffusionModel() *physics.Model {
	m := physics.Reference()
	m.Name = "diffusion"
	m.Convection = physics.Constant(0)
	return m
}

func newGrid(levels, width int) *grid.Grid {
	g, err := grid.New(levels, width)
	Expect(err).NotTo(HaveOccurred())
	return g
}

var _ = Describe("Marcher", func() {
	Context("with pure diffusion on five points", func() {
		const dx = 0.25

		It("writes the initial condition into level 0", func() {
			g := newGrid(3, 5)
			_, err := New(diffusionModel(), nil).Run(context.Background(), g, dx, 0.1)
			Expect(err).NotTo(HaveOccurred())

			row, err := g.Row(0)
			Expect(err).NotTo(HaveOccurred())
			for j, v := range row {
				x := float64(j) * dx
				Expect(v).To(Equal(1.5 - x*x))
			}
		})

		It("reproduces the first Crank-Nicolson levels", func() {
			g := newGrid(3, 5)
			res, err := New(diffusionModel(), nil).Run(context.Background(), g, dx, 0.1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(2))
			Expect(res.Solves).To(HaveLen(2))
			Expect(res.Solves[0].Iterations).To(Equal(linalg.DefaultMaxIterations))

			want := [][]float64{
				{1.1167064726415754, 1.2000895634435442, 1.1117096085499432, 0.9754666643437716, 1.0116820505673143},
				{0.878940605098869, 0.998350179868517, 1.0373485708649508, 1.0312586540677147, 0.9224503939956926},
			}
			for i, w := range want {
				row, err := g.Row(i + 1)
				Expect(err).NotTo(HaveOccurred())
				for j := range w {
					Expect(row[j]).To(BeNumerically("~", w[j], 1e-9), "level %d point %d", i+1, j)
				}
			}
		})

		It("settles on the Dirichlet ghost value at x = n·dx", func() {
			g := newGrid(81, 5)
			_, err := New(diffusionModel(), nil).Run(context.Background(), g, dx, 0.5)
			Expect(err).NotTo(HaveOccurred())

			last, err := g.Row(80)
			Expect(err).NotTo(HaveOccurred())
			ghost := physics.Reference().Boundary(5*dx, 0)
			extrapolated := 2*last[4] - last[3]
			Expect(extrapolated).To(BeNumerically("~", ghost, 1e-4))

			// α = 0 makes the steady profile the line through the ghost with unit slope
			for j, v := range last {
				Expect(v).To(BeNumerically("~", ghost+float64(j-5)*dx, 1e-4), "point %d", j)
			}
		})
	})

	It("is bit-for-bit deterministic", func() {
		a, b := newGrid(21, 11), newGrid(21, 11)
		_, err := New(physics.Reference(), nil).Run(context.Background(), a, 0.1, 0.05)
		Expect(err).NotTo(HaveOccurred())
		_, err = New(physics.Reference(), nil).Run(context.Background(), b, 0.1, 0.05)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Diff(a.Rows(), b.Rows())).To(BeEmpty())
	})

	It("can march the same grid twice", func() {
		g := newGrid(6, 5)
		m := New(physics.Reference(), nil)
		_, err := m.Run(context.Background(), g, 0.25, 0.1)
		Expect(err).NotTo(HaveOccurred())
		first := g.Rows()
		_, err = m.Run(context.Background(), g, 0.25, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Diff(first, g.Rows())).To(BeEmpty())
	})

	It("notifies observers and metrics for every level", func() {
		obs := &countingObserver{}
		m := New(physics.Reference(), nil)
		m.AddObserver(obs)
		m.AddMetric(&lastValue{})

		g := newGrid(4, 5)
		res, err := m.Run(context.Background(), g, 0.25, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.steps).To(Equal([]int{0, 1, 2, 3}))
		Expect(obs.times).To(Equal([]float64{0, 0.5, 1, 1.5}))

		row, _ := g.Row(3)
		Expect(res.Metrics).To(HaveKeyWithValue("last", row[4]))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		g := newGrid(10, 5)
		_, err := New(physics.Reference(), nil).Run(ctx, g, 0.25, 0.1)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(g.Written()).To(Equal(0))
	})

	It("rejects non-positive steps", func() {
		g := newGrid(3, 5)
		_, err := New(physics.Reference(), nil).Run(context.Background(), g, 0, 0.1)
		Expect(err).To(MatchError(ErrInvalidStep))
		_, err = New(physics.Reference(), nil).Run(context.Background(), g, 0.1, -1)
		Expect(err).To(MatchError(ErrInvalidStep))
	})

	It("rejects a nil grid", func() {
		_, err := New(physics.Reference(), nil).Run(context.Background(), nil, 0.1, 0.1)
		Expect(err).To(MatchError(linalg.ErrInvalidGridGeometry))
	})

	It("rejects an incomplete model", func() {
		m := physics.Reference()
		m.Alpha = nil
		_, err := New(m, nil).Run(context.Background(), newGrid(3, 5), 0.1, 0.1)
		Expect(err).To(MatchError(physics.ErrInvalidModel))
	})

	It("reports the first non-finite level", func() {
		m := physics.Reference()
		m.Initial = func(float64) float64 { return math.NaN() }

		g := newGrid(5, 4)
		_, err := New(m, nil).Run(context.Background(), g, 0.25, 0.1)
		Expect(err).To(MatchError(ErrUnstable))

		var stepErr *StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Step).To(Equal(1))
		Expect(g.Written()).To(Equal(0))
	})

	It("agrees with the direct solver on a diagonally dominant march", func() {
		gs, direct := newGrid(11, 9), newGrid(11, 9)
		_, err := New(physics.Reference(), linalg.NewGaussSeidel(400, 0)).Run(context.Background(), gs, 0.125, 0.1)
		Expect(err).NotTo(HaveOccurred())
		_, err = New(physics.Reference(), linalg.Direct{}).Run(context.Background(), direct, 0.125, 0.1)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 11; i++ {
			a, _ := gs.Row(i)
			b, _ := direct.Row(i)
			for j := range a {
				Expect(a[j]).To(BeNumerically("~", b[j], 1e-8))
			}
		}
	})
})

var _ = Describe("Ensemble", func() {
	It("matches sequential marches", func() {
		jobs := []Job{
			{Name: "coarse", Model: physics.Reference(), Grid: newGrid(11, 5), Dx: 0.25, Dt: 0.1},
			{Name: "fine", Model: physics.Reference(), Grid: newGrid(21, 9), Dx: 0.125, Dt: 0.05},
		}
		results, err := NewEnsemble(func() []Metric { return []Metric{&lastValue{}} }).Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))

		for i, job := range jobs {
			g := newGrid(job.Grid.TimeSteps(), job.Grid.Width())
			_, err := New(physics.Reference(), nil).Run(context.Background(), g, job.Dx, job.Dt)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(g.Rows(), job.Grid.Rows())).To(BeEmpty(), job.Name)
			Expect(results[i].Metrics).To(HaveKey("last"))
		}
	})

	It("names the failing job", func() {
		jobs := []Job{{Name: "broken", Grid: newGrid(3, 3), Dx: 0.1, Dt: 0.1}}
		_, err := NewEnsemble(nil).Run(context.Background(), jobs)
		Expect(err).To(MatchError(ContainSubstring("broken")))
		Expect(errors.Is(err, physics.ErrInvalidModel)).To(BeTrue())
	})
})
