package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/convdiff/internal/linalg"
)

const namespace = "convdiff"

// Collector exports march progress as Prometheus metrics. It implements the
// march Observer interface and owns its registry, so several collectors can
// coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	levels   prometheus.Counter
	sweeps   prometheus.Counter
	residual prometheus.Gauge
	resHist  prometheus.Histogram
	simTime  prometheus.Gauge
	peak     prometheus.Gauge
}

// NewCollector labels every series with the model name.
func NewCollector(model string) *Collector {
	labels := prometheus.Labels{"model": model}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		levels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "time_levels_total",
			Help:        "Time levels written, including the initial condition.",
			ConstLabels: labels,
		}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "solver",
			Name:        "sweeps_total",
			Help:        "Relaxation sweeps performed by the linear solver.",
			ConstLabels: labels,
		}),
		residual: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "solver",
			Name:        "residual",
			Help:        "Max-norm residual of the most recent solve.",
			ConstLabels: labels,
		}),
		resHist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "solver",
			Name:        "residual_distribution",
			Help:        "Max-norm residual per solve.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-12, 10, 14),
		}),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "simulated_time",
			Help:        "Physical time of the latest written level.",
			ConstLabels: labels,
		}),
		peak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "solution_max_abs",
			Help:        "Max |u| of the latest written level.",
			ConstLabels: labels,
		}),
	}
	c.registry.MustRegister(c.levels, c.sweeps, c.residual, c.resHist, c.simTime, c.peak)
	return c
}

func (c *Collector) OnStep(step int, t float64, row linalg.Vector, stats linalg.Stats) {
	c.levels.Inc()
	c.simTime.Set(t)
	c.peak.Set(row.MaxNorm())
	if step == 0 {
		return
	}
	c.sweeps.Add(float64(stats.Iterations))
	c.residual.Set(stats.Residual)
	c.resHist.Observe(stats.Residual)
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// WriteTextfile writes the current values in the node_exporter textfile
// format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
