package observability

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/touilkhouloud/acme-utils/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	cycles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acme_capture_cycles_total",
		Help: "Total refill/read cycles completed across all sessions.",
	})
	cycleFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acme_capture_cycle_failures_total",
		Help: "Cycles with a failed buffer refill or channel read.",
	})
	captured := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "acme_samples_captured_total",
		Help: "Samples appended to channel sequences across all sessions.",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "acme_active_sessions",
		Help: "Capture sessions currently running.",
	})
	refill := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "acme_refill_seconds",
		Help:    "Time spent blocked in one capture buffer refill.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	read := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "acme_read_seconds",
		Help:    "Time spent reading all enabled channels of one cycle.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	prometheus.MustRegister(cycles, cycleFailures, captured, active, refill, read)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"acme_capture_cycles_total":         cycles,
			"acme_capture_cycle_failures_total": cycleFailures,
			"acme_samples_captured_total":       captured,
		},
		gauges: map[string]prometheus.Gauge{
			"acme_active_sessions": active,
		},
		histos: map[string]prometheus.Observer{
			"acme_refill_seconds": refill,
			"acme_read_seconds":   read,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("ERROR: %s: %v", msg, err)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		log.Printf("CRITICAL: %s: %v", msg, err)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

var _ ports.Observability = (*PromObs)(nil)
