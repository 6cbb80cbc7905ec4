// Package acmecapture is the public facade of the capture utility: it wires
// a cape, an observability backend, and trace sinks into a one-shot capture
// run that returns aggregated per-probe rows and a rendered report.
package acmecapture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/touilkhouloud/acme-utils/internal/adapters/observability"
	"github.com/touilkhouloud/acme-utils/internal/adapters/sim"
	"github.com/touilkhouloud/acme-utils/internal/adapters/sink"
	"github.com/touilkhouloud/acme-utils/internal/app/aggregate"
	"github.com/touilkhouloud/acme-utils/internal/app/capture"
	"github.com/touilkhouloud/acme-utils/internal/app/config"
	"github.com/touilkhouloud/acme-utils/internal/app/report"
	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

// Option customizes the dependencies used by a Runner.
type Option func(*overrides)

type overrides struct {
	cape  ports.Cape
	obs   ports.Observability
	sinks []ports.TraceSink
}

// WithCape injects a custom cape implementation (real hardware bindings,
// simulators, test fakes).
func WithCape(c ports.Cape) Option {
	return func(o *overrides) {
		o.cape = c
	}
}

// WithObservability plugs in a custom logging/metrics backend.
func WithObservability(obs ports.Observability) Option {
	return func(o *overrides) {
		o.obs = obs
	}
}

// WithTraceSink appends a trace sink in addition to the configured ones.
func WithTraceSink(s ports.TraceSink) Option {
	return func(o *overrides) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// Outcome is everything a capture run produces.
type Outcome struct {
	Results []domain.CaptureResult
	Rows    []domain.ReportRow
	// Timing maps probe slot to per-cycle diagnostics.
	Timing map[int]capture.TimingStats
	Report string
}

// Runner owns one capture run's dependencies.
type Runner struct {
	cfg   *config.Config
	cape  ports.Cape
	obs   ports.Observability
	sinks []ports.TraceSink
	db    *sql.DB

	metricsSrv *http.Server
}

// New bootstraps the default adapters: the simulated cape when configured,
// Prometheus observability, a CSV trace sink, and the optional Postgres
// sink. Options override or extend any of them.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var ov overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	obs := ov.obs
	if obs == nil {
		obs = observability.NewPromObs()
	}

	cape := ov.cape
	if cape == nil {
		if !cfg.Cape.Simulate {
			return nil, fmt.Errorf("no channel source available for host %q: hardware access is out of scope, enable cape.simulate or inject a cape with WithCape", cfg.Cape.Host)
		}
		cape = sim.NewCape(sim.DefaultSlotCount, sim.DefaultRefillDelay)
	}

	r := &Runner{
		cfg:   cfg,
		cape:  cape,
		obs:   obs,
		sinks: ov.sinks,
	}

	if !cfg.Output.NoFile {
		dir := cfg.Output.Dir
		if dir == "" {
			dir = "./captures"
		}
		basename := cfg.Output.Basename
		if basename == "" {
			basename = time.Now().Format("20060102-150405")
		}
		r.sinks = append(r.sinks, sink.NewCSVSink(dir, basename))
	}
	if cfg.Postgres.ConnString != "" {
		db, err := sql.Open("postgres", cfg.Postgres.ConnString)
		if err != nil {
			return nil, err
		}
		r.db = db
		r.sinks = append(r.sinks, sink.NewPostgresSink(db, cfg.Postgres.Table))
	}

	return r, nil
}

// Probes returns the target probe handles: every attached probe, or the
// configured slot subset, with rail names applied.
func (r *Runner) Probes() ([]domain.Probe, error) {
	attached, err := r.cape.Probes()
	if err != nil {
		return nil, fmt.Errorf("enumerate probes: %w", err)
	}

	bySlot := make(map[int]domain.Probe, len(attached))
	for _, p := range attached {
		bySlot[p.Slot] = p
	}

	slots := r.cfg.Cape.Slots
	if len(slots) == 0 {
		slots = make([]int, 0, len(attached))
		for _, p := range attached {
			slots = append(slots, p.Slot)
		}
	}

	probes := make([]domain.Probe, 0, len(slots))
	for i, slot := range slots {
		p, ok := bySlot[slot]
		if !ok {
			return nil, fmt.Errorf("no probe attached in slot %d", slot)
		}
		if i < len(r.cfg.Cape.Names) {
			p.Name = r.cfg.Cape.Names[i]
		}
		probes = append(probes, p)
	}
	return probes, nil
}

// Run executes the full pipeline: reachability check, build, parallel
// capture, join, aggregation, report rendering, and trace export.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	if !r.cape.IsUp() {
		return nil, fmt.Errorf("cape %q is not reachable", r.cfg.Cape.Host)
	}

	probes, err := r.Probes()
	if err != nil {
		return nil, err
	}

	sessCfg, err := r.cfg.SessionConfig()
	if err != nil {
		return nil, err
	}

	orch, err := capture.Build(r.cape, probes, sessCfg, r.obs)
	if err != nil {
		return nil, err
	}

	r.startMetrics()

	results, err := orch.Run(ctx)
	if err != nil {
		return nil, err
	}

	timing, err := orch.TimingStats()
	if err != nil {
		return nil, err
	}

	rows, err := aggregate.Reduce(results)
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Results: results,
		Rows:    rows,
		Timing:  timing,
		Report: report.Render(report.Meta{
			Date:              time.Now(),
			Channels:          sessCfg.Channels,
			OversamplingRatio: sessCfg.OversamplingRatio,
			AsyncReads:        sessCfg.AsyncReads,
			Duration:          sessCfg.Duration,
		}, rows),
	}

	var sinkErrs []error
	for _, s := range r.sinks {
		for _, row := range rows {
			if err := s.WriteRow(row); err != nil {
				r.obs.LogError("trace_sink_write_failed", err,
					ports.Field{Key: "sink", Value: s.Name()},
					ports.Field{Key: "slot", Value: row.Probe.Slot})
				sinkErrs = append(sinkErrs, fmt.Errorf("sink %s, slot %d: %w", s.Name(), row.Probe.Slot, err))
			}
		}
	}
	return outcome, errors.Join(sinkErrs...)
}

// Shutdown releases the metrics server and database handle.
func (r *Runner) Shutdown(ctx context.Context) error {
	var errs []error
	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) startMetrics() {
	if r.cfg.Metrics.Addr == "" || r.metricsSrv != nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics_server_exited", err)
		}
	}()
}
