package capture

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

// Orchestrator manages the per-probe sessions of one capture run as a unit:
// all-or-nothing build, fully parallel start, and a join barrier before any
// result is read.
type Orchestrator struct {
	sessions []*Session
	obs      ports.Observability

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// Build creates and configures one session per target probe, resolving each
// probe's dedicated channel source exactly once. If any configuration step
// fails the whole build fails and no session is ever started.
func Build(cape ports.Cape, probes []domain.Probe, cfg SessionConfig, obs ports.Observability) (*Orchestrator, error) {
	if obs == nil {
		obs = ports.NopObservability{}
	}
	if len(probes) == 0 {
		return nil, fmt.Errorf("no probes to capture from")
	}

	seen := make(map[int]bool, len(probes))
	for _, p := range probes {
		if p.Slot <= 0 {
			return nil, fmt.Errorf("invalid slot %d: slots are numbered from 1", p.Slot)
		}
		if seen[p.Slot] {
			return nil, fmt.Errorf("slot %d targeted twice", p.Slot)
		}
		seen[p.Slot] = true
	}

	sessions := make([]*Session, 0, len(probes))
	for _, p := range probes {
		src, err := cape.Source(p.Slot)
		if err != nil {
			return nil, fmt.Errorf("slot %d: resolve channel source: %w", p.Slot, err)
		}
		sess := NewSession(p, src, cfg, obs)
		if err := sess.Configure(); err != nil {
			return nil, fmt.Errorf("slot %d: configure capture: %w", p.Slot, err)
		}
		sessions = append(sessions, sess)
	}

	return &Orchestrator{sessions: sessions, obs: obs}, nil
}

// Sessions returns the managed sessions, in build order.
func (o *Orchestrator) Sessions() []*Session {
	return o.sessions
}

// StartAll launches every session's loop in its own goroutine. Sessions run
// fully in parallel; no ordering is guaranteed between their cycles.
func (o *Orchestrator) StartAll(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return fmt.Errorf("capture already started")
	}
	o.started = true
	o.mu.Unlock()

	o.obs.SetGauge("acme_active_sessions", float64(len(o.sessions)))
	for _, sess := range o.sessions {
		sess := sess
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			if err := sess.Run(ctx); err != nil {
				o.obs.LogCritical("capture_session_start_failed", err,
					ports.Field{Key: "slot", Value: sess.Probe().Slot})
			}
		}()
	}
	return nil
}

// JoinAll blocks until every session's loop has exited, then returns each
// session's immutable result, ordered by probe slot. A probe's persistent
// cycle failures never shorten another probe's session; they are visible
// only through each result's failure flag.
func (o *Orchestrator) JoinAll() ([]domain.CaptureResult, error) {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if !started {
		return nil, fmt.Errorf("capture not started")
	}

	o.wg.Wait()
	o.obs.SetGauge("acme_active_sessions", 0)

	results := make([]domain.CaptureResult, 0, len(o.sessions))
	for _, sess := range o.sessions {
		res, err := sess.Result()
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Probe.Slot < results[j].Probe.Slot
	})
	return results, nil
}

// Run starts all sessions and blocks on the join barrier.
func (o *Orchestrator) Run(ctx context.Context) ([]domain.CaptureResult, error) {
	if err := o.StartAll(ctx); err != nil {
		return nil, err
	}
	return o.JoinAll()
}

// TimingStats returns per-slot cycle diagnostics. Valid only after JoinAll.
func (o *Orchestrator) TimingStats() (map[int]TimingStats, error) {
	out := make(map[int]TimingStats, len(o.sessions))
	for _, sess := range o.sessions {
		t, err := sess.Timing()
		if err != nil {
			return nil, err
		}
		out[sess.Probe().Slot] = t.Stats()
	}
	return out, nil
}
