package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

// Mode selects how a capture loop decides to stop.
type Mode string

const (
	// ModeDuration stops the loop once the requested wall-clock duration
	// has elapsed, checked at the top of each cycle.
	ModeDuration Mode = "duration"
	// ModeSignal runs until the run context is cancelled. A refill/read
	// already in flight is allowed to complete before the loop observes
	// the cancellation.
	ModeSignal Mode = "signal"
)

// SessionConfig carries the capture settings shared by every session of a
// run.
type SessionConfig struct {
	Channels          []domain.Channel
	BufferSize        int
	OversamplingRatio int
	AsyncReads        bool
	Duration          time.Duration
	Mode              Mode
}

func (c SessionConfig) validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("no capture channels selected")
	}
	seen := make(map[domain.Channel]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if !ch.Valid() {
			return fmt.Errorf("unknown channel %s", ch)
		}
		if ch.Derived() {
			return fmt.Errorf("channel %s is derived and cannot be captured", ch)
		}
		if seen[ch] {
			return fmt.Errorf("channel %s selected twice", ch)
		}
		seen[ch] = true
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be > 0, got %d", c.BufferSize)
	}
	switch c.Mode {
	case ModeDuration:
		if c.Duration <= 0 {
			return fmt.Errorf("capture duration must be > 0, got %s", c.Duration)
		}
	case ModeSignal:
	default:
		return fmt.Errorf("unknown capture mode %q", c.Mode)
	}
	return nil
}

// Session drives one probe's sampling loop: configure the channel source,
// then refill and read repeatedly until the bound is reached, accumulating
// samples and cycle timings. All mutable state is owned exclusively by the
// session's own loop; Result exposes it only after the loop has exited.
type Session struct {
	probe domain.Probe
	src   ports.ChannelSource
	cfg   SessionConfig
	obs   ports.Observability

	mu         sync.Mutex
	configured bool
	started    bool

	doneCh   chan struct{}
	doneOnce sync.Once

	samples map[domain.Channel][]float64
	units   map[domain.Channel]string
	timing  Timing
	failed  bool
	elapsed time.Duration
}

// NewSession creates an unconfigured session bound to one probe and its
// dedicated channel source.
func NewSession(probe domain.Probe, src ports.ChannelSource, cfg SessionConfig, obs ports.Observability) *Session {
	if obs == nil {
		obs = ports.NopObservability{}
	}
	return &Session{
		probe:   probe,
		src:     src,
		cfg:     cfg,
		obs:     obs,
		doneCh:  make(chan struct{}),
		samples: make(map[domain.Channel][]float64, len(cfg.Channels)),
		units:   make(map[domain.Channel]string, len(cfg.Channels)),
	}
}

// Probe returns the probe handle this session captures from.
func (s *Session) Probe() domain.Probe {
	return s.probe
}

// Done is closed once the capture loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.doneCh
}

// Configure enables the requested channels in declared order, applies the
// oversampling and async-read settings, and allocates the capture buffer.
// It fails fast: the first rejected sub-step aborts configuration.
func (s *Session) Configure() error {
	if err := s.cfg.validate(); err != nil {
		return err
	}

	for _, ch := range s.cfg.Channels {
		if err := s.src.EnableChannel(ch, true); err != nil {
			return fmt.Errorf("enable channel %s: %w", ch, err)
		}
	}
	if err := s.src.SetOversamplingRatio(s.cfg.OversamplingRatio); err != nil {
		return fmt.Errorf("set oversampling ratio %d: %w", s.cfg.OversamplingRatio, err)
	}
	if err := s.src.SetAsyncReads(s.cfg.AsyncReads); err != nil {
		return fmt.Errorf("set async reads: %w", err)
	}
	if err := s.src.AllocateBuffer(s.cfg.BufferSize); err != nil {
		return fmt.Errorf("allocate %d-sample buffer: %w", s.cfg.BufferSize, err)
	}

	s.mu.Lock()
	s.configured = true
	s.mu.Unlock()
	return nil
}

// Run executes the sampling loop until the configured bound is reached.
// A refill or read failure marks the session failed but does not abort the
// loop; capture continues best-effort for the remaining cycles.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if !s.configured {
		s.mu.Unlock()
		s.closeDone()
		return fmt.Errorf("slot %d: session not configured", s.probe.Slot)
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("slot %d: session already started", s.probe.Slot)
	}
	s.started = true
	s.mu.Unlock()

	defer s.closeDone()

	start := time.Now()
	for !s.stopRequested(ctx, start) {
		s.cycle()
	}
	s.elapsed = time.Since(start)

	s.obs.LogInfo("capture_session_done",
		ports.Field{Key: "slot", Value: s.probe.Slot},
		ports.Field{Key: "cycles", Value: s.timing.Cycles()},
		ports.Field{Key: "failed", Value: s.failed})
	return nil
}

// stopRequested is evaluated at the top of each cycle, so an in-flight
// refill/read always completes before the loop stops.
func (s *Session) stopRequested(ctx context.Context, start time.Time) bool {
	if ctx.Err() != nil {
		return true
	}
	if s.cfg.Mode == ModeDuration {
		return time.Since(start) >= s.cfg.Duration
	}
	return false
}

// cycle performs one refill followed by one read of every enabled channel,
// in declared order. Samples are staged and appended atomically, so the
// per-channel sequences stay index-aligned even when a cycle fails.
func (s *Session) cycle() {
	refillStart := time.Now()
	refillErr := s.src.Refill()
	refillEnd := time.Now()
	s.timing.recordRefill(refillStart, refillEnd)

	if refillErr != nil {
		s.failed = true
		s.obs.LogError("buffer_refill_failed", refillErr,
			ports.Field{Key: "slot", Value: s.probe.Slot})
		s.obs.IncCounter("acme_capture_cycle_failures_total", 1)
		// No read this cycle; nothing is appended so sequences stay aligned.
		readNow := time.Now()
		s.timing.recordRead(readNow, readNow)
		s.obs.IncCounter("acme_capture_cycles_total", 1)
		return
	}

	readStart := time.Now()
	staged := make(map[domain.Channel]ports.Buffer, len(s.cfg.Channels))
	cycleOK := true
	for _, ch := range s.cfg.Channels {
		buf, err := s.src.Read(ch)
		if err != nil {
			s.failed = true
			cycleOK = false
			s.obs.LogError("buffer_read_failed", err,
				ports.Field{Key: "slot", Value: s.probe.Slot},
				ports.Field{Key: "channel", Value: ch.String()})
			break
		}
		staged[ch] = buf
	}
	readEnd := time.Now()
	s.timing.recordRead(readStart, readEnd)

	if cycleOK {
		var appended int
		for _, ch := range s.cfg.Channels {
			buf := staged[ch]
			if _, ok := s.units[ch]; !ok {
				s.units[ch] = buf.Unit
			}
			s.samples[ch] = append(s.samples[ch], buf.Samples...)
			appended += len(buf.Samples)
		}
		s.obs.IncCounter("acme_samples_captured_total", float64(appended))
	} else {
		s.obs.IncCounter("acme_capture_cycle_failures_total", 1)
	}

	s.obs.IncCounter("acme_capture_cycles_total", 1)
	s.obs.ObserveLatency("acme_refill_seconds", refillEnd.Sub(refillStart).Seconds())
	s.obs.ObserveLatency("acme_read_seconds", readEnd.Sub(readStart).Seconds())
}

func (s *Session) closeDone() {
	s.doneOnce.Do(func() { close(s.doneCh) })
}

// Result snapshots the accumulated state. It is valid only after the loop
// has exited; calling it on an active session is an error.
func (s *Session) Result() (domain.CaptureResult, error) {
	select {
	case <-s.doneCh:
	default:
		return domain.CaptureResult{}, fmt.Errorf("slot %d: session still active", s.probe.Slot)
	}

	res := domain.CaptureResult{
		Probe:    s.probe,
		Duration: s.cfg.Duration,
		Channels: append([]domain.Channel(nil), s.cfg.Channels...),
		Series:   make(map[domain.Channel]domain.Series, len(s.cfg.Channels)),
		Failed:   s.failed,
	}
	for _, ch := range s.cfg.Channels {
		unit := s.units[ch]
		if unit == "" {
			unit = ch.Unit()
		}
		res.Series[ch] = domain.Series{
			Unit:    unit,
			Samples: append([]float64(nil), s.samples[ch]...),
		}
	}
	return res, nil
}

// Timing returns a copy of the recorded cycle timestamps. Valid only after
// the loop has exited.
func (s *Session) Timing() (Timing, error) {
	select {
	case <-s.doneCh:
	default:
		return Timing{}, fmt.Errorf("slot %d: session still active", s.probe.Slot)
	}
	return s.timing.clone(), nil
}

// Elapsed is the wall-clock time the loop ran for.
func (s *Session) Elapsed() time.Duration {
	return s.elapsed
}
