package capture

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

type fakeCape struct {
	sources   map[int]*fakeSource
	sourceErr map[int]error
	resolved  map[int]int
}

func newFakeCape(slots ...int) *fakeCape {
	c := &fakeCape{
		sources:   make(map[int]*fakeSource),
		sourceErr: make(map[int]error),
		resolved:  make(map[int]int),
	}
	for _, slot := range slots {
		c.sources[slot] = &fakeSource{}
	}
	return c
}

func (c *fakeCape) IsUp() bool { return true }

func (c *fakeCape) SlotCount() int { return len(c.sources) }

func (c *fakeCape) Probes() ([]domain.Probe, error) {
	probes := make([]domain.Probe, 0, len(c.sources))
	for slot := range c.sources {
		probes = append(probes, domain.Probe{Slot: slot, Kind: domain.ProbeHE10, ShuntMicroOhm: 1000 * slot})
	}
	return probes, nil
}

func (c *fakeCape) Source(slot int) (ports.ChannelSource, error) {
	c.resolved[slot]++
	if err := c.sourceErr[slot]; err != nil {
		return nil, err
	}
	src, ok := c.sources[slot]
	if !ok {
		return nil, fmt.Errorf("no source for slot %d", slot)
	}
	return src, nil
}

func probesFor(slots ...int) []domain.Probe {
	probes := make([]domain.Probe, 0, len(slots))
	for _, slot := range slots {
		probes = append(probes, domain.Probe{Slot: slot, Kind: domain.ProbeHE10, ShuntMicroOhm: 1000 * slot})
	}
	return probes
}

func durationConfig(d time.Duration) SessionConfig {
	return SessionConfig{
		Channels:          []domain.Channel{domain.Time, domain.Voltage, domain.Current},
		BufferSize:        4,
		OversamplingRatio: 1,
		Duration:          d,
		Mode:              ModeDuration,
	}
}

func TestBuildRejectsEmptyProbeList(t *testing.T) {
	if _, err := Build(newFakeCape(), nil, durationConfig(time.Second), nil); err == nil {
		t.Fatal("expected error for empty probe list")
	}
}

func TestBuildRejectsInvalidSlot(t *testing.T) {
	cape := newFakeCape(1)
	if _, err := Build(cape, probesFor(0), durationConfig(time.Second), nil); err == nil {
		t.Fatal("expected error for slot 0")
	}
}

func TestBuildRejectsDuplicateSlots(t *testing.T) {
	cape := newFakeCape(1)
	if _, err := Build(cape, probesFor(1, 1), durationConfig(time.Second), nil); err == nil {
		t.Fatal("expected error for duplicate slot")
	}
}

func TestBuildIsAllOrNothing(t *testing.T) {
	cape := newFakeCape(1, 2, 3)
	cape.sources[2].allocErr = fmt.Errorf("no memory")

	_, err := Build(cape, probesFor(1, 2, 3), durationConfig(time.Second), nil)
	if err == nil {
		t.Fatal("expected build to fail when one session cannot be configured")
	}

	// Slot 1 was configured before the failure, but nothing ever started.
	if cape.sources[1].refills != 0 {
		t.Fatalf("expected no capture on slot 1 after failed build, got %d refills", cape.sources[1].refills)
	}
	// Slot 3 is never reached.
	if cape.resolved[3] != 0 {
		t.Fatalf("expected slot 3 to stay unresolved, resolved %d times", cape.resolved[3])
	}
}

func TestBuildResolvesEachSourceOnce(t *testing.T) {
	cape := newFakeCape(1, 2)
	if _, err := Build(cape, probesFor(1, 2), durationConfig(time.Second), nil); err != nil {
		t.Fatalf("build: %v", err)
	}
	for slot, n := range cape.resolved {
		if n != 1 {
			t.Fatalf("expected slot %d resolved once, got %d", slot, n)
		}
	}
}

func TestJoinAllBeforeStart(t *testing.T) {
	cape := newFakeCape(1)
	orch, err := Build(cape, probesFor(1), durationConfig(time.Second), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := orch.JoinAll(); err == nil {
		t.Fatal("expected error joining before start")
	}
}

func TestStartAllTwiceRejected(t *testing.T) {
	cape := newFakeCape(1)
	slowRefill := func(int) error {
		time.Sleep(time.Millisecond)
		return nil
	}
	cape.sources[1].onRefill = slowRefill

	orch, err := Build(cape, probesFor(1), durationConfig(10*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := orch.StartAll(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := orch.StartAll(context.Background()); err == nil {
		t.Fatal("expected error starting twice")
	}
	if _, err := orch.JoinAll(); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func TestRunIsolatesProbeFailures(t *testing.T) {
	cape := newFakeCape(2, 1)
	cape.sources[1].onRefill = func(int) error {
		time.Sleep(time.Millisecond)
		return fmt.Errorf("refill timeout")
	}
	cape.sources[2].onRefill = func(int) error {
		time.Sleep(time.Millisecond)
		return nil
	}

	orch, err := Build(cape, probesFor(2, 1), durationConfig(20*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	results, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// Results come back ordered by slot regardless of build order.
	if results[0].Probe.Slot != 1 || results[1].Probe.Slot != 2 {
		t.Fatalf("expected results ordered by slot, got %d then %d",
			results[0].Probe.Slot, results[1].Probe.Slot)
	}

	if !results[0].Failed {
		t.Fatal("expected slot 1 to be marked failed")
	}
	if len(results[0].Series[domain.Time].Samples) != 0 {
		t.Fatal("expected no samples from a probe whose every refill failed")
	}

	if results[1].Failed {
		t.Fatal("expected slot 2 to succeed")
	}
	if len(results[1].Series[domain.Time].Samples) == 0 {
		t.Fatal("expected samples from the healthy probe")
	}
}

func TestTimingStatsPerSlot(t *testing.T) {
	cape := newFakeCape(1, 2)
	for _, src := range cape.sources {
		src.onRefill = func(int) error {
			time.Sleep(time.Millisecond)
			return nil
		}
	}

	orch, err := Build(cape, probesFor(1, 2), durationConfig(15*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := orch.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	stats, err := orch.TimingStats()
	if err != nil {
		t.Fatalf("timing stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected timing for 2 slots, got %d", len(stats))
	}
	for slot, st := range stats {
		if st.Cycles == 0 {
			t.Fatalf("expected cycles on slot %d", slot)
		}
		if st.RefillDuration.Min <= 0 {
			t.Fatalf("expected positive refill durations on slot %d", slot)
		}
		if st.RefillDuration.Min > st.RefillDuration.Max {
			t.Fatalf("slot %d: refill min %s exceeds max %s", slot, st.RefillDuration.Min, st.RefillDuration.Max)
		}
	}
}
