package capture

import (
	"testing"
	"time"
)

func buildTiming(t0 time.Time, cycles int, refillDur, readDur, period time.Duration) Timing {
	var tm Timing
	for i := 0; i < cycles; i++ {
		start := t0.Add(time.Duration(i) * period)
		tm.recordRefill(start, start.Add(refillDur))
		tm.recordRead(start.Add(refillDur), start.Add(refillDur+readDur))
	}
	return tm
}

func TestTimingStatsUniformCycles(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	tm := buildTiming(t0, 4, 50*time.Millisecond, 5*time.Millisecond, 60*time.Millisecond)

	stats := tm.Stats()
	if stats.Cycles != 4 {
		t.Fatalf("expected 4 cycles, got %d", stats.Cycles)
	}
	if stats.RefillDuration.Min != 50*time.Millisecond ||
		stats.RefillDuration.Max != 50*time.Millisecond ||
		stats.RefillDuration.Avg != 50*time.Millisecond {
		t.Fatalf("unexpected refill duration stats: %+v", stats.RefillDuration)
	}
	if stats.ReadDuration.Avg != 5*time.Millisecond {
		t.Fatalf("expected 5ms avg read duration, got %s", stats.ReadDuration.Avg)
	}
	if stats.RefillDelay.Min != 60*time.Millisecond || stats.RefillDelay.Max != 60*time.Millisecond {
		t.Fatalf("unexpected refill delay stats: %+v", stats.RefillDelay)
	}
}

func TestTimingStatsMixedDurations(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	var tm Timing
	tm.recordRefill(t0, t0.Add(10*time.Millisecond))
	tm.recordRefill(t0.Add(20*time.Millisecond), t0.Add(50*time.Millisecond))
	tm.recordRefill(t0.Add(60*time.Millisecond), t0.Add(80*time.Millisecond))

	stats := tm.Stats()
	if stats.RefillDuration.Min != 10*time.Millisecond {
		t.Fatalf("expected min 10ms, got %s", stats.RefillDuration.Min)
	}
	if stats.RefillDuration.Max != 30*time.Millisecond {
		t.Fatalf("expected max 30ms, got %s", stats.RefillDuration.Max)
	}
	if stats.RefillDuration.Avg != 20*time.Millisecond {
		t.Fatalf("expected avg 20ms, got %s", stats.RefillDuration.Avg)
	}
	// Successive start deltas: 20ms and 40ms.
	if stats.RefillDelay.Min != 20*time.Millisecond || stats.RefillDelay.Max != 40*time.Millisecond {
		t.Fatalf("unexpected delay stats: %+v", stats.RefillDelay)
	}
	if stats.RefillDelay.Avg != 30*time.Millisecond {
		t.Fatalf("expected avg delay 30ms, got %s", stats.RefillDelay.Avg)
	}
}

func TestTimingStatsEmptyAndSingleCycle(t *testing.T) {
	var empty Timing
	stats := empty.Stats()
	if stats.Cycles != 0 {
		t.Fatalf("expected 0 cycles, got %d", stats.Cycles)
	}
	if stats.RefillDuration != (DurationStats{}) {
		t.Fatalf("expected zero duration stats, got %+v", stats.RefillDuration)
	}

	t0 := time.Unix(1_700_000_000, 0)
	single := buildTiming(t0, 1, 10*time.Millisecond, time.Millisecond, 0)
	stats = single.Stats()
	if stats.Cycles != 1 {
		t.Fatalf("expected 1 cycle, got %d", stats.Cycles)
	}
	// Delays need at least two cycles.
	if stats.RefillDelay != (DurationStats{}) {
		t.Fatalf("expected zero delay stats for one cycle, got %+v", stats.RefillDelay)
	}
}

func TestTimingOffsetsRelativeToFirst(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	tm := buildTiming(t0, 3, 10*time.Millisecond, time.Millisecond, 25*time.Millisecond)

	offsets := tm.RefillOffsets()
	want := []time.Duration{0, 25 * time.Millisecond, 50 * time.Millisecond}
	if len(offsets) != len(want) {
		t.Fatalf("expected %d offsets, got %d", len(want), len(offsets))
	}
	for i, d := range want {
		if offsets[i] != d {
			t.Fatalf("expected offset %s at %d, got %s", d, i, offsets[i])
		}
	}
}

func TestTimingCloneIsIndependent(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	tm := buildTiming(t0, 2, 10*time.Millisecond, time.Millisecond, 20*time.Millisecond)

	cp := tm.clone()
	tm.recordRefill(t0.Add(time.Second), t0.Add(time.Second+10*time.Millisecond))

	if cp.Cycles() != 2 {
		t.Fatalf("expected clone to keep 2 cycles, got %d", cp.Cycles())
	}
}
