package capture

import "time"

// Timing passively records four parallel timestamp sequences, one entry per
// completed refill/read cycle. It is appended to only by the owning
// session's loop; all derived statistics are computed on demand afterwards.
type Timing struct {
	RefillStart []time.Time
	RefillEnd   []time.Time
	ReadStart   []time.Time
	ReadEnd     []time.Time
}

func (t *Timing) recordRefill(start, end time.Time) {
	t.RefillStart = append(t.RefillStart, start)
	t.RefillEnd = append(t.RefillEnd, end)
}

func (t *Timing) recordRead(start, end time.Time) {
	t.ReadStart = append(t.ReadStart, start)
	t.ReadEnd = append(t.ReadEnd, end)
}

// Cycles returns the number of completed refill/read cycles.
func (t *Timing) Cycles() int {
	return len(t.RefillStart)
}

// clone returns a deep copy safe to hand out after the session completed.
func (t *Timing) clone() Timing {
	return Timing{
		RefillStart: append([]time.Time(nil), t.RefillStart...),
		RefillEnd:   append([]time.Time(nil), t.RefillEnd...),
		ReadStart:   append([]time.Time(nil), t.ReadStart...),
		ReadEnd:     append([]time.Time(nil), t.ReadEnd...),
	}
}

// DurationStats summarizes a sequence of durations.
type DurationStats struct {
	Min time.Duration
	Max time.Duration
	Avg time.Duration
}

// TimingStats holds per-cycle diagnostics derived from the raw timestamp
// sequences: how long each refill/read took, and the delay between the
// starts of two consecutive cycles.
type TimingStats struct {
	Cycles int

	RefillDuration DurationStats
	RefillDelay    DurationStats
	ReadDuration   DurationStats
	ReadDelay      DurationStats
}

// Stats derives min/max/avg cycle durations and successive-difference
// delays. Delay stats require at least two cycles and are zero otherwise.
func (t *Timing) Stats() TimingStats {
	return TimingStats{
		Cycles:         t.Cycles(),
		RefillDuration: durationStats(spans(t.RefillStart, t.RefillEnd)),
		RefillDelay:    durationStats(deltas(t.RefillStart)),
		ReadDuration:   durationStats(spans(t.ReadStart, t.ReadEnd)),
		ReadDelay:      durationStats(deltas(t.ReadStart)),
	}
}

// RefillOffsets returns each refill start relative to the first one, so
// diagnostics do not depend on the absolute capture start time.
func (t *Timing) RefillOffsets() []time.Duration {
	return offsets(t.RefillStart)
}

// ReadOffsets returns each read start relative to the first one.
func (t *Timing) ReadOffsets() []time.Duration {
	return offsets(t.ReadStart)
}

func offsets(ts []time.Time) []time.Duration {
	if len(ts) == 0 {
		return nil
	}
	out := make([]time.Duration, len(ts))
	for i, v := range ts {
		out[i] = v.Sub(ts[0])
	}
	return out
}

func spans(start, end []time.Time) []time.Duration {
	n := len(start)
	if len(end) < n {
		n = len(end)
	}
	out := make([]time.Duration, n)
	for i := 0; i < n; i++ {
		out[i] = end[i].Sub(start[i])
	}
	return out
}

func deltas(ts []time.Time) []time.Duration {
	if len(ts) < 2 {
		return nil
	}
	out := make([]time.Duration, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		out[i-1] = ts[i].Sub(ts[i-1])
	}
	return out
}

func durationStats(ds []time.Duration) DurationStats {
	if len(ds) == 0 {
		return DurationStats{}
	}
	stats := DurationStats{Min: ds[0], Max: ds[0]}
	var sum time.Duration
	for _, d := range ds {
		if d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
		sum += d
	}
	stats.Avg = sum / time.Duration(len(ds))
	return stats
}
