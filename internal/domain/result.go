package domain

import "time"

// Series is one channel's full concatenated sample sequence with its unit.
type Series struct {
	Unit    string
	Samples []float64
}

// Clone returns a deep copy so snapshots cannot alias live capture state.
func (s Series) Clone() Series {
	out := Series{Unit: s.Unit}
	if s.Samples != nil {
		out.Samples = make([]float64, len(s.Samples))
		copy(out.Samples, s.Samples)
	}
	return out
}

// CaptureResult is the immutable snapshot of one finished capture session.
type CaptureResult struct {
	Probe    Probe
	Duration time.Duration
	// Channels lists the enabled channels in their declared read order.
	Channels []Channel
	Series   map[Channel]Series
	// Failed is true if any refill/read cycle failed during the session.
	Failed bool
}

// Stats holds the summary statistics of one sample sequence.
type Stats struct {
	Min float64
	Max float64
	Avg float64
}

// Diagnostics carries per-probe figures derived from the time axis.
type Diagnostics struct {
	SampleCount int
	// RealDuration is the span of the normalized time axis.
	RealDuration time.Duration
	// SamplingRateHz is the effective rate over the whole capture.
	SamplingRateHz float64
}

// ReportRow is the aggregated, read-only view of one probe's capture:
// normalized time axis, derived power, and per-channel summary statistics.
type ReportRow struct {
	Probe  Probe
	Failed bool

	// Time holds the normalized time axis; its first sample is always zero.
	Time    Series
	Voltage Series
	Current Series
	// Power is Voltage*Current element-wise, scaled to mW.
	Power Series

	VoltageStats Stats
	CurrentStats Stats
	PowerStats   Stats

	Diag Diagnostics
}
