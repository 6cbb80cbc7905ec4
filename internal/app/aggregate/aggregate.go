// Package aggregate reduces completed capture results into per-probe report
// rows: normalized time axis, derived power channel, and min/max/average
// statistics. It is a strictly sequential post-processing pass, run only
// after every capture session has reached the join barrier.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"github.com/touilkhouloud/acme-utils/internal/domain"
)

// ErrSeriesLengthMismatch indicates voltage and current sequences of one
// probe differ in length. The capture loop appends cycles atomically, so a
// mismatch here is a pipeline defect, not a runtime condition to recover
// from.
var ErrSeriesLengthMismatch = errors.New("voltage/current series length mismatch")

// ErrChannelMissing indicates a required channel was not captured.
var ErrChannelMissing = errors.New("required channel missing from capture result")

// Reduce transforms capture results into report rows, one per probe,
// preserving the given (slot) order. A failed probe still yields a row; its
// failure flag is carried through unchanged.
func Reduce(results []domain.CaptureResult) ([]domain.ReportRow, error) {
	rows := make([]domain.ReportRow, 0, len(results))
	for _, res := range results {
		row, err := reduceOne(res)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func reduceOne(res domain.CaptureResult) (domain.ReportRow, error) {
	timeSeries, err := requireChannel(res, domain.Time)
	if err != nil {
		return domain.ReportRow{}, err
	}
	voltage, err := requireChannel(res, domain.Voltage)
	if err != nil {
		return domain.ReportRow{}, err
	}
	current, err := requireChannel(res, domain.Current)
	if err != nil {
		return domain.ReportRow{}, err
	}

	if len(voltage.Samples) != len(current.Samples) {
		return domain.ReportRow{}, fmt.Errorf("slot %d: %w (voltage=%d current=%d)",
			res.Probe.Slot, ErrSeriesLengthMismatch, len(voltage.Samples), len(current.Samples))
	}

	row := domain.ReportRow{
		Probe:   res.Probe,
		Failed:  res.Failed,
		Time:    domain.Series{Unit: timeSeries.Unit, Samples: normalize(timeSeries.Samples)},
		Voltage: voltage.Clone(),
		Current: current.Clone(),
		Power:   derivePower(voltage.Samples, current.Samples),
	}
	row.VoltageStats = stats(row.Voltage.Samples)
	row.CurrentStats = stats(row.Current.Samples)
	row.PowerStats = stats(row.Power.Samples)
	row.Diag = diagnostics(row.Time)
	return row, nil
}

func requireChannel(res domain.CaptureResult, ch domain.Channel) (domain.Series, error) {
	s, ok := res.Series[ch]
	if !ok {
		return domain.Series{}, fmt.Errorf("slot %d: %w: %s", res.Probe.Slot, ErrChannelMissing, ch)
	}
	return s, nil
}

// normalize subtracts the first sample from every sample, so each probe's
// time axis starts at zero regardless of its absolute capture start offset.
func normalize(samples []float64) []float64 {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out
	}
	first := samples[0]
	for i, v := range samples {
		out[i] = v - first
	}
	return out
}

// derivePower computes Power = Voltage * Current element-wise, scaled from
// the mV*mA product down to mW.
func derivePower(voltage, current []float64) domain.Series {
	samples := make([]float64, len(voltage))
	for i := range voltage {
		samples[i] = voltage[i] * current[i] / domain.PowerScaleDivisor
	}
	return domain.Series{Unit: domain.Power.Unit(), Samples: samples}
}

// stats computes min/max and the unweighted arithmetic mean over the full
// concatenated sequence. An empty sequence yields zeros.
func stats(samples []float64) domain.Stats {
	if len(samples) == 0 {
		return domain.Stats{}
	}
	s := domain.Stats{Min: samples[0], Max: samples[0]}
	var sum float64
	for _, v := range samples {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		sum += v
	}
	s.Avg = sum / float64(len(samples))
	return s
}

// diagnostics derives the effective capture span and sampling rate from the
// normalized time axis (nanosecond samples, first is always zero).
func diagnostics(timeSeries domain.Series) domain.Diagnostics {
	n := len(timeSeries.Samples)
	diag := domain.Diagnostics{SampleCount: n}
	if n < 2 {
		return diag
	}
	span := time.Duration(timeSeries.Samples[n-1]) * time.Nanosecond
	diag.RealDuration = span
	if span > 0 {
		diag.SamplingRateHz = float64(n) / span.Seconds()
	}
	return diag
}
