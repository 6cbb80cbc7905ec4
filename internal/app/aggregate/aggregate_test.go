package aggregate

import (
	"errors"
	"testing"
	"time"

	"github.com/touilkhouloud/acme-utils/internal/domain"
)

func result(slot int, failed bool, times, voltages, currents []float64) domain.CaptureResult {
	return domain.CaptureResult{
		Probe:    domain.Probe{Slot: slot, ShuntMicroOhm: 1000 * slot},
		Channels: []domain.Channel{domain.Time, domain.Voltage, domain.Current},
		Failed:   failed,
		Series: map[domain.Channel]domain.Series{
			domain.Time:    {Unit: "ns", Samples: times},
			domain.Voltage: {Unit: "mV", Samples: voltages},
			domain.Current: {Unit: "mA", Samples: currents},
		},
	}
}

func TestReduceDerivesPower(t *testing.T) {
	results := []domain.CaptureResult{
		result(1, false,
			[]float64{0, 1_000_000, 2_000_000},
			[]float64{3700, 3700, 3700},
			[]float64{150, 150, 150}),
		result(2, false,
			[]float64{0, 1_000_000, 2_000_000},
			[]float64{5000, 5000, 5000},
			[]float64{200, 200, 200}),
	}

	rows, err := Reduce(results)
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	for _, p := range rows[0].Power.Samples {
		if p != 555 {
			t.Fatalf("expected 555 mW per sample, got %f", p)
		}
	}
	if rows[0].Power.Unit != "mW" {
		t.Fatalf("expected mW power unit, got %s", rows[0].Power.Unit)
	}
	if s := rows[0].PowerStats; s.Min != 555 || s.Max != 555 || s.Avg != 555 {
		t.Fatalf("unexpected power stats: %+v", s)
	}
	if s := rows[0].VoltageStats; s.Min != 3700 || s.Max != 3700 || s.Avg != 3700 {
		t.Fatalf("unexpected voltage stats: %+v", s)
	}
	if s := rows[0].CurrentStats; s.Avg != 150 {
		t.Fatalf("unexpected current stats: %+v", s)
	}

	for _, p := range rows[1].Power.Samples {
		if p != 1000 {
			t.Fatalf("expected 1000 mW per sample, got %f", p)
		}
	}
}

func TestReduceNormalizesTimeAxis(t *testing.T) {
	rows, err := Reduce([]domain.CaptureResult{
		result(1, false,
			[]float64{1_700_000_000_000_000, 1_700_000_001_000_000, 1_700_000_002_000_000},
			[]float64{1000, 1000, 1000},
			[]float64{1, 1, 1}),
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}

	want := []float64{0, 1_000_000, 2_000_000}
	got := rows[0].Time.Samples
	if len(got) != len(want) {
		t.Fatalf("expected %d time samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected time %f at %d, got %f", want[i], i, got[i])
		}
	}
}

func TestReduceDiagnostics(t *testing.T) {
	// 3 samples spanning 2ms gives 1500 samples/s over the normalized span.
	rows, err := Reduce([]domain.CaptureResult{
		result(1, false,
			[]float64{0, 1_000_000, 2_000_000},
			[]float64{1000, 1000, 1000},
			[]float64{1, 1, 1}),
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}

	diag := rows[0].Diag
	if diag.SampleCount != 3 {
		t.Fatalf("expected 3 samples, got %d", diag.SampleCount)
	}
	if diag.RealDuration != 2*time.Millisecond {
		t.Fatalf("expected 2ms span, got %s", diag.RealDuration)
	}
	if diag.SamplingRateHz != 1500 {
		t.Fatalf("expected 1500 Hz, got %f", diag.SamplingRateHz)
	}
}

func TestReduceStatsOrdering(t *testing.T) {
	rows, err := Reduce([]domain.CaptureResult{
		result(1, false,
			[]float64{0, 1_000_000, 2_000_000, 3_000_000},
			[]float64{3600, 3700, 3800, 3650},
			[]float64{100, 200, 150, 50}),
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}

	for _, s := range []domain.Stats{rows[0].VoltageStats, rows[0].CurrentStats, rows[0].PowerStats} {
		if s.Min > s.Avg || s.Avg > s.Max {
			t.Fatalf("expected min <= avg <= max, got %+v", s)
		}
	}
	if rows[0].VoltageStats.Min != 3600 || rows[0].VoltageStats.Max != 3800 {
		t.Fatalf("unexpected voltage extremes: %+v", rows[0].VoltageStats)
	}
	if rows[0].CurrentStats.Avg != 125 {
		t.Fatalf("expected current avg 125, got %f", rows[0].CurrentStats.Avg)
	}
}

func TestReduceCarriesFailureFlag(t *testing.T) {
	rows, err := Reduce([]domain.CaptureResult{
		result(1, true, []float64{0}, []float64{1000}, []float64{1}),
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if !rows[0].Failed {
		t.Fatal("expected failure flag to survive aggregation")
	}
}

func TestReduceEmptySeries(t *testing.T) {
	rows, err := Reduce([]domain.CaptureResult{
		result(1, true, nil, nil, nil),
	})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if rows[0].Diag.SampleCount != 0 {
		t.Fatalf("expected 0 samples, got %d", rows[0].Diag.SampleCount)
	}
	if rows[0].PowerStats != (domain.Stats{}) {
		t.Fatalf("expected zero stats for empty series, got %+v", rows[0].PowerStats)
	}
}

func TestReduceLengthMismatch(t *testing.T) {
	_, err := Reduce([]domain.CaptureResult{
		result(1, false, []float64{0, 1}, []float64{1000, 1000}, []float64{1}),
	})
	if !errors.Is(err, ErrSeriesLengthMismatch) {
		t.Fatalf("expected ErrSeriesLengthMismatch, got %v", err)
	}
}

func TestReduceMissingChannel(t *testing.T) {
	res := result(1, false, []float64{0}, []float64{1000}, []float64{1})
	delete(res.Series, domain.Current)
	_, err := Reduce([]domain.CaptureResult{res})
	if !errors.Is(err, ErrChannelMissing) {
		t.Fatalf("expected ErrChannelMissing, got %v", err)
	}
}
