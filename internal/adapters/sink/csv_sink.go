package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

// CSVSink writes one trace file per probe: a header naming each column with
// its rail label and unit, then one row per sample index with the
// normalized time, voltage, current, and derived power values.
type CSVSink struct {
	dir      string
	basename string
}

func NewCSVSink(dir, basename string) *CSVSink {
	return &CSVSink{dir: dir, basename: basename}
}

func (s *CSVSink) Name() string { return "csv" }

// TraceFilename returns the path the trace of the given probe is written to.
func (s *CSVSink) TraceFilename(probe domain.Probe) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.csv", s.basename, probe.Label()))
}

func (s *CSVSink) WriteRow(row domain.ReportRow) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(s.TraceFilename(row.Probe))
	if err != nil {
		return err
	}
	defer f.Close()

	label := row.Probe.Label()
	w := csv.NewWriter(f)
	header := []string{
		fmt.Sprintf("Time (%s)", row.Time.Unit),
		fmt.Sprintf("%s Voltage (%s)", label, row.Voltage.Unit),
		fmt.Sprintf("%s Current (%s)", label, row.Current.Unit),
		fmt.Sprintf("%s Power (%s)", label, row.Power.Unit),
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range row.Time.Samples {
		record := []string{
			formatSample(row.Time.Samples[i]),
			formatSample(row.Voltage.Samples[i]),
			formatSample(row.Current.Samples[i]),
			formatSample(row.Power.Samples[i]),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func formatSample(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ ports.TraceSink = (*CSVSink)(nil)
