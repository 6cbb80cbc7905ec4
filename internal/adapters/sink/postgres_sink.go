package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

// PostgresSink persists aggregated traces into a Postgres/Timescale table,
// one database row per sample index.
type PostgresSink struct {
	db        *sql.DB
	tableName string
}

func NewPostgresSink(db *sql.DB, table string) *PostgresSink {
	return &PostgresSink{db: db, tableName: table}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) WriteRow(row domain.ReportRow) error {
	if len(row.Time.Samples) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(s.tableName)
	b.WriteString(" (slot, rail, ts_ns, voltage_mv, current_ma, power_mw) VALUES ")

	args := make([]any, 0, len(row.Time.Samples)*6)
	for i := range row.Time.Samples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5, len(args)+6))

		args = append(args,
			row.Probe.Slot,
			row.Probe.Label(),
			int64(row.Time.Samples[i]),
			row.Voltage.Samples[i],
			row.Current.Samples[i],
			row.Power.Samples[i],
		)
	}

	b.WriteString(" ON CONFLICT (slot, ts_ns) DO NOTHING")

	_, err := s.db.Exec(b.String(), args...)
	return err
}

var _ ports.TraceSink = (*PostgresSink)(nil)
