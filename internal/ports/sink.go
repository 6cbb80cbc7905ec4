package ports

import "github.com/touilkhouloud/acme-utils/internal/domain"

// TraceSink persists one probe's aggregated trace (normalized time axis plus
// per-channel samples and statistics).
type TraceSink interface {
	WriteRow(row domain.ReportRow) error
	Name() string
}
