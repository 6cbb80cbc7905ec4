package acmecapture

import (
	"github.com/touilkhouloud/acme-utils/internal/app/capture"
	"github.com/touilkhouloud/acme-utils/internal/app/config"
	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

// Aliases so consumers can name the capture types without reaching into
// internal packages.
type (
	Config         = config.Config
	Duration       = config.Duration
	CapeConfig     = config.CapeConfig
	CaptureConfig  = config.CaptureConfig
	OutputConfig   = config.OutputConfig
	PostgresConfig = config.PostgresConfig
	MetricsConfig  = config.MetricsConfig

	Channel       = domain.Channel
	Probe         = domain.Probe
	ProbeKind     = domain.ProbeKind
	Series        = domain.Series
	Stats         = domain.Stats
	CaptureResult = domain.CaptureResult
	ReportRow     = domain.ReportRow
	Diagnostics   = domain.Diagnostics

	Cape          = ports.Cape
	ChannelSource = ports.ChannelSource
	Buffer        = ports.Buffer
	TraceSink     = ports.TraceSink
	Observability = ports.Observability
	Field         = ports.Field

	SessionConfig = capture.SessionConfig
	Mode          = capture.Mode
	TimingStats   = capture.TimingStats
	DurationStats = capture.DurationStats
)

// Captured channel identifiers.
const (
	Time    = domain.Time
	Voltage = domain.Voltage
	Current = domain.Current
	Power   = domain.Power
)

// Capture bounding modes.
const (
	ModeDuration = capture.ModeDuration
	ModeSignal   = capture.ModeSignal
)

// LoadConfig reads, defaults, and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
