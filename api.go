package acmeutils

import (
	base "github.com/touilkhouloud/acme-utils/pkg/acmecapture"
)

// Type aliases so consumers can import github.com/touilkhouloud/acme-utils
// directly.
type (
	Config         = base.Config
	Duration       = base.Duration
	CapeConfig     = base.CapeConfig
	CaptureConfig  = base.CaptureConfig
	OutputConfig   = base.OutputConfig
	PostgresConfig = base.PostgresConfig
	MetricsConfig  = base.MetricsConfig

	Channel       = base.Channel
	Probe         = base.Probe
	ProbeKind     = base.ProbeKind
	Series        = base.Series
	Stats         = base.Stats
	CaptureResult = base.CaptureResult
	ReportRow     = base.ReportRow
	Diagnostics   = base.Diagnostics

	Cape          = base.Cape
	ChannelSource = base.ChannelSource
	Buffer        = base.Buffer
	TraceSink     = base.TraceSink
	Observability = base.Observability
	Field         = base.Field

	SessionConfig = base.SessionConfig
	Mode          = base.Mode
	TimingStats   = base.TimingStats
	DurationStats = base.DurationStats

	Runner  = base.Runner
	Option  = base.Option
	Outcome = base.Outcome
)

// Captured channel identifiers.
const (
	Time    = base.Time
	Voltage = base.Voltage
	Current = base.Current
	Power   = base.Power
)

// Capture bounding modes.
const (
	ModeDuration = base.ModeDuration
	ModeSignal   = base.ModeSignal
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// Runner and options.
func New(cfg *Config, opts ...Option) (*Runner, error) {
	return base.New(cfg, opts...)
}

func WithCape(c Cape) Option {
	return base.WithCape(c)
}

func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}

func WithTraceSink(s TraceSink) Option {
	return base.WithTraceSink(s)
}
