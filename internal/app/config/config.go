package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/touilkhouloud/acme-utils/internal/app/capture"
	"github.com/touilkhouloud/acme-utils/internal/domain"
)

type Config struct {
	Cape     CapeConfig     `yaml:"cape"`
	Capture  CaptureConfig  `yaml:"capture"`
	Output   OutputConfig   `yaml:"output"`
	Postgres PostgresConfig `yaml:"postgres"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type CapeConfig struct {
	Host string `yaml:"host"`
	// Slots selects the cape slots to capture; empty means every attached
	// probe. Slots are numbered from 1 as labelled on the cape.
	Slots []int `yaml:"slots"`
	// Names optionally labels the captured power rails, one per slot.
	Names []string `yaml:"names"`
	// Simulate swaps the hardware for the offline simulated cape.
	Simulate bool `yaml:"simulate"`
}

type CaptureConfig struct {
	Duration          Duration     `yaml:"duration"`
	Mode              capture.Mode `yaml:"mode"`
	BufferSize        int          `yaml:"buffer_size"`
	OversamplingRatio int          `yaml:"oversampling_ratio"`
	AsyncReads        bool         `yaml:"async_reads"`
	Channels          []string     `yaml:"channels"`
}

// Duration wraps time.Duration so "5s" style values parse from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Basename string `yaml:"basename"`
	// NoFile disables report and trace file export entirely.
	NoFile bool `yaml:"no_file"`
}

// PostgresConfig enables the optional database trace sink when a connection
// string is set.
type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

// MetricsConfig enables the Prometheus endpoint when an address is set;
// capture diagnostics are exposed only when explicitly requested.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Cape.Host == "" {
		c.Cape.Host = "baylibre-acme.local"
	}
	if c.Capture.Duration == 0 {
		c.Capture.Duration = Duration(10 * time.Second)
	}
	if c.Capture.Mode == "" {
		c.Capture.Mode = capture.ModeDuration
	}
	if c.Capture.BufferSize == 0 {
		c.Capture.BufferSize = 127
	}
	if c.Capture.OversamplingRatio == 0 {
		c.Capture.OversamplingRatio = 1
	}
	if len(c.Capture.Channels) == 0 {
		c.Capture.Channels = []string{"Time", "Voltage", "Current"}
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "acme_samples"
	}
}

func (c *Config) Validate() error {
	if c.Capture.Mode != capture.ModeDuration && c.Capture.Mode != capture.ModeSignal {
		return fmt.Errorf("capture.mode must be %q or %q", capture.ModeDuration, capture.ModeSignal)
	}
	if c.Capture.Mode == capture.ModeDuration && c.Capture.Duration <= 0 {
		return fmt.Errorf("capture.duration must be > 0")
	}
	if c.Capture.BufferSize <= 0 {
		return fmt.Errorf("capture.buffer_size must be > 0")
	}
	if c.Capture.OversamplingRatio <= 0 {
		return fmt.Errorf("capture.oversampling_ratio must be > 0")
	}
	if _, err := c.CaptureChannels(); err != nil {
		return fmt.Errorf("capture.channels: %w", err)
	}
	seen := make(map[int]bool, len(c.Cape.Slots))
	for _, slot := range c.Cape.Slots {
		if slot <= 0 {
			return fmt.Errorf("cape.slots: slot %d invalid, slots are numbered from 1", slot)
		}
		if seen[slot] {
			return fmt.Errorf("cape.slots: slot %d listed twice", slot)
		}
		seen[slot] = true
	}
	if len(c.Cape.Names) > 0 && len(c.Cape.Names) != len(c.Cape.Slots) {
		return fmt.Errorf("cape.names: got %d names for %d slots", len(c.Cape.Names), len(c.Cape.Slots))
	}
	return nil
}

// CaptureChannels parses the configured channel names in declared order.
func (c *Config) CaptureChannels() ([]domain.Channel, error) {
	return domain.ParseChannels(c.Capture.Channels)
}

// SessionConfig builds the shared per-probe capture settings.
func (c *Config) SessionConfig() (capture.SessionConfig, error) {
	channels, err := c.CaptureChannels()
	if err != nil {
		return capture.SessionConfig{}, err
	}
	return capture.SessionConfig{
		Channels:          channels,
		BufferSize:        c.Capture.BufferSize,
		OversamplingRatio: c.Capture.OversamplingRatio,
		AsyncReads:        c.Capture.AsyncReads,
		Duration:          c.Capture.Duration.Std(),
		Mode:              c.Capture.Mode,
	}, nil
}
