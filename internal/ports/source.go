package ports

import "github.com/touilkhouloud/acme-utils/internal/domain"

// Buffer is one buffer's worth of samples for a single channel, already
// scaled to the channel's engineering unit.
type Buffer struct {
	Unit    string
	Samples []float64
}

// ChannelSource is the per-probe channel/buffer access primitive. A source
// must be driven by exactly one capture session for the session's lifetime;
// implementations do not need to tolerate concurrent calls on one source.
type ChannelSource interface {
	EnableChannel(ch domain.Channel, on bool) error
	SetOversamplingRatio(ratio int) error
	SetAsyncReads(enabled bool) error
	AllocateBuffer(samples int) error

	// Refill blocks until the capture buffer holds a fresh set of samples.
	Refill() error
	// Read blocks and returns the scaled samples of one channel from the
	// last refilled buffer.
	Read(ch domain.Channel) (Buffer, error)

	// SamplingFrequency reports the hardware rate in Hz; callers use it to
	// size buffers, the capture loop itself never calls it.
	SamplingFrequency() (int, error)
}

// Cape abstracts the shared capture device: reachability, probe inventory,
// and resolution of each slot's dedicated channel source. Source must be
// safe to call for different slots from different goroutines.
type Cape interface {
	IsUp() bool
	SlotCount() int
	Probes() ([]domain.Probe, error)
	Source(slot int) (ChannelSource, error)
}
