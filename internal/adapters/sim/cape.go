// Package sim provides a software-simulated ACME cape for offline
// development and tests: no hardware or network access, deterministic data.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/touilkhouloud/acme-utils/internal/domain"
	"github.com/touilkhouloud/acme-utils/internal/ports"
)

const (
	// DefaultSlotCount matches the physical cape.
	DefaultSlotCount = 8
	// DefaultRefillDelay approximates the blocking refill of the hardware.
	DefaultRefillDelay = 50 * time.Millisecond

	// timeStepNS is the simulated sampling period: one sample per ms.
	timeStepNS = 1_000_000
)

// Cape simulates the shared capture device. Each slot reports an attached
// HE10 probe whose rails carry constant, slot-derived values, so derived
// statistics are predictable: Voltage = 1000*slot mV, Current = slot mA.
type Cape struct {
	slots       int
	refillDelay time.Duration

	mu      sync.Mutex
	sources map[int]*Source
}

func NewCape(slots int, refillDelay time.Duration) *Cape {
	if slots <= 0 {
		slots = DefaultSlotCount
	}
	if refillDelay < 0 {
		refillDelay = DefaultRefillDelay
	}
	return &Cape{
		slots:       slots,
		refillDelay: refillDelay,
		sources:     make(map[int]*Source),
	}
}

func (c *Cape) IsUp() bool { return true }

func (c *Cape) SlotCount() int { return c.slots }

func (c *Cape) Probes() ([]domain.Probe, error) {
	probes := make([]domain.Probe, 0, c.slots)
	for slot := 1; slot <= c.slots; slot++ {
		probes = append(probes, domain.Probe{
			Slot:           slot,
			Kind:           domain.ProbeHE10,
			ShuntMicroOhm:  1000 * slot,
			HasPowerSwitch: false,
		})
	}
	return probes, nil
}

// Source resolves the slot's channel source, creating it on first use. The
// same source is returned for repeated calls so capture state survives
// re-resolution.
func (c *Cape) Source(slot int) (ports.ChannelSource, error) {
	if slot < 1 || slot > c.slots {
		return nil, fmt.Errorf("slot %d out of range 1..%d", slot, c.slots)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	src, ok := c.sources[slot]
	if !ok {
		src = &Source{slot: slot, refillDelay: c.refillDelay}
		c.sources[slot] = src
	}
	return src, nil
}

var _ ports.Cape = (*Cape)(nil)

// Source simulates one probe's channel/buffer primitive. It is driven by a
// single capture session, so it carries no locking of its own.
type Source struct {
	slot        int
	refillDelay time.Duration

	enabled      []domain.Channel
	oversampling int
	async        bool
	bufSize      int
	allocated    bool

	// nextTimeNS is the timestamp of the next Time sample handed out.
	nextTimeNS float64
}

func (s *Source) EnableChannel(ch domain.Channel, on bool) error {
	if !ch.Valid() {
		return fmt.Errorf("slot %d: unknown channel %s", s.slot, ch)
	}
	if on {
		for _, e := range s.enabled {
			if e == ch {
				return nil
			}
		}
		s.enabled = append(s.enabled, ch)
		return nil
	}
	for i, e := range s.enabled {
		if e == ch {
			s.enabled = append(s.enabled[:i], s.enabled[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Source) SetOversamplingRatio(ratio int) error {
	if ratio <= 0 {
		return fmt.Errorf("slot %d: oversampling ratio must be > 0, got %d", s.slot, ratio)
	}
	s.oversampling = ratio
	return nil
}

func (s *Source) SetAsyncReads(enabled bool) error {
	s.async = enabled
	return nil
}

func (s *Source) AllocateBuffer(samples int) error {
	if samples <= 0 {
		return fmt.Errorf("slot %d: buffer size must be > 0, got %d", s.slot, samples)
	}
	s.bufSize = samples
	s.allocated = true
	return nil
}

func (s *Source) Refill() error {
	if !s.allocated {
		return fmt.Errorf("slot %d: refill before buffer allocation", s.slot)
	}
	time.Sleep(s.refillDelay)
	return nil
}

func (s *Source) Read(ch domain.Channel) (ports.Buffer, error) {
	if !s.allocated {
		return ports.Buffer{}, fmt.Errorf("slot %d: read before buffer allocation", s.slot)
	}
	if !s.channelEnabled(ch) {
		return ports.Buffer{}, fmt.Errorf("slot %d: channel %s not enabled", s.slot, ch)
	}

	samples := make([]float64, s.bufSize)
	switch ch {
	case domain.Time:
		for i := range samples {
			samples[i] = s.nextTimeNS + float64(i)*timeStepNS
		}
		s.nextTimeNS += float64(s.bufSize) * timeStepNS
	case domain.Voltage:
		for i := range samples {
			samples[i] = 1000 * float64(s.slot)
		}
	default:
		for i := range samples {
			samples[i] = float64(s.slot)
		}
	}
	return ports.Buffer{Unit: ch.Unit(), Samples: samples}, nil
}

func (s *Source) SamplingFrequency() (int, error) {
	return int(time.Second / (timeStepNS * time.Nanosecond)), nil
}

func (s *Source) channelEnabled(ch domain.Channel) bool {
	for _, e := range s.enabled {
		if e == ch {
			return true
		}
	}
	return false
}

var _ ports.ChannelSource = (*Source)(nil)
