package domain

import "fmt"

// Channel identifies one measurement stream captured from a probe.
type Channel uint8

const (
	Time Channel = iota
	Voltage
	Current
	// Power is derived from Voltage and Current after capture; it is never
	// read from the hardware directly.
	Power

	channelCount
)

// PowerScaleDivisor converts the element-wise mV*mA product into mW.
const PowerScaleDivisor = 1000.0

type channelInfo struct {
	name string
	unit string
}

var channelTable = [channelCount]channelInfo{
	Time:    {name: "Time", unit: "ns"},
	Voltage: {name: "Voltage", unit: "mV"},
	Current: {name: "Current", unit: "mA"},
	Power:   {name: "Power", unit: "mW"},
}

func (c Channel) Valid() bool {
	return c < channelCount
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
	return channelTable[c].name
}

// Unit returns the engineering unit samples of this channel are scaled to.
func (c Channel) Unit() string {
	if !c.Valid() {
		return ""
	}
	return channelTable[c].unit
}

// Derived reports whether the channel is computed rather than captured.
func (c Channel) Derived() bool {
	return c == Power
}

// ParseChannel maps a channel name from configuration to its Channel kind.
func ParseChannel(name string) (Channel, error) {
	for ch := Channel(0); ch < channelCount; ch++ {
		if channelTable[ch].name == name {
			return ch, nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", name)
}

// ParseChannels maps a list of channel names, preserving order.
func ParseChannels(names []string) ([]Channel, error) {
	out := make([]Channel, 0, len(names))
	for _, name := range names {
		ch, err := ParseChannel(name)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, nil
}
