package domain

import "fmt"

// ProbeKind is the physical connector family of an ACME probe.
type ProbeKind string

const (
	ProbeJack ProbeKind = "JACK"
	ProbeUSB  ProbeKind = "USB"
	ProbeHE10 ProbeKind = "HE10"
)

// Probe identifies one physical measurement probe attached to a cape slot.
// It is produced by discovery and never mutated by the capture pipeline.
type Probe struct {
	// Slot is the attachment position as labelled on the cape, 1-based.
	Slot int
	Kind ProbeKind
	// ShuntMicroOhm is the reference shunt resistor value in micro-ohm.
	ShuntMicroOhm int
	// HasPowerSwitch reports whether the probe can cut power to the rail.
	HasPowerSwitch bool
	// Name is an optional user label for the measured power rail.
	Name string
}

// Label returns the rail name, or a slot-derived fallback when unnamed.
func (p Probe) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Slot_%d", p.Slot)
}

// ShuntMilliOhm returns the shunt value in milli-ohm, as shown in reports.
func (p Probe) ShuntMilliOhm() float64 {
	return float64(p.ShuntMicroOhm) / 1000.0
}
