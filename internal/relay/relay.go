// Package relay drives the actuator relay bank with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package relay

import "github.com/amanpro/barn-node/internal/core"

// Bank sets actuator relay outputs. It satisfies core.Outputs.
type Bank interface {
	// Set drives the relay for a to the given logical state.
	Set(a core.Actuator, on bool) error

	// Close releases GPIO resources, driving all relays low first.
	Close() error
}

// Default pin assignments (BCM numbering), matching the field wiring.
const (
	DefaultPinPump   = 5
	DefaultPinAux    = 25
	DefaultPinCamera = 33
	DefaultPinSiren  = 32
)

// Pins maps each actuator to its GPIO line offset.
type Pins struct {
	Pump   int
	Siren  int
	Camera int
	Aux    int
}

// DefaultPins returns the standard wiring.
func DefaultPins() Pins {
	return Pins{
		Pump:   DefaultPinPump,
		Siren:  DefaultPinSiren,
		Camera: DefaultPinCamera,
		Aux:    DefaultPinAux,
	}
}

func (p Pins) offset(a core.Actuator) (int, bool) {
	switch a {
	case core.ActuatorPump:
		return p.Pump, true
	case core.ActuatorSiren:
		return p.Siren, true
	case core.ActuatorCamera:
		return p.Camera, true
	case core.ActuatorAux:
		return p.Aux, true
	}
	return 0, false
}
