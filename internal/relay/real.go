//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/amanpro/barn-node/internal/core"
)

// RealBank drives relays through the Linux GPIO character device.
type RealBank struct {
	chip  *gpiocdev.Chip
	lines map[core.Actuator]*gpiocdev.Line
	pins  Pins
}

// NewRealBank requests all four relay lines as outputs, initially low (all
// actuators OFF).
func NewRealBank(pins Pins) (*RealBank, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealBank{
		chip:  chip,
		lines: make(map[core.Actuator]*gpiocdev.Line, len(core.Actuators)),
		pins:  pins,
	}
	for _, a := range core.Actuators {
		offset, ok := pins.offset(a)
		if !ok {
			b.Close()
			return nil, fmt.Errorf("no pin for actuator %s", a)
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", a, offset, err)
		}
		b.lines[a] = line
	}
	return b, nil
}

// Set drives the relay for a. The relay modules are active-high.
func (b *RealBank) Set(a core.Actuator, on bool) error {
	line, ok := b.lines[a]
	if !ok {
		return fmt.Errorf("unknown actuator %q", a)
	}
	v := 0
	if on {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		return fmt.Errorf("set %s pin: %w", a, err)
	}
	return nil
}

// Close drives every relay low and releases GPIO resources, so a daemon
// restart never leaves the pump or siren latched ON.
func (b *RealBank) Close() error {
	var errs []error
	for a, line := range b.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear %s pin: %w", a, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", a, err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
