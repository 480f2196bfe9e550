package relay

import (
	"github.com/amanpro/barn-node/internal/core"
)

// FakeBank records relay writes for test assertions.
type FakeBank struct {
	// States holds the last written state per actuator.
	States map[core.Actuator]bool

	// Writes records every Set call in order.
	Writes []Write

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// Write is one recorded Set call.
type Write struct {
	Actuator core.Actuator
	On       bool
}

// NewFakeBank creates a FakeBank with all actuators OFF.
func NewFakeBank() *FakeBank {
	return &FakeBank{States: make(map[core.Actuator]bool)}
}

// Set records the write.
func (f *FakeBank) Set(a core.Actuator, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.States[a] = on
	f.Writes = append(f.Writes, Write{Actuator: a, On: on})
	return nil
}

// Close marks the bank as closed.
func (f *FakeBank) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded writes and states.
func (f *FakeBank) Reset() {
	f.States = make(map[core.Actuator]bool)
	f.Writes = nil
	f.Closed = false
	f.SetError = nil
}
