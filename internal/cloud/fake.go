package cloud

import (
	"github.com/amanpro/barn-node/internal/core"
)

// FakeChannel records published echoes and lets tests inject commands.
type FakeChannel struct {
	// CommandCh is the channel returned by Commands. Tests push into it.
	CommandCh chan Command

	// States holds the last echoed state per actuator.
	States map[core.Actuator]bool

	// StateEchoes records every PublishState call in order.
	StateEchoes []StateEcho

	// Intervals records every PublishInterval call.
	Intervals []int

	// PublishError, if set, will be returned by PublishState and
	// PublishInterval.
	PublishError error

	// Connected controls the return value of IsConnected.
	Connected bool

	// Closed tracks if Close was called.
	Closed bool
}

// StateEcho is one recorded PublishState call.
type StateEcho struct {
	Actuator core.Actuator
	On       bool
}

// NewFakeChannel creates a FakeChannel with room for queued commands.
func NewFakeChannel() *FakeChannel {
	return &FakeChannel{
		CommandCh: make(chan Command, 16),
		States:    make(map[core.Actuator]bool),
		Connected: true,
	}
}

// Commands returns the injectable command channel.
func (f *FakeChannel) Commands() <-chan Command {
	return f.CommandCh
}

// Push queues a command as if it arrived from the broker.
func (f *FakeChannel) Push(cmd Command) {
	f.CommandCh <- cmd
}

// PublishState records the echo.
func (f *FakeChannel) PublishState(a core.Actuator, on bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.States[a] = on
	f.StateEchoes = append(f.StateEchoes, StateEcho{Actuator: a, On: on})
	return nil
}

// PublishInterval records the echo.
func (f *FakeChannel) PublishInterval(minutes int) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Intervals = append(f.Intervals, minutes)
	return nil
}

// IsConnected reports the scripted connection state.
func (f *FakeChannel) IsConnected() bool {
	return f.Connected
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.Closed = true
	return nil
}
