package core

import "time"

// DefaultFlushOnDuration is how long the pump stays ON once triggered,
// regardless of what turned it on.
const DefaultFlushOnDuration = 20 * time.Second

// AutoFlush decides when the periodic tank flush should start the pump and
// when a running pump must be forced OFF. It never touches actuator state
// itself; the controller applies its decisions so that local and remote pump
// writes share one authoritative state.
type AutoFlush struct {
	interval    time.Duration // 0 disables the periodic trigger
	onDuration  time.Duration
	lastTrigger time.Duration // monotonic reference for the periodic trigger
}

// NewAutoFlush creates an AutoFlush with the given trigger interval and fixed
// ON duration. now anchors the first interval.
func NewAutoFlush(interval, onDuration time.Duration, now time.Duration) *AutoFlush {
	if onDuration <= 0 {
		onDuration = DefaultFlushOnDuration
	}
	return &AutoFlush{interval: interval, onDuration: onDuration, lastTrigger: now}
}

// SetInterval reconfigures the periodic trigger and rebases its reference to
// now, so the next trigger is a full interval after the reconfiguration, not
// after the old interval's origin. Zero (or negative) suspends the periodic
// trigger; the fixed-duration auto-off still applies to any ON state.
func (f *AutoFlush) SetInterval(interval, now time.Duration) {
	if interval < 0 {
		interval = 0
	}
	f.interval = interval
	f.lastTrigger = now
}

// Interval returns the configured trigger interval.
func (f *AutoFlush) Interval() time.Duration {
	return f.interval
}

// OnDuration returns the fixed pump ON duration.
func (f *AutoFlush) OnDuration() time.Duration {
	return f.onDuration
}

// ShouldTrigger reports whether the periodic flush should turn the pump ON at
// monotonic instant now, and advances the trigger reference when it does.
// Activation is suppressed while the pump is already ON (e.g. by a remote
// command) so a running auto-off timer is never restarted.
func (f *AutoFlush) ShouldTrigger(pumpOn bool, now time.Duration) bool {
	if f.interval <= 0 {
		return false
	}
	if now-f.lastTrigger < f.interval {
		return false
	}
	f.lastTrigger = now
	return !pumpOn
}

// ShouldAutoOff reports whether a pump that turned ON at pumpOnAt must be
// forced OFF at now.
func (f *AutoFlush) ShouldAutoOff(pumpOn bool, pumpOnAt, now time.Duration) bool {
	return pumpOn && now-pumpOnAt >= f.onDuration
}
