// Package clock supplies monotonic elapsed time and validated wall-clock time.
// The real implementation trusts the OS clock only once it is past a fixed
// epoch threshold (the kernel boots at some 1970/2000-era default until NTP
// disciplines it); until then the wall clock is reported invalid and all
// time-boundary edges stay suppressed.
package clock

import (
	"context"
	"fmt"
	"time"
)

// ValidityThreshold is the earliest wall-clock instant considered synced:
// 2000-01-01T00:00:00Z (unix 946684800).
var ValidityThreshold = time.Unix(946684800, 0)

// Clock exposes the two time sources the core needs.
type Clock interface {
	// Monotonic returns elapsed time since an arbitrary fixed origin. It
	// advances regardless of wall-clock sync and never goes backwards.
	Monotonic() time.Duration

	// Wall returns the current wall-clock time and whether it is trustworthy.
	Wall() (time.Time, bool)
}

// System is the production Clock backed by the OS.
type System struct {
	origin time.Time
}

// NewSystem creates a System clock with its monotonic origin at now.
func NewSystem() *System {
	return &System{origin: time.Now()}
}

// Monotonic returns time elapsed since the clock was created. time.Since uses
// the runtime's monotonic reading, so wall-clock steps do not affect it.
func (s *System) Monotonic() time.Duration {
	return time.Since(s.origin)
}

// Wall returns the OS wall-clock time, valid only past the epoch threshold.
func (s *System) Wall() (time.Time, bool) {
	now := time.Now()
	return now, now.After(ValidityThreshold)
}

// WaitSynced polls the wall clock until it is valid, retrying up to tries
// times with delay between attempts. It returns an error when the ceiling is
// reached or ctx is done; callers log the failure and retry at the next
// scheduled resync, they do not abort.
func WaitSynced(ctx context.Context, c Clock, tries int, delay time.Duration) error {
	for i := 0; i < tries; i++ {
		if _, ok := c.Wall(); ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if _, ok := c.Wall(); ok {
		return nil
	}
	return fmt.Errorf("wall clock not synced after %d attempts", tries)
}
