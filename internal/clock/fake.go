package clock

import "time"

// Fake is a test double with settable monotonic and wall-clock time.
type Fake struct {
	// Mono is the current monotonic offset.
	Mono time.Duration

	// Now is the current wall-clock time.
	Now time.Time

	// Valid controls whether the wall clock reports as synced.
	Valid bool
}

// NewFake creates a Fake clock at the given wall time, already synced.
func NewFake(now time.Time) *Fake {
	return &Fake{Now: now, Valid: true}
}

// Monotonic returns the scripted monotonic offset.
func (f *Fake) Monotonic() time.Duration {
	return f.Mono
}

// Wall returns the scripted wall-clock time and validity.
func (f *Fake) Wall() (time.Time, bool) {
	return f.Now, f.Valid
}

// Advance moves both clocks forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.Mono += d
	f.Now = f.Now.Add(d)
}
