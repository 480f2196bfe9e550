package core

import "time"

// Edges reports which time boundaries were crossed by one Observe call.
type Edges struct {
	// Sample is true when a new sampling-slot minute has been entered.
	Sample bool
	// Report is true when a new hour has been entered.
	Report bool
}

// Scheduler edge-detects sampling-slot and report boundaries from wall-clock
// time. Detection is by value change, not elapsed-time counting, so it is
// immune to loop jitter, tolerates being polled many times per minute or less
// than once per minute, and self-corrects after a clock resync.
//
// The first valid observation only seeds the baseline: no edge fires until a
// minute or hour value change is seen, so a restart mid-hour never produces a
// partial-period report.
type Scheduler struct {
	samplePeriodMin int
	seeded          bool
	lastMinute      time.Time
	lastHour        time.Time
}

// NewScheduler creates a Scheduler firing sample edges on minutes that are
// multiples of samplePeriodMin.
func NewScheduler(samplePeriodMin int) *Scheduler {
	if samplePeriodMin <= 0 {
		samplePeriodMin = 10
	}
	return &Scheduler{samplePeriodMin: samplePeriodMin}
}

// Observe consumes the current wall-clock reading and returns the edges that
// fired. While the clock is not valid (unsynced), no edges fire and the
// baseline is not seeded. A given minute or hour value fires its edge at most
// once no matter how often Observe is called within it.
func (s *Scheduler) Observe(wall time.Time, valid bool) Edges {
	if !valid {
		return Edges{}
	}

	minute := wall.Truncate(time.Minute)
	hour := wall.Truncate(time.Hour)

	if !s.seeded {
		s.lastMinute = minute
		s.lastHour = hour
		s.seeded = true
		return Edges{}
	}

	var e Edges
	if !minute.Equal(s.lastMinute) {
		s.lastMinute = minute
		if wall.Minute()%s.samplePeriodMin == 0 {
			e.Sample = true
		}
	}
	if !hour.Equal(s.lastHour) {
		s.lastHour = hour
		e.Report = true
	}
	return e
}

// Seeded reports whether a valid wall-clock reading has been observed yet.
func (s *Scheduler) Seeded() bool {
	return s.seeded
}
