package core

import "time"

type dutyState struct {
	accrued time.Duration // completed ON intervals in the current period
	running bool
	onSince time.Duration // monotonic start of the open interval, valid when running
}

// DutyCycle tracks cumulative ON time per actuator within a reporting period.
// All instants are monotonic offsets, so accounting runs whether or not the
// wall clock is synced. Only completed intervals are counted; an open interval
// is folded in explicitly at report boundaries.
type DutyCycle struct {
	states map[Actuator]*dutyState
}

// NewDutyCycle creates a DutyCycle with all counters at zero and all
// actuators considered OFF.
func NewDutyCycle() *DutyCycle {
	d := &DutyCycle{states: make(map[Actuator]*dutyState, len(Actuators))}
	for _, a := range Actuators {
		d.states[a] = &dutyState{}
	}
	return d
}

// OnActuatorChanged records a commanded-state transition at monotonic instant
// now. A transition to ON opens an interval; a transition to OFF closes it and
// adds its duration to the counter. Redundant writes (ON while ON, OFF while
// OFF or with no open interval) are no-ops, so durations can never go
// negative.
func (d *DutyCycle) OnActuatorChanged(a Actuator, on bool, now time.Duration) {
	st := d.states[a]
	if st == nil {
		return
	}
	if on {
		if st.running {
			return
		}
		st.running = true
		st.onSince = now
		return
	}
	if !st.running {
		return
	}
	if elapsed := now - st.onSince; elapsed > 0 {
		st.accrued += elapsed
	}
	st.running = false
	st.onSince = 0
}

// FoldInProgress closes the open interval of a (if any) into the counter and
// immediately reopens it at now, without changing the actuator state. Run for
// every actuator just before a report snapshot so ON time spanning the
// boundary is split between the closing and the next period.
func (d *DutyCycle) FoldInProgress(a Actuator, now time.Duration) {
	st := d.states[a]
	if st == nil || !st.running {
		return
	}
	if elapsed := now - st.onSince; elapsed > 0 {
		st.accrued += elapsed
	}
	st.onSince = now
}

// FoldAll runs FoldInProgress for every actuator.
func (d *DutyCycle) FoldAll(now time.Duration) {
	for _, a := range Actuators {
		d.FoldInProgress(a, now)
	}
}

// SnapshotAndReset returns the accumulated whole ON-seconds for a and zeroes
// the counter. An open interval's start reference is left untouched, so the
// next period picks up where the fold left off.
func (d *DutyCycle) SnapshotAndReset(a Actuator) int64 {
	st := d.states[a]
	if st == nil {
		return 0
	}
	secs := int64(st.accrued / time.Second)
	st.accrued = 0
	return secs
}
