package core

import (
	"fmt"
	"math"
	"time"
)

// TickInput carries everything one loop iteration feeds the controller:
// monotonic and wall-clock time plus the sensor values read this iteration.
// Absent or failed readings are NaN.
type TickInput struct {
	Mono      time.Duration
	Wall      time.Time
	WallValid bool
	Values    map[Metric]float64
}

// TickResult describes what one Tick did, for the loop to log and echo.
type TickResult struct {
	// SampleStored is true when a sampling-slot edge stored this iteration's
	// values into the aggregation window.
	SampleStored bool
	// Report is non-nil when a report edge produced a publishable record.
	Report *Report
	// WindowCleared is true when a report edge fired with zero samples: no
	// payload, but windows and duty counters were still reset.
	WindowCleared bool
	// PumpAutoOn is true when the periodic flush turned the pump ON.
	PumpAutoOn bool
	// PumpAutoOff is true when the fixed-duration timer forced the pump OFF.
	PumpAutoOff bool
	// OutputErrs collects physical output failures; commanded state is
	// authoritative regardless.
	OutputErrs []error
}

// Controller owns the shared mutable state of the node: commanded actuator
// states, the aggregation window, the schedule, duty-cycle counters, and the
// auto-flush timers. All mutation entry points (Tick, SetActuator,
// SetFlushInterval) must be called from a single goroutine.
type Controller struct {
	deviceID string
	agg      *Aggregator
	sched    *Scheduler
	duty     *DutyCycle
	flush    *AutoFlush
	outputs  Outputs

	states   map[Actuator]bool
	pumpOnAt time.Duration // monotonic instant of the last OFF->ON pump transition
}

// NewController wires the core components around one Outputs implementation.
// All actuators start OFF with their physical outputs driven low.
func NewController(deviceID string, samplePeriodMin int, flush *AutoFlush, outputs Outputs) *Controller {
	c := &Controller{
		deviceID: deviceID,
		agg:      NewAggregator(),
		sched:    NewScheduler(samplePeriodMin),
		duty:     NewDutyCycle(),
		flush:    flush,
		outputs:  outputs,
		states:   make(map[Actuator]bool, len(Actuators)),
	}
	for _, a := range Actuators {
		c.states[a] = false
	}
	return c
}

// SetActuator is the single mutation entry point for commanded actuator
// state, used by remote commands and by the auto-flush logic alike. It
// updates the commanded state, the duty-cycle start reference, and the
// physical output in one step; a redundant write is a no-op. For the pump,
// an OFF->ON transition also records the start reference used by the
// auto-off timer.
func (c *Controller) SetActuator(a Actuator, on bool, now time.Duration) error {
	if _, ok := c.states[a]; !ok {
		return fmt.Errorf("unknown actuator %q", a)
	}
	if c.states[a] == on {
		return nil
	}
	c.states[a] = on
	c.duty.OnActuatorChanged(a, on, now)
	if a == ActuatorPump && on {
		c.pumpOnAt = now
	}
	if err := c.outputs.Set(a, on); err != nil {
		return fmt.Errorf("set %s output: %w", a, err)
	}
	return nil
}

// ActuatorState returns the commanded state of a.
func (c *Controller) ActuatorState(a Actuator) bool {
	return c.states[a]
}

// ActuatorStates returns a copy of all commanded states.
func (c *Controller) ActuatorStates() map[Actuator]bool {
	out := make(map[Actuator]bool, len(c.states))
	for a, on := range c.states {
		out[a] = on
	}
	return out
}

// SetFlushInterval reconfigures the periodic flush trigger, rebasing its
// reference to now.
func (c *Controller) SetFlushInterval(minutes int, now time.Duration) {
	c.flush.SetInterval(time.Duration(minutes)*time.Minute, now)
}

// FlushIntervalMinutes returns the configured flush interval in minutes.
func (c *Controller) FlushIntervalMinutes() int {
	return int(c.flush.Interval() / time.Minute)
}

// FilledSlots exposes the aggregation fill count for status display.
func (c *Controller) FilledSlots() int {
	return c.agg.FilledSlots()
}

// Synced reports whether the schedule has seen a valid wall-clock reading.
func (c *Controller) Synced() bool {
	return c.sched.Seeded()
}

// Tick runs one iteration of the control cycle: consult the scheduler, store
// samples on a slot edge, assemble and reset on a report edge, then run the
// auto-flush trigger and auto-off checks. Sensor values must have been read
// in the same iteration so samples reflect current readings.
func (c *Controller) Tick(in TickInput) TickResult {
	var res TickResult

	edges := c.sched.Observe(in.Wall, in.WallValid)

	if edges.Sample {
		for _, m := range Metrics {
			v, ok := in.Values[m]
			if !ok {
				continue
			}
			if v = ClampValid(m, v); !math.IsNaN(v) {
				c.agg.Store(m, v)
			}
		}
		res.SampleStored = true
	}

	if edges.Report {
		c.duty.FoldAll(in.Mono)
		if c.agg.FilledSlots() > 0 {
			res.Report = c.buildReport(in.Wall)
		} else {
			for _, a := range Actuators {
				c.duty.SnapshotAndReset(a)
			}
			res.WindowCleared = true
		}
		c.agg.Reset()
	}

	if c.flush.ShouldTrigger(c.states[ActuatorPump], in.Mono) {
		if err := c.SetActuator(ActuatorPump, true, in.Mono); err != nil {
			res.OutputErrs = append(res.OutputErrs, err)
		}
		res.PumpAutoOn = true
	}
	if c.flush.ShouldAutoOff(c.states[ActuatorPump], c.pumpOnAt, in.Mono) {
		if err := c.SetActuator(ActuatorPump, false, in.Mono); err != nil {
			res.OutputErrs = append(res.OutputErrs, err)
		}
		res.PumpAutoOff = true
	}

	return res
}

// buildReport assembles the outbound record and drains the per-actuator duty
// counters. Averages are rounded to one decimal; metrics with no valid
// samples are omitted.
func (c *Controller) buildReport(wall time.Time) *Report {
	r := &Report{
		DeviceID:    c.deviceID,
		Timestamp:   wall.Truncate(time.Hour),
		Averages:    make(map[Metric]float64, len(Metrics)),
		States:      c.ActuatorStates(),
		DutySeconds: make(map[Actuator]int64, len(Actuators)),
	}
	for _, m := range Metrics {
		avg := c.agg.Average(m)
		if !math.IsNaN(avg) {
			r.Averages[m] = math.Round(avg*10) / 10
		}
	}
	for _, a := range Actuators {
		r.DutySeconds[a] = c.duty.SnapshotAndReset(a)
	}
	return r
}
