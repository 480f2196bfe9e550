package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOutputs records Set calls without touching hardware.
type fakeOutputs struct {
	states map[Actuator]bool
	calls  int
	err    error
}

func newFakeOutputs() *fakeOutputs {
	return &fakeOutputs{states: make(map[Actuator]bool)}
}

func (f *fakeOutputs) Set(a Actuator, on bool) error {
	if f.err != nil {
		return f.err
	}
	f.states[a] = on
	f.calls++
	return nil
}

func newTestController(flushInterval time.Duration) (*Controller, *fakeOutputs) {
	out := newFakeOutputs()
	flush := NewAutoFlush(flushInterval, 20*time.Second, 0)
	return NewController("RAB-001", 10, flush, out), out
}

func wallAt(h, m, s int) time.Time {
	return time.Date(2026, 3, 15, h, m, s, 0, time.UTC)
}

func values(temp, hum, nh3, vol float64) map[Metric]float64 {
	return map[Metric]float64{
		MetricTemperature: temp,
		MetricHumidity:    hum,
		MetricAmmonia:     nh3,
		MetricTankVolume:  vol,
	}
}

func TestControllerSetActuatorMirrorsOutput(t *testing.T) {
	c, out := newTestController(0)

	require.NoError(t, c.SetActuator(ActuatorSiren, true, 5*time.Second))
	assert.True(t, c.ActuatorState(ActuatorSiren))
	assert.True(t, out.states[ActuatorSiren])

	// Redundant write is a no-op, physical output untouched.
	callsBefore := out.calls
	require.NoError(t, c.SetActuator(ActuatorSiren, true, 6*time.Second))
	assert.Equal(t, callsBefore, out.calls)
}

func TestControllerUnknownActuator(t *testing.T) {
	c, _ := newTestController(0)
	assert.Error(t, c.SetActuator(Actuator("heater"), true, 0))
}

func TestControllerStoresSampleOnSlotEdge(t *testing.T) {
	c, _ := newTestController(0)

	// Seed the schedule.
	c.Tick(TickInput{Wall: wallAt(12, 9, 0), WallValid: true, Values: values(30, 80, 5, 20)})

	res := c.Tick(TickInput{Wall: wallAt(12, 10, 0), WallValid: true, Values: values(30, 80, 5, 20)})
	assert.True(t, res.SampleStored)
	assert.Equal(t, 1, c.FilledSlots())

	// Same minute polled again: no second store.
	res = c.Tick(TickInput{Wall: wallAt(12, 10, 1), WallValid: true, Values: values(31, 81, 6, 21)})
	assert.False(t, res.SampleStored)
	assert.Equal(t, 1, c.FilledSlots())
}

func TestControllerInvalidValuesSkipped(t *testing.T) {
	c, _ := newTestController(0)
	c.Tick(TickInput{Wall: wallAt(12, 9, 0), WallValid: true})

	// Humidity out of range, ammonia missing entirely.
	vals := map[Metric]float64{
		MetricTemperature: 30,
		MetricHumidity:    140,
		MetricTankVolume:  20,
	}
	res := c.Tick(TickInput{Wall: wallAt(12, 10, 0), WallValid: true, Values: vals})
	require.True(t, res.SampleStored)

	rep := reportAfterHour(t, c, 13)
	assert.InDelta(t, 30.0, rep.Averages[MetricTemperature], 1e-9)
	_, hasHum := rep.Averages[MetricHumidity]
	assert.False(t, hasHum, "out-of-range humidity must be omitted")
	_, hasNH3 := rep.Averages[MetricAmmonia]
	assert.False(t, hasNH3, "absent ammonia must be omitted")
}

// reportAfterHour drives the controller across the given hour boundary and
// returns the produced report.
func reportAfterHour(t *testing.T, c *Controller, hour int) *Report {
	t.Helper()
	res := c.Tick(TickInput{Wall: wallAt(hour, 0, 0), WallValid: true, Values: values(
		math.NaN(), math.NaN(), math.NaN(), math.NaN())})
	require.NotNil(t, res.Report)
	return res.Report
}

func TestControllerReportAssembly(t *testing.T) {
	c, _ := newTestController(0)
	c.SetActuator(ActuatorCamera, true, 0)

	c.Tick(TickInput{Wall: wallAt(12, 9, 0), WallValid: true})
	c.Tick(TickInput{Mono: 60 * time.Second, Wall: wallAt(12, 10, 0), WallValid: true,
		Values: values(30.04, 80, 5, 20)})
	c.Tick(TickInput{Mono: 120 * time.Second, Wall: wallAt(12, 20, 0), WallValid: true,
		Values: values(31.0, 82, 5, 20)})

	res := c.Tick(TickInput{Mono: 3600 * time.Second, Wall: wallAt(13, 0, 0), WallValid: true,
		Values: values(30, 80, 5, 20)})
	require.NotNil(t, res.Report)
	rep := res.Report

	assert.Equal(t, "RAB-001", rep.DeviceID)
	assert.Equal(t, wallAt(13, 0, 0), rep.Timestamp, "timestamp is the hour boundary")
	assert.InDelta(t, 30.5, rep.Averages[MetricTemperature], 1e-9, "rounded to one decimal")
	assert.InDelta(t, 81.0, rep.Averages[MetricHumidity], 1e-9)
	assert.True(t, rep.States[ActuatorCamera])
	assert.False(t, rep.States[ActuatorPump])

	// Camera ON since t=0, folded at the boundary.
	assert.Equal(t, int64(3600), rep.DutySeconds[ActuatorCamera])
	assert.Equal(t, int64(0), rep.DutySeconds[ActuatorPump])

	// Window cleared for the next period.
	assert.Equal(t, 0, c.FilledSlots())
}

func TestControllerReportEdgeWithZeroSamples(t *testing.T) {
	c, _ := newTestController(0)
	c.SetActuator(ActuatorSiren, true, 0)
	c.Tick(TickInput{Mono: 10 * time.Second, Wall: wallAt(12, 59, 0), WallValid: true})

	res := c.Tick(TickInput{Mono: 70 * time.Second, Wall: wallAt(13, 0, 30), WallValid: true})
	assert.Nil(t, res.Report, "no payload for an empty hour")
	assert.True(t, res.WindowCleared)

	// Duty counters were still drained: the next report only carries
	// post-boundary ON time.
	c.Tick(TickInput{Mono: 100 * time.Second, Wall: wallAt(13, 10, 0), WallValid: true,
		Values: values(30, 80, 5, 20)})
	res = c.Tick(TickInput{Mono: 130 * time.Second, Wall: wallAt(14, 0, 0), WallValid: true})
	require.NotNil(t, res.Report)
	assert.Equal(t, int64(60), res.Report.DutySeconds[ActuatorSiren])
}

func TestControllerRemotePumpAutoOffOnce(t *testing.T) {
	c, out := newTestController(0)

	// Remote command turns the pump ON at t=100s.
	require.NoError(t, c.SetActuator(ActuatorPump, true, 100*time.Second))
	assert.True(t, out.states[ActuatorPump])

	// Polls before the fixed duration: stays ON.
	res := c.Tick(TickInput{Mono: 119 * time.Second})
	assert.False(t, res.PumpAutoOff)
	assert.True(t, c.ActuatorState(ActuatorPump))

	// 20s elapsed: exactly one OFF transition.
	res = c.Tick(TickInput{Mono: 120 * time.Second})
	assert.True(t, res.PumpAutoOff)
	assert.False(t, c.ActuatorState(ActuatorPump))
	assert.False(t, out.states[ActuatorPump])

	// Subsequent polls emit nothing further.
	res = c.Tick(TickInput{Mono: 121 * time.Second})
	assert.False(t, res.PumpAutoOff)

	assert.Equal(t, int64(20), c.duty.SnapshotAndReset(ActuatorPump),
		"duty cycle reflects the fixed duration")
}

func TestControllerPeriodicFlushCycle(t *testing.T) {
	c, _ := newTestController(30 * time.Minute)

	res := c.Tick(TickInput{Mono: 29 * time.Minute})
	assert.False(t, res.PumpAutoOn)

	res = c.Tick(TickInput{Mono: 30 * time.Minute})
	assert.True(t, res.PumpAutoOn)
	assert.True(t, c.ActuatorState(ActuatorPump))

	res = c.Tick(TickInput{Mono: 30*time.Minute + 20*time.Second})
	assert.True(t, res.PumpAutoOff)
	assert.False(t, c.ActuatorState(ActuatorPump))
}

func TestControllerSetFlushIntervalRebases(t *testing.T) {
	c, _ := newTestController(30 * time.Minute)

	// Reconfigure at t=25m to 15m: trigger at t=40m, not t=30m.
	c.SetFlushInterval(15, 25*time.Minute)
	assert.Equal(t, 15, c.FlushIntervalMinutes())

	res := c.Tick(TickInput{Mono: 30 * time.Minute})
	assert.False(t, res.PumpAutoOn)
	res = c.Tick(TickInput{Mono: 40 * time.Minute})
	assert.True(t, res.PumpAutoOn)
}

func TestControllerNoEdgesWhileUnsynced(t *testing.T) {
	c, _ := newTestController(0)

	for i := 0; i < 10; i++ {
		res := c.Tick(TickInput{
			Mono:      time.Duration(i) * time.Minute,
			Wall:      wallAt(12, 10*((i/2)%6), 0),
			WallValid: false,
			Values:    values(30, 80, 5, 20),
		})
		assert.False(t, res.SampleStored)
		assert.Nil(t, res.Report)
	}
	assert.False(t, c.Synced())
}

func TestControllerOutputErrorKeepsCommandedState(t *testing.T) {
	c, out := newTestController(0)
	out.err = assert.AnError

	err := c.SetActuator(ActuatorAux, true, 0)
	assert.Error(t, err)
	assert.True(t, c.ActuatorState(ActuatorAux), "commanded state is authoritative")
}
