// Package core contains pure business logic for the barn node: wall-clock
// scheduling, sample aggregation, duty-cycle accounting, and auto-flush
// control. This package has NO external dependencies (no GPIO, MQTT, HTTP, OS,
// or time.Sleep). Time is always injectable: wall-clock time arrives as
// time.Time values and monotonic time as time.Duration offsets.
package core

import "time"

// Metric identifies one of the averaged sensor channels.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricAmmonia     Metric = "ammonia"
	MetricTankVolume  Metric = "tank_volume"
)

// Metrics lists all metrics in report order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricAmmonia, MetricTankVolume}

// Actuator identifies one of the relay-driven outputs.
type Actuator string

const (
	ActuatorPump   Actuator = "pump"
	ActuatorSiren  Actuator = "siren"
	ActuatorCamera Actuator = "camera"
	ActuatorAux    Actuator = "aux"
)

// Actuators lists all actuators in report order.
var Actuators = []Actuator{ActuatorPump, ActuatorSiren, ActuatorCamera, ActuatorAux}

// Outputs mirrors commanded actuator state onto physical outputs (relays).
// Implementations must be cheap and non-blocking; errors are reported to the
// caller but never change commanded state.
type Outputs interface {
	Set(a Actuator, on bool) error
}

// Report is an immutable snapshot assembled at a report edge.
// Averages holds rounded per-metric means; a metric with no valid samples in
// the period is absent from the map (not zero). DutySeconds holds whole
// ON-seconds per actuator for the closed period.
type Report struct {
	DeviceID    string
	Timestamp   time.Time // wall-clock hour, truncated to the hour boundary
	Averages    map[Metric]float64
	States      map[Actuator]bool
	DutySeconds map[Actuator]int64
}
