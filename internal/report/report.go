// Package report assembles and delivers the hourly telemetry record. The wire
// shape matches the spreadsheet webhook: metric averages are omitted entirely
// when no valid samples existed (never null, never zero), actuator states are
// 0/1 integers, duty-cycle seconds are always present.
package report

import (
	"encoding/json"

	"github.com/amanpro/barn-node/internal/core"
)

// timestampLayout is the hour-aligned local timestamp the sheet expects.
const timestampLayout = "2006-01-02T15:04:05"

// Payload is the JSON body of one hourly report.
type Payload struct {
	DeviceID    string   `json:"device_id"`
	Timestamp   string   `json:"timestamp"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Ammonia     *float64 `json:"ammonia,omitempty"`
	TankVolume  *float64 `json:"tank_volume,omitempty"`

	PumpState   int `json:"pump_state"`
	SirenState  int `json:"siren_state"`
	CameraState int `json:"camera_state"`
	AuxState    int `json:"aux_state"`

	PumpDutySeconds   int64 `json:"pump_duty_seconds"`
	SirenDutySeconds  int64 `json:"siren_duty_seconds"`
	CameraDutySeconds int64 `json:"camera_duty_seconds"`
	AuxDutySeconds    int64 `json:"aux_duty_seconds"`
}

// BuildPayload maps a core report onto the wire shape. The timestamp is the
// hour boundary, already truncated by the core.
func BuildPayload(r *core.Report) Payload {
	p := Payload{
		DeviceID:  r.DeviceID,
		Timestamp: r.Timestamp.Format(timestampLayout),

		PumpState:   boolToInt(r.States[core.ActuatorPump]),
		SirenState:  boolToInt(r.States[core.ActuatorSiren]),
		CameraState: boolToInt(r.States[core.ActuatorCamera]),
		AuxState:    boolToInt(r.States[core.ActuatorAux]),

		PumpDutySeconds:   r.DutySeconds[core.ActuatorPump],
		SirenDutySeconds:  r.DutySeconds[core.ActuatorSiren],
		CameraDutySeconds: r.DutySeconds[core.ActuatorCamera],
		AuxDutySeconds:    r.DutySeconds[core.ActuatorAux],
	}

	p.Temperature = optional(r.Averages, core.MetricTemperature)
	p.Humidity = optional(r.Averages, core.MetricHumidity)
	p.Ammonia = optional(r.Averages, core.MetricAmmonia)
	p.TankVolume = optional(r.Averages, core.MetricTankVolume)

	return p
}

// Format renders the payload as JSON.
func Format(r *core.Report) ([]byte, error) {
	return json.Marshal(BuildPayload(r))
}

func optional(avgs map[core.Metric]float64, m core.Metric) *float64 {
	if v, ok := avgs[m]; ok {
		return &v
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Publisher delivers one report per hour to the logging endpoint.
type Publisher interface {
	// Publish sends the report. A failed send is the caller's cue to log
	// and move on; reports are never retried.
	Publish(r *core.Report) error

	// Close releases transport resources.
	Close() error
}
