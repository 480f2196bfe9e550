package web

import (
	"encoding/json"
	"math"
	"time"

	"github.com/amanpro/barn-node/internal/core"
	"github.com/amanpro/barn-node/internal/status"
)

// StatusJSON is the JSON representation of the daemon status.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Readings      ReadingsJSON  `json:"readings"`
	Actuators     ActuatorsJSON `json:"actuators"`
	FilledSlots   int           `json:"filled_slots"`
	Synced        bool          `json:"synced"`
	FlushInterval int           `json:"flush_interval_minutes"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	LastReport    *ReportJSON   `json:"last_report,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// ReadingsJSON carries current sensor values; absent readings are null.
type ReadingsJSON struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Ammonia     *float64 `json:"ammonia"`
	TankVolume  *float64 `json:"tank_volume"`
}

// ActuatorsJSON carries commanded actuator states.
type ActuatorsJSON struct {
	Pump   bool `json:"pump"`
	Siren  bool `json:"siren"`
	Camera bool `json:"camera"`
	Aux    bool `json:"aux"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ReportJSON describes the most recent report attempt.
type ReportJSON struct {
	Timestamp string `json:"timestamp"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DeviceID        string `json:"device_id"`
	PollMs          int64  `json:"poll_ms"`
	SamplePeriodMin int    `json:"sample_period_minutes"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func formatJSON(snap status.Snapshot) []byte {
	sj := StatusJSON{
		Status: StatusInner{
			Readings: ReadingsJSON{
				Temperature: nullable(snap.Readings.Temperature),
				Humidity:    nullable(snap.Readings.Humidity),
				Ammonia:     nullable(snap.Readings.Ammonia),
				TankVolume:  nullable(snap.Readings.TankVolume),
			},
			Actuators: ActuatorsJSON{
				Pump:   snap.Actuators[core.ActuatorPump],
				Siren:  snap.Actuators[core.ActuatorSiren],
				Camera: snap.Actuators[core.ActuatorCamera],
				Aux:    snap.Actuators[core.ActuatorAux],
			},
			FilledSlots:   snap.FilledSlots,
			Synced:        snap.Synced,
			FlushInterval: snap.FlushInterval,
			UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
			StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
			Timestamp:     snap.Now.UTC().Format(time.RFC3339),
			MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
			Config: ConfigJSON{
				DeviceID:        snap.Config.DeviceID,
				PollMs:          snap.Config.PollMs,
				SamplePeriodMin: snap.Config.SamplePeriodMin,
				Broker:          snap.Config.Broker,
				HTTPAddr:        snap.Config.HTTPAddr,
			},
		},
	}

	if snap.LastReport != nil {
		sj.Status.LastReport = &ReportJSON{
			Timestamp: snap.LastReport.Timestamp.Format("2006-01-02T15:04:05"),
			Delivered: snap.LastReport.Delivered,
			Error:     snap.LastReport.Error,
		}
	}

	data, _ := json.MarshalIndent(sj, "", "  ")
	return data
}

// nullable maps NaN onto a JSON null.
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
