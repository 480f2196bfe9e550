// Package status provides a thread-safe status tracker for the barn-node
// daemon. It is read by the HTTP handlers while the control loop writes it.
package status

import (
	"sync"
	"time"

	"github.com/amanpro/barn-node/internal/core"
	"github.com/amanpro/barn-node/internal/sensors"
)

// Config contains daemon configuration for display.
type Config struct {
	DeviceID        string
	PollMs          int64
	SamplePeriodMin int
	Broker          string
	WebhookURL      string
	HTTPAddr        string
}

// ReportInfo describes the most recent report attempt.
type ReportInfo struct {
	Timestamp time.Time // hour boundary of the report
	Delivered bool
	Error     string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Readings      sensors.Readings
	Actuators     map[core.Actuator]bool
	FilledSlots   int
	Synced        bool
	FlushInterval int // minutes, 0 = disabled
	MQTTConnected bool
	LastReport    *ReportInfo
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Readings:  sensors.Absent(),
			Actuators: make(map[core.Actuator]bool),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets readings, actuator states, fill count, and schedule state.
// Called from the control loop on every tick.
func (t *Tracker) Update(r sensors.Readings, actuators map[core.Actuator]bool, filledSlots int, synced bool, flushInterval int) {
	t.mu.Lock()
	t.snap.Readings = r
	t.snap.Actuators = actuators
	t.snap.FilledSlots = filledSlots
	t.snap.Synced = synced
	t.snap.FlushInterval = flushInterval
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetLastReport records the outcome of the most recent report attempt.
func (t *Tracker) SetLastReport(info ReportInfo) {
	t.mu.Lock()
	t.snap.LastReport = &info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	actuators := make(map[core.Actuator]bool, len(s.Actuators))
	for a, on := range s.Actuators {
		actuators[a] = on
	}
	s.Actuators = actuators
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
