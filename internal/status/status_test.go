package status

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/amanpro/barn-node/internal/core"
	"github.com/amanpro/barn-node/internal/sensors"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cfg := Config{DeviceID: "RAB-001", PollMs: 1000, SamplePeriodMin: 10, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.DeviceID != "RAB-001" {
		t.Errorf("Config.DeviceID: got %q, want RAB-001", snap.Config.DeviceID)
	}
	if snap.Config.SamplePeriodMin != 10 {
		t.Errorf("Config.SamplePeriodMin: got %d, want 10", snap.Config.SamplePeriodMin)
	}
	if !math.IsNaN(snap.Readings.Temperature) {
		t.Error("expected all-NaN readings initially")
	}
	if snap.Synced {
		t.Error("expected Synced=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
	if snap.LastReport != nil {
		t.Error("expected nil LastReport initially")
	}
}

func TestUpdateAndSnapshot(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Update(
		sensors.Readings{Temperature: 22.5, Humidity: 60, Ammonia: 3, TankVolume: 12},
		map[core.Actuator]bool{core.ActuatorPump: true},
		4, true, 30,
	)

	snap := tr.Snapshot()
	if snap.Readings.Temperature != 22.5 {
		t.Errorf("Temperature: got %v, want 22.5", snap.Readings.Temperature)
	}
	if !snap.Actuators[core.ActuatorPump] {
		t.Error("expected pump ON")
	}
	if snap.FilledSlots != 4 {
		t.Errorf("FilledSlots: got %d, want 4", snap.FilledSlots)
	}
	if !snap.Synced {
		t.Error("expected Synced=true")
	}
	if snap.FlushInterval != 30 {
		t.Errorf("FlushInterval: got %d, want 30", snap.FlushInterval)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetLastReport(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	ts := time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC)
	tr.SetLastReport(ReportInfo{Timestamp: ts, Delivered: false, Error: "status 500"})

	snap := tr.Snapshot()
	if snap.LastReport == nil {
		t.Fatal("expected non-nil LastReport")
	}
	if !snap.LastReport.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", snap.LastReport.Timestamp, ts)
	}
	if snap.LastReport.Delivered {
		t.Error("expected Delivered=false")
	}
	if snap.LastReport.Error != "status 500" {
		t.Errorf("Error: got %q, want %q", snap.LastReport.Error, "status 500")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Update(sensors.Readings{Temperature: 20}, map[core.Actuator]bool{core.ActuatorPump: true}, 1, true, 0)

	snap1 := tr.Snapshot()

	tr.Update(sensors.Readings{Temperature: 25}, map[core.Actuator]bool{core.ActuatorPump: false}, 2, true, 0)

	// snap1 should still reflect old state
	if snap1.Readings.Temperature != 20 {
		t.Error("snapshot should be a copy; Temperature was modified")
	}
	if !snap1.Actuators[core.ActuatorPump] {
		t.Error("snapshot should be a copy; actuator map was modified")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Update(sensors.Absent(), map[core.Actuator]bool{core.ActuatorSiren: i%2 == 0}, i%6, true, i%60)
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetLastReport(ReportInfo{Delivered: true})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = snap.Uptime()
		}
	}()

	wg.Wait()
}
