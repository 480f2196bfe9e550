// Package sensors provides the environmental sensor collaborators: the DHT22
// temperature/humidity pair, the MQ-137 ammonia sensor, and the HC-SR04
// ultrasonic tank level sensor. Conversion from raw readings to physical
// values is pure and tested; hardware access is abstracted behind Reader with
// a fake for tests. A failed or implausible read is NaN, never an error that
// stops the loop.
package sensors

import (
	"math"

	"github.com/amanpro/barn-node/internal/core"
)

// Readings is one iteration's sensor values. Absent readings are NaN.
type Readings struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	Ammonia     float64 // ppm
	TankVolume  float64 // liters
}

// Reader refreshes sensor values once per loop iteration.
type Reader interface {
	// Read returns the current readings. Individual failed channels come
	// back as NaN; Read itself never blocks beyond the ultrasonic echo
	// timeout.
	Read() Readings

	// Close releases any hardware resources.
	Close() error
}

// Values maps the readings onto core metrics for aggregation.
func (r Readings) Values() map[core.Metric]float64 {
	return map[core.Metric]float64{
		core.MetricTemperature: r.Temperature,
		core.MetricHumidity:    r.Humidity,
		core.MetricAmmonia:     r.Ammonia,
		core.MetricTankVolume:  r.TankVolume,
	}
}

// Absent returns Readings with every channel NaN.
func Absent() Readings {
	nan := math.NaN()
	return Readings{Temperature: nan, Humidity: nan, Ammonia: nan, TankVolume: nan}
}
