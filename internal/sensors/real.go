//go:build linux

package sensors

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/zap"
)

// Hardware wiring defaults (BCM numbering and iio sysfs paths).
const (
	DefaultPinTrig = 13
	DefaultPinEcho = 14

	DefaultTempPath     = "/sys/bus/iio/devices/iio:device0/in_temp_input"
	DefaultHumidityPath = "/sys/bus/iio/devices/iio:device0/in_humidityrelative_input"
	DefaultADCPath      = "/sys/bus/iio/devices/iio:device1/in_voltage0_raw"
)

// echoTimeout bounds the wait for the ultrasonic echo: 30 ms is roughly five
// meters, far beyond the tank.
const echoTimeout = 30 * time.Millisecond

const speedOfSoundCMPerUS = 0.0343

// Paths locates the sysfs files for the iio-attached sensors.
type Paths struct {
	Temperature string
	Humidity    string
	ADC         string
}

// DefaultPaths returns the standard iio layout.
func DefaultPaths() Paths {
	return Paths{
		Temperature: DefaultTempPath,
		Humidity:    DefaultHumidityPath,
		ADC:         DefaultADCPath,
	}
}

// RealReader reads the DHT22 and MQ-137 through the kernel iio subsystem and
// times the HC-SR04 echo through the GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	trig  *gpiocdev.Line
	echo  *gpiocdev.Line
	edges chan gpiocdev.LineEvent
	paths Paths
	log   *zap.Logger
}

// NewRealReader requests the ultrasonic GPIO lines and verifies the iio paths
// are readable. Missing iio sensors are tolerated (their channels read NaN)
// so a partially wired unit still reports what it has.
func NewRealReader(pinTrig, pinEcho int, paths Paths, log *zap.Logger) (*RealReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	r := &RealReader{
		chip:  chip,
		edges: make(chan gpiocdev.LineEvent, 8),
		paths: paths,
		log:   log,
	}

	r.trig, err = chip.RequestLine(pinTrig, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request trig pin %d: %w", pinTrig, err)
	}

	r.echo, err = chip.RequestLine(pinEcho, gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(ev gpiocdev.LineEvent) {
			select {
			case r.edges <- ev:
			default: // drop if the reader is not waiting
			}
		}))
	if err != nil {
		r.trig.Close()
		chip.Close()
		return nil, fmt.Errorf("request echo pin %d: %w", pinEcho, err)
	}

	for name, p := range map[string]string{"temperature": paths.Temperature, "humidity": paths.Humidity, "adc": paths.ADC} {
		if _, err := os.ReadFile(p); err != nil {
			log.Warn("sensor path not readable, channel will read NaN",
				zap.String("sensor", name), zap.String("path", p), zap.Error(err))
		}
	}

	return r, nil
}

// Read refreshes all channels. Failed channels come back NaN.
func (r *RealReader) Read() Readings {
	out := Absent()

	if v, err := readMilli(r.paths.Temperature); err == nil {
		out.Temperature = v
	}
	if v, err := readMilli(r.paths.Humidity); err == nil {
		out.Humidity = v
	}
	if raw, err := readInt(r.paths.ADC); err == nil {
		out.Ammonia = AmmoniaPPM(raw)
	}

	if dist := r.measureDistanceCM(); !math.IsNaN(dist) {
		out.TankVolume = VolumeLiters(WaterHeightCM(dist))
	}

	return out
}

// measureDistanceCM fires the trigger and times the echo pulse. Returns NaN
// on timeout or if no clean rising/falling pair is observed.
func (r *RealReader) measureDistanceCM() float64 {
	// Drain stale edges from a previous measurement.
	for {
		select {
		case <-r.edges:
			continue
		default:
		}
		break
	}

	if err := r.trig.SetValue(1); err != nil {
		r.log.Debug("ultrasonic trigger failed", zap.Error(err))
		return math.NaN()
	}
	time.Sleep(10 * time.Microsecond)
	if err := r.trig.SetValue(0); err != nil {
		r.log.Debug("ultrasonic trigger failed", zap.Error(err))
		return math.NaN()
	}

	deadline := time.After(echoTimeout)
	var rise time.Duration
	seenRise := false
	for {
		select {
		case ev := <-r.edges:
			if ev.Type == gpiocdev.LineEventRisingEdge {
				rise = ev.Timestamp
				seenRise = true
				continue
			}
			if !seenRise {
				continue
			}
			pulse := ev.Timestamp - rise
			if pulse <= 0 {
				return math.NaN()
			}
			return float64(pulse.Microseconds()) * speedOfSoundCMPerUS / 2
		case <-deadline:
			return math.NaN()
		}
	}
}

// Close releases GPIO resources.
func (r *RealReader) Close() error {
	var errs []error
	if r.trig != nil {
		if err := r.trig.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close trig pin: %w", err))
		}
	}
	if r.echo != nil {
		if err := r.echo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close echo pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// readMilli reads a sysfs integer expressed in thousandths (iio convention)
// and returns it as a float.
func readMilli(path string) (float64, error) {
	n, err := readInt(path)
	if err != nil {
		return 0, err
	}
	return float64(n) / 1000, nil
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return n, nil
}
