//go:build !linux

package sensors

import (
	"errors"

	"go.uber.org/zap"
)

// Paths locates the sysfs files for the iio-attached sensors.
type Paths struct {
	Temperature string
	Humidity    string
	ADC         string
}

// DefaultPaths returns empty paths on non-Linux platforms.
func DefaultPaths() Paths { return Paths{} }

// Default pin assignments, unused off-Linux but kept so main compiles.
const (
	DefaultPinTrig = 13
	DefaultPinEcho = 14
)

// RealReader is not available on non-Linux platforms.
type RealReader struct{}

// NewRealReader returns an error on non-Linux platforms.
func NewRealReader(pinTrig, pinEcho int, paths Paths, log *zap.Logger) (*RealReader, error) {
	return nil, errors.New("sensors: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (r *RealReader) Read() Readings { return Absent() }

// Close is not implemented on non-Linux platforms.
func (r *RealReader) Close() error { return nil }
