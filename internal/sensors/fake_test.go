package sensors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFakeReaderScripted(t *testing.T) {
	f := NewFakeReader(
		Readings{Temperature: 20},
		Readings{Temperature: 21},
	)

	assert.Equal(t, 20.0, f.Read().Temperature)
	assert.Equal(t, 21.0, f.Read().Temperature)
	// Exhausted scripts repeat the last reading.
	assert.Equal(t, 21.0, f.Read().Temperature)

	f.Reset()
	assert.Equal(t, 20.0, f.Read().Temperature)
}

func TestFakeReaderEmptyIsAbsent(t *testing.T) {
	f := NewFakeReader()
	r := f.Read()
	assert.True(t, math.IsNaN(r.Temperature))
	assert.True(t, math.IsNaN(r.TankVolume))
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader()
	assert.NoError(t, f.Close())
	assert.True(t, f.Closed)
}
