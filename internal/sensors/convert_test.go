package sensors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmmoniaPPMZeroCount(t *testing.T) {
	// Open circuit reads zero counts; the huge fallback resistance clamps to 0.
	assert.Equal(t, 0.0, AmmoniaPPM(0))
}

func TestAmmoniaPPMFullScale(t *testing.T) {
	// Full-scale count means Rs ~ 0, so ppm approaches the calibration offset.
	got := AmmoniaPPM(4095)
	assert.InDelta(t, 7.0, got, 0.001)
}

func TestAmmoniaPPMMidRange(t *testing.T) {
	// At half scale Rs equals the load resistor: 7.0 - 22/10 = 4.8.
	got := AmmoniaPPM(2048)
	assert.InDelta(t, 4.8, got, 0.01)
}

func TestAmmoniaPPMNeverNegative(t *testing.T) {
	for _, raw := range []int{0, 1, 10, 100, 500, 1000, 2048, 4000, 4095} {
		assert.GreaterOrEqual(t, AmmoniaPPM(raw), 0.0, "raw=%d", raw)
	}
}

func TestAmmoniaPPMMonotonic(t *testing.T) {
	// Higher counts mean lower sensor resistance and more ammonia.
	prev := AmmoniaPPM(500)
	for raw := 600; raw <= 4095; raw += 100 {
		cur := AmmoniaPPM(raw)
		assert.GreaterOrEqual(t, cur, prev, "raw=%d", raw)
		prev = cur
	}
}

func TestWaterHeight(t *testing.T) {
	assert.Equal(t, 28.0, WaterHeightCM(10))
	assert.Equal(t, 0.0, WaterHeightCM(50), "distance past the bottom clamps to empty")
	assert.Equal(t, TankHeightCM, WaterHeightCM(-2), "distance above the rim clamps to full")
	assert.True(t, math.IsNaN(WaterHeightCM(math.NaN())))
}

func TestVolumeLitersEndpoints(t *testing.T) {
	assert.Equal(t, 0.0, VolumeLiters(0))
	assert.Equal(t, 0.0, VolumeLiters(-1))
	assert.Equal(t, TankMaxVolumeLiters, VolumeLiters(TankHeightCM))
	assert.Equal(t, TankMaxVolumeLiters, VolumeLiters(100))
	assert.True(t, math.IsNaN(VolumeLiters(math.NaN())))
}

func TestVolumeLitersFullTank(t *testing.T) {
	// (π·38/3)(14² + 14·18.5 + 18.5²) cm³ ≈ 31.73 L.
	assert.InDelta(t, 31.73, TankMaxVolumeLiters, 0.01)
}

func TestVolumeLitersMonotonic(t *testing.T) {
	prev := VolumeLiters(0)
	for h := 1.0; h <= TankHeightCM; h++ {
		cur := VolumeLiters(h)
		assert.Greater(t, cur, prev, "h=%v", h)
		prev = cur
	}
}

func TestReadingsValues(t *testing.T) {
	r := Readings{Temperature: 21.5, Humidity: 60, Ammonia: 3.2, TankVolume: 12}
	vals := r.Values()
	assert.Len(t, vals, 4)
	assert.Equal(t, 21.5, vals["temperature"])
	assert.Equal(t, 60.0, vals["humidity"])
	assert.Equal(t, 3.2, vals["ammonia"])
	assert.Equal(t, 12.0, vals["tank_volume"])
}

func TestAbsent(t *testing.T) {
	for m, v := range Absent().Values() {
		assert.True(t, math.IsNaN(v), "metric %s", m)
	}
}
