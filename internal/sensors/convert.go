package sensors

import "math"

// MQ-137 conversion constants, matching the field calibration.
const (
	mq137LoadResistorKOhm = 22.0
	adcVoltageReference   = 3.3
	adcMaxValue           = 4095.0
	mq137OffsetPPM        = 7.0
	mq137ScalingDiv       = 10.0
)

// Tank geometry: a frustum of a cone, dimensions in centimeters.
const (
	TankHeightCM       = 38.0
	TankRadiusTopCM    = 18.5
	TankRadiusBottomCM = 14.0
)

// TankMaxVolumeLiters is the full-tank volume for the configured frustum.
var TankMaxVolumeLiters = frustumVolumeLiters(TankHeightCM, TankRadiusBottomCM, TankRadiusTopCM)

// AmmoniaPPM converts a raw ADC count from the MQ-137 into an ammonia
// concentration. The result is clamped to be non-negative; a count of zero
// (open circuit) maps to a very large sensor resistance and so to zero ppm.
func AmmoniaPPM(adcRaw int) float64 {
	volts := float64(adcRaw) * (adcVoltageReference / adcMaxValue)
	rsKOhm := 1e5
	if volts > 0.001 {
		rsKOhm = (adcVoltageReference - volts) * mq137LoadResistorKOhm / volts
	}
	return math.Max(0, mq137OffsetPPM+(-rsKOhm/mq137ScalingDiv))
}

// WaterHeightCM converts an ultrasonic distance (sensor to water surface) into
// water height from the tank bottom, clamped to the tank's physical range.
// A NaN distance yields NaN.
func WaterHeightCM(distanceCM float64) float64 {
	if math.IsNaN(distanceCM) {
		return math.NaN()
	}
	h := TankHeightCM - distanceCM
	if h < 0 {
		return 0
	}
	if h > TankHeightCM {
		return TankHeightCM
	}
	return h
}

// VolumeLiters converts water height into liters for the conical frustum
// tank. The water surface radius at height h is interpolated linearly between
// the bottom and top radii. A NaN height yields NaN.
func VolumeLiters(heightCM float64) float64 {
	if math.IsNaN(heightCM) {
		return math.NaN()
	}
	if heightCM <= 0 {
		return 0
	}
	if heightCM >= TankHeightCM {
		return TankMaxVolumeLiters
	}
	radiusAtH := TankRadiusBottomCM + (heightCM/TankHeightCM)*(TankRadiusTopCM-TankRadiusBottomCM)
	return frustumVolumeLiters(heightCM, TankRadiusBottomCM, radiusAtH)
}

// frustumVolumeLiters is V = (πh/3)(r² + rR + R²), converted from cm³.
func frustumVolumeLiters(h, r, bigR float64) float64 {
	volCM3 := (math.Pi * h / 3) * (r*r + r*bigR + bigR*bigR)
	return volCM3 / 1000
}
