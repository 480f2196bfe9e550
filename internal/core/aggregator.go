package core

import "math"

// WindowSize is the per-metric window capacity: one hour of ten-minute slots.
const WindowSize = 6

type window struct {
	vals [WindowSize]float64
	n    int
}

// Aggregator accumulates one hour of per-metric samples and produces NaN-aware
// averages. Invalid samples are stored as NaN and excluded from the mean.
type Aggregator struct {
	windows map[Metric]*window
}

// NewAggregator creates an empty Aggregator covering all metrics.
func NewAggregator() *Aggregator {
	a := &Aggregator{windows: make(map[Metric]*window, len(Metrics))}
	for _, m := range Metrics {
		a.windows[m] = &window{}
	}
	return a
}

// Store appends value into the current window for m. Storing into a full
// window is a no-op: the scheduler's edge uniqueness should make that
// unreachable, and overwriting would corrupt the period.
func (a *Aggregator) Store(m Metric, value float64) {
	w := a.windows[m]
	if w == nil || w.n >= WindowSize {
		return
	}
	w.vals[w.n] = value
	w.n++
}

// Average returns the arithmetic mean of the non-NaN entries stored for m,
// or NaN if there are none.
func (a *Aggregator) Average(m Metric) float64 {
	w := a.windows[m]
	if w == nil {
		return math.NaN()
	}
	sum := 0.0
	valid := 0
	for i := 0; i < w.n; i++ {
		if !math.IsNaN(w.vals[i]) {
			sum += w.vals[i]
			valid++
		}
	}
	if valid == 0 {
		return math.NaN()
	}
	return sum / float64(valid)
}

// Count returns the number of stored entries (valid or NaN) for m.
func (a *Aggregator) Count(m Metric) int {
	if w := a.windows[m]; w != nil {
		return w.n
	}
	return 0
}

// FilledSlots returns the largest fill count across all metrics. A report is
// only produced when this is greater than zero.
func (a *Aggregator) FilledSlots() int {
	max := 0
	for _, w := range a.windows {
		if w.n > max {
			max = w.n
		}
	}
	return max
}

// Reset clears all windows and fill counters for the next reporting period.
func (a *Aggregator) Reset() {
	for _, w := range a.windows {
		*w = window{}
	}
}

// ClampValid returns value if it is inside the plausible physical band for m,
// or NaN otherwise. Callers run samples through this before Store so an
// implausible reading never skews the mean.
func ClampValid(m Metric, value float64) float64 {
	if math.IsNaN(value) {
		return math.NaN()
	}
	switch m {
	case MetricTemperature:
		if value > -40 && value < 80 {
			return value
		}
	case MetricHumidity:
		if value >= 0 && value <= 100 {
			return value
		}
	case MetricAmmonia, MetricTankVolume:
		if value >= 0 {
			return value
		}
	}
	return math.NaN()
}
