package sensors

// FakeReader is a test double that returns scripted readings.
type FakeReader struct {
	// Samples contains scripted readings. Each call to Read consumes the
	// next one; when exhausted, the last is returned repeatedly.
	Samples []Readings

	index int

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...Readings) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted reading, or all-NaN if none are configured.
func (f *FakeReader) Read() Readings {
	if len(f.Samples) == 0 {
		return Absent()
	}
	r := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return r
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the first sample.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
