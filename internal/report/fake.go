package report

import (
	"github.com/amanpro/barn-node/internal/core"
)

// FakePublisher records published reports for test assertions.
type FakePublisher struct {
	// Reports contains all reports that were published.
	Reports []*core.Report

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the report.
func (f *FakePublisher) Publish(r *core.Report) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Reports = append(f.Reports, r)

	payload, err := Format(r)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded reports.
func (f *FakePublisher) Reset() {
	f.Reports = nil
	f.Payloads = nil
	f.Closed = false
	f.PublishError = nil
}
