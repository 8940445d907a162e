package sample

import "time"

// Submitter is the collector mailbox's send side, as seen by a
// SampleFactory. It is satisfied by *mailbox.Mailbox[*Sample]; kept as
// an interface here so the sample package does not need to know about
// the collector actor that owns the receive side.
type Submitter interface {
	Send(*Sample) bool
}

// SubmitResult reports what happened to a submitted Sample.
type SubmitResult int

const (
	Submitted SubmitResult = iota
	Shutdown               // the collector is gone; caller should stop producing samples
)

// Factory is cloneable per-worker metadata plus a handle to the
// collector mailbox and the configured sample window. A worker builds
// one Factory and shares it across all of its slots.
type Factory struct {
	Metadata Metadata
	Window   time.Duration
	sink     Submitter
}

// NewFactory builds a Factory for md, sealing Samples every window and
// submitting them to sink.
func NewFactory(md Metadata, window time.Duration, sink Submitter) *Factory {
	return &Factory{Metadata: md, Window: window, sink: sink}
}

// NewSample constructs an empty Sample carrying this factory's
// metadata and the given tag.
func (f *Factory) NewSample(tag uint64) *Sample {
	return New(f.Metadata, tag)
}

// ShouldSubmit reports whether the window opened at windowStart has
// elapsed.
func (f *Factory) ShouldSubmit(windowStart time.Time) bool {
	return time.Since(windowStart) >= f.Window
}

// SubmitSample attempts a non-blocking send of s to the collector
// mailbox. The mailbox is unbounded, so the only failure mode is the
// collector having gone away, reported as Shutdown.
func (f *Factory) SubmitSample(s *Sample) SubmitResult {
	if f.sink.Send(s) {
		return Submitted
	}
	return Shutdown
}
