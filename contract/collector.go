package contract

import (
	"context"

	"github.com/rewrkio/rewrk/sample"
)

// SampleCollector is the external collaborator that receives sealed
// Samples, one at a time, in the order the collector actor drains its
// mailbox. ProcessSample errors are logged and swallowed — a slow or
// failing collector never blocks or crashes a benchmark run.
type SampleCollector interface {
	ProcessSample(ctx context.Context, s *sample.Sample) error
}
