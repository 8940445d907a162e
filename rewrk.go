// Package rewrk is an embeddable HTTP/1.1 and HTTP/2 load-generation
// engine. Given a base URI, a target concurrency, a protocol, a
// Producer of request batches and a SampleCollector for the resulting
// measurements, a Benchmark drives as many concurrent requests as it
// can and delivers time-windowed latency/throughput Samples to the
// collector.
//
// The command-line front-end, human-readable reporting, histogram
// computation and configuration loading are deliberately not part of
// this package — it is meant to be embedded by something that does
// those things.
package rewrk

import "github.com/rewrkio/rewrk/contract"

// Public type aliases keep the request/response/contract vocabulary at
// the package root while the actual definitions live in package
// contract, which the internal transport/runtime packages also depend
// on without creating an import cycle back through this package.
type (
	Protocol          = contract.Protocol
	RequestKey        = contract.RequestKey
	Request           = contract.Request
	ResponseHead      = contract.ResponseHead
	Batch             = contract.Batch
	RequestBatch      = contract.RequestBatch
	Producer          = contract.Producer
	SampleCollector   = contract.SampleCollector
	ResponseValidator = contract.ResponseValidator
	ShutdownHandle    = contract.ShutdownHandle
	RuntimeTimings    = contract.RuntimeTimings
)

const (
	H1 = contract.H1
	H2 = contract.H2
)

var (
	EndOfRequests           = contract.EndOfRequests
	BatchOf                 = contract.BatchOf
	NewShutdownHandle       = contract.NewShutdownHandle
	DefaultResponseValidator ResponseValidator = contract.DefaultValidator{}
)
