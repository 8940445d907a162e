// Package sample implements the per-window metrics container (Sample),
// its factory, and the tagged ValidationError union. Samples are
// produced by worker slots and consumed by the collector actor; the
// package has no dependency on how either side is implemented.
package sample

import (
	"fmt"
	"net/http"
	"sort"
	"time"
)

// ValidationErrorKind tags the variant of a ValidationError.
type ValidationErrorKind int

const (
	InvalidStatus ValidationErrorKind = iota
	InvalidBody
	MissingHeader
	InvalidHeader
	ConnectionAborted
	Timeout
	Other
)

func (k ValidationErrorKind) String() string {
	switch k {
	case InvalidStatus:
		return "invalid-status"
	case InvalidBody:
		return "invalid-body"
	case MissingHeader:
		return "missing-header"
	case InvalidHeader:
		return "invalid-header"
	case ConnectionAborted:
		return "connection-aborted"
	case Timeout:
		return "timeout"
	default:
		return "other"
	}
}

// ValidationError is the tagged variant a ResponseValidator (or the
// worker loop itself, for transport-level failures) attaches to a
// Sample instead of counting the request as successful.
type ValidationError struct {
	Kind       ValidationErrorKind
	StatusCode int         // set for InvalidStatus
	Header     http.Header // set for InvalidStatus
	Name       string      // set for MissingHeader / InvalidHeader
	Reason     string      // set for InvalidBody / Other
}

func (e ValidationError) Error() string {
	switch e.Kind {
	case InvalidStatus:
		return fmt.Sprintf("invalid status %d", e.StatusCode)
	case InvalidBody:
		return fmt.Sprintf("invalid body: %s", e.Reason)
	case MissingHeader:
		return fmt.Sprintf("missing header %q", e.Name)
	case InvalidHeader:
		return fmt.Sprintf("invalid header %q", e.Name)
	case ConnectionAborted:
		return "connection aborted"
	case Timeout:
		return "timeout"
	default:
		return fmt.Sprintf("other: %s", e.Reason)
	}
}

func NewInvalidStatus(code int, header http.Header) *ValidationError {
	return &ValidationError{Kind: InvalidStatus, StatusCode: code, Header: header}
}

func NewInvalidBody(reason string) *ValidationError {
	return &ValidationError{Kind: InvalidBody, Reason: reason}
}

func NewMissingHeader(name string) *ValidationError {
	return &ValidationError{Kind: MissingHeader, Name: name}
}

func NewInvalidHeader(name string) *ValidationError {
	return &ValidationError{Kind: InvalidHeader, Name: name}
}

func NewConnectionAborted() *ValidationError {
	return &ValidationError{Kind: ConnectionAborted}
}

func NewTimeout() *ValidationError {
	return &ValidationError{Kind: Timeout}
}

func NewOther(reason string) *ValidationError {
	return &ValidationError{Kind: Other, Reason: reason}
}

// Metadata identifies which worker/slot a Sample came from.
type Metadata struct {
	WorkerID      int
	ConcurrencyID int
}

// Sample is the per-window aggregate described in spec.md section 3.
// Every mutator is intended to be called only by the worker slot that
// owns the Sample; once submitted to the collector mailbox, ownership
// transfers by move (the worker must not touch it again).
type Sample struct {
	Tag      uint64
	Metadata Metadata

	TotalDuration time.Duration

	TotalRequests           int
	TotalSuccessfulRequests int
	TotalLatencyDuration    time.Duration

	Latency      []time.Duration
	ReadTransfer []uint32
	WriteTransfer []uint32

	Errors []ValidationError
}

// New constructs an empty Sample carrying md and tagged tag.
func New(md Metadata, tag uint64) *Sample {
	return &Sample{Tag: tag, Metadata: md}
}

func (s *Sample) RecordTotalRequest() {
	s.TotalRequests++
}

func (s *Sample) RecordSuccessfulRequest() {
	s.TotalSuccessfulRequests++
}

func (s *Sample) RecordError(err ValidationError) {
	s.Errors = append(s.Errors, err)
}

func (s *Sample) RecordLatency(d time.Duration) {
	s.Latency = append(s.Latency, d)
	s.TotalLatencyDuration += d
}

// rate computes round((end-start)/duration) truncated to uint32, with
// a defined zero result when duration is zero rather than a divide
// panic.
func rate(start, end uint64, d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	delta := float64(end - start)
	perSecond := delta / d.Seconds()
	rounded := perSecond + 0.5
	if rounded < 0 {
		return 0
	}
	if rounded > float64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(rounded)
}

func (s *Sample) RecordReadTransfer(startBytes, endBytes uint64, d time.Duration) {
	s.ReadTransfer = append(s.ReadTransfer, rate(startBytes, endBytes, d))
}

func (s *Sample) RecordWriteTransfer(startBytes, endBytes uint64, d time.Duration) {
	s.WriteTransfer = append(s.WriteTransfer, rate(startBytes, endBytes, d))
}

func (s *Sample) SetTotalDuration(d time.Duration) {
	s.TotalDuration = d
}

// Sort orders the Latency, ReadTransfer and WriteTransfer sequences
// ascending. Called once at collector ingress so quantiles can be read
// directly off the delivered Sample; idempotent.
func (s *Sample) Sort() {
	sort.Slice(s.Latency, func(i, j int) bool { return s.Latency[i] < s.Latency[j] })
	sort.Slice(s.ReadTransfer, func(i, j int) bool { return s.ReadTransfer[i] < s.ReadTransfer[j] })
	sort.Slice(s.WriteTransfer, func(i, j int) bool { return s.WriteTransfer[i] < s.WriteTransfer[j] })
}

// Add returns the componentwise sum of s and other: scalars summed,
// sequences concatenated, errors concatenated. Neither operand is
// mutated. Add is associative and commutative on the scalar fields and
// concatenation-preserving on the sequence fields; s.Add(&Sample{}) ==
// s.
func (s *Sample) Add(other *Sample) *Sample {
	out := &Sample{
		Tag:                     s.Tag,
		Metadata:                s.Metadata,
		TotalDuration:           s.TotalDuration + other.TotalDuration,
		TotalRequests:           s.TotalRequests + other.TotalRequests,
		TotalSuccessfulRequests: s.TotalSuccessfulRequests + other.TotalSuccessfulRequests,
		TotalLatencyDuration:    s.TotalLatencyDuration + other.TotalLatencyDuration,
	}
	out.Latency = append(append([]time.Duration{}, s.Latency...), other.Latency...)
	out.ReadTransfer = append(append([]uint32{}, s.ReadTransfer...), other.ReadTransfer...)
	out.WriteTransfer = append(append([]uint32{}, s.WriteTransfer...), other.WriteTransfer...)
	out.Errors = append(append([]ValidationError{}, s.Errors...), other.Errors...)
	return out
}
