package contract

import "net/http"

// RequestKey uniquely identifies one logical request: the worker that
// issued it and a request id that is monotonic within that worker.
// Equality, ordering and hashing are all componentwise — RequestKey is
// a plain comparable struct so it works as a map key out of the box.
type RequestKey struct {
	WorkerID  int
	RequestID uint64
}

// Less orders RequestKeys by worker then by request id.
func (k RequestKey) Less(other RequestKey) bool {
	if k.WorkerID != other.WorkerID {
		return k.WorkerID < other.WorkerID
	}
	return k.RequestID < other.RequestID
}

// Request is one HTTP request to issue over an already-established
// Connection. Method, path+query, headers and body are all that a
// Producer controls; the live connection supplies scheme and authority,
// and Host is overwritten unconditionally by the connector's configured
// host-header value.
type Request struct {
	Method  string
	Path    string // path and query only; any authority/scheme is ignored
	Header  http.Header
	Body    []byte // immutable, shareable; never mutated on the hot path
}

// ResponseHead is the status and header portion of a response, handed
// to the ResponseValidator alongside the fully-read body.
type ResponseHead struct {
	StatusCode int
	Header     http.Header
}

// Batch is an ordered group of requests sharing one tag. FirstRequestID
// is the RequestID assigned to Requests[0]; later requests in the batch
// get FirstRequestID+1, +2, and so on, so RequestKey.RequestID stays
// dense within a batch.
type Batch struct {
	Tag            uint64
	FirstRequestID uint64
	Requests       []Request
}

// RequestBatch is the sum type a Producer yields from CreateBatch: either
// End (no more work, the producer actor should close its channel and
// exit) or a Batch to execute.
type RequestBatch struct {
	End   bool
	Batch Batch
}

// EndOfRequests is the canonical End-variant RequestBatch.
var EndOfRequests = RequestBatch{End: true}

// BatchOf wraps b as a non-terminal RequestBatch.
func BatchOf(b Batch) RequestBatch {
	return RequestBatch{Batch: b}
}
