package contract

import "go.uber.org/atomic"

// ShutdownHandle is the process-wide cooperative shutdown flag shared
// by the orchestrator and every worker. It is monotonic: once set, it
// is never cleared. Cheap to clone by pointer; every holder observes
// the same flag.
type ShutdownHandle struct {
	flag atomic.Bool
}

// NewShutdownHandle returns an unset handle.
func NewShutdownHandle() *ShutdownHandle {
	return &ShutdownHandle{}
}

// IsSet reports whether shutdown has been requested.
func (h *ShutdownHandle) IsSet() bool {
	return h.flag.Load()
}

// Set requests shutdown. Returns true if this call is the one that
// transitioned the flag from false to true.
func (h *ShutdownHandle) Set() bool {
	return h.flag.CompareAndSwap(false, true)
}
