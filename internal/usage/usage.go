// Package usage implements the byte-usage tracker: a net.Conn wrapper
// that atomically counts bytes read and written so a sampler task can
// observe per-connection throughput deltas without synchronizing with
// the I/O task.
package usage

import (
	"net"

	"go.uber.org/atomic"
)

// Usage holds the two monotonic byte counters for one connection.
// Cloning a *Usage (taking the pointer) is cheap and gives an
// independent handle onto the same counters; the counters themselves
// are never reset, only sampled as start/end deltas.
type Usage struct {
	received atomic.Uint64
	written  atomic.Uint64
}

// Received returns the total bytes read so far.
func (u *Usage) Received() uint64 { return u.received.Load() }

// Written returns the total bytes written so far.
func (u *Usage) Written() uint64 { return u.written.Load() }

// Conn wraps a net.Conn, routing every Read/Write through the byte
// counters in Usage. Flush-equivalents (SetDeadline and friends) and
// Close are plain passthroughs.
type Conn struct {
	net.Conn
	usage  *Usage
	counts bool
}

// NewConn wraps c with a fresh Usage tracker.
func NewConn(c net.Conn) *Conn {
	return &Conn{Conn: c, usage: &Usage{}, counts: true}
}

// NewConnView wraps c (typically a tls.Conn layered over an
// already-tracked raw socket) exposing u's counters without counting
// again at this layer — the wire bytes were already attributed to u
// by the raw socket beneath the TLS record layer.
func NewConnView(c net.Conn, u *Usage) *Conn {
	return &Conn{Conn: c, usage: u, counts: false}
}

// Usage returns the read-only counters for this connection.
func (c *Conn) Usage() *Usage { return c.usage }

func (c *Conn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 && c.counts {
		c.usage.received.Add(uint64(n))
	}
	return n, err
}

func (c *Conn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 && c.counts {
		c.usage.written.Add(uint64(n))
	}
	return n, err
}
