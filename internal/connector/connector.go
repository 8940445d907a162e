// Package connector implements the Connector / connection state
// machine of spec.md section 4.2: it resolves the target address,
// opens TCP (optionally TLS), performs the HTTP/1 or HTTP/2 handshake,
// and retries establishment under a deadline.
package connector

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/atomic"

	"github.com/rewrkio/rewrk/contract"
	"github.com/rewrkio/rewrk/internal/conn"
	"github.com/rewrkio/rewrk/internal/usage"
	"github.com/rewrkio/rewrk/rewrklog"
)

const defaultMaxRetries = 3

// Connector builds Connections against one resolved Target. It is
// constructed once by the orchestrator and copied into every worker
// with Clone.
type Connector struct {
	target         Target
	hostHeader     string
	maxRetries     int
	rateLimitRetry bool

	localAddrs []net.IP
	nextLocal  atomic.Uint64
}

// New builds a Connector for target, overriding the Host header on
// every request with hostHeader.
func New(target Target, hostHeader string) *Connector {
	return &Connector{
		target:     target,
		hostHeader: hostHeader,
		maxRetries: defaultMaxRetries,
	}
}

// Clone returns an independent Connector sharing the same
// configuration (each worker gets its own local-address round-robin
// counter).
func (c *Connector) Clone() *Connector {
	return &Connector{
		target:         c.target,
		hostHeader:     c.hostHeader,
		maxRetries:     c.maxRetries,
		rateLimitRetry: c.rateLimitRetry,
		localAddrs:     c.localAddrs,
	}
}

// SetMaxRetries overrides the default retry budget of 3.
func (c *Connector) SetMaxRetries(n int) { c.maxRetries = n }

// SetRateLimitRetry enables the opt-in 429 backoff-retry mode on every
// Connection this Connector builds from now on.
func (c *Connector) SetRateLimitRetry(enabled bool) { c.rateLimitRetry = enabled }

// BindLocalAddrs makes each Connect call round-robin the local address
// used for the outbound dial, spreading load across source IPs on a
// multi-homed benchmark host (ported from the original rewrk's
// random_clients support).
func (c *Connector) BindLocalAddrs(addrs []net.IP) { c.localAddrs = addrs }

func (c *Connector) nextLocalAddr() net.IP {
	if len(c.localAddrs) == 0 {
		return nil
	}
	i := c.nextLocal.Add(1) - 1
	return c.localAddrs[i%uint64(len(c.localAddrs))]
}

// Connect attempts one full establishment: TCP dial, optional TLS
// handshake with ALPN, and the HTTP/1 or HTTP/2 handshake.
func (c *Connector) Connect(ctx context.Context) (*conn.Connection, error) {
	dialer := &net.Dialer{}
	if local := c.nextLocalAddr(); local != nil {
		dialer.LocalAddr = &net.TCPAddr{IP: local}
	}

	rawConn, err := dialer.DialContext(ctx, "tcp", c.target.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.target.Addr, err)
	}
	if tcpConn, ok := rawConn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	tracked := usage.NewConn(rawConn)

	uc := tracked
	scheme := "http"
	if c.target.Scheme == Https {
		scheme = "https"
		tlsConn := tlsClient(tracked, c.target.tlsConfig())
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			_ = tracked.Close()
			return nil, fmt.Errorf("tls handshake: %w", err)
		}
		uc = usage.NewConnView(tlsConn, tracked.Usage())
	}

	switch c.target.Protocol {
	case contract.H2:
		return conn.NewH2Connection(uc, c.hostHeaderOrTarget(), scheme)
	default:
		h1 := conn.NewH1Connection(uc, c.hostHeaderOrTarget(), scheme)
		h1.EnableRateLimitRetry(c.rateLimitRetry)
		return h1, nil
	}
}

func (c *Connector) hostHeaderOrTarget() string {
	if c.hostHeader != "" {
		return c.hostHeader
	}
	return c.target.HostHeader
}

// retryInterval is the fixed pause between connect attempts.
const retryInterval = 500 * time.Millisecond

// ConnectTimeout repeatedly calls Connect inside a deadline of now +
// timeout, pausing retryInterval between attempts, until the retry
// budget is exhausted or the deadline elapses. A nil Connection and
// nil error together mean "timed out, no last error" (spec.md section
// 4.2) — a fatal startup condition callers must check for explicitly
// rather than treating as success.
func (c *Connector) ConnectTimeout(ctx context.Context, timeout time.Duration) (*conn.Connection, error) {
	deadline := time.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	var lastErr error

	for attempt := 0; ; attempt++ {
		connection, err := c.Connect(ctx)
		if err == nil {
			return connection, nil
		}
		lastErr = err

		if attempt >= c.maxRetries {
			return nil, lastErr
		}

		select {
		case <-ctx.Done():
			rewrklog.Debug().Err(lastErr).Msg("connect timed out before retry budget exhausted")
			return nil, nil
		case <-time.After(retryInterval):
		}
	}
}
