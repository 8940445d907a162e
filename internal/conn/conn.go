// Package conn implements the Connection handle: a single established
// multiplexed transport (HTTP/1.1 or HTTP/2, over TCP or TLS) that
// issues one logical request at a time and classifies transport
// errors the way the worker loop needs (spec.md section 4.3 / 4.7).
package conn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rewrkio/rewrk/contract"
	"github.com/rewrkio/rewrk/internal/usage"
)

// transport is satisfied by the H1 and H2 wire drivers (see h1.go,
// h2.go). Dropping a Connection calls close, which must abort the
// driver's background work (for H2 that's the read loop
// golang.org/x/net/http2 spawns in NewClientConn; for H1 it's simply
// the socket).
type transport interface {
	roundTrip(ctx context.Context, req *http.Request) (*http.Response, error)
	close() error
}

// Connection is an established transport exclusively owned by one
// worker slot at a time.
type Connection struct {
	transport      transport
	usage          *usage.Usage
	hostHeader     string
	scheme         string
	rateLimitRetry bool
}

// Usage returns the read-only byte counters for this connection.
func (c *Connection) Usage() *usage.Usage { return c.usage }

// Close aborts the driver task and releases the underlying socket.
func (c *Connection) Close() error { return c.transport.close() }

// EnableRateLimitRetry turns on the optional 429 backoff-retry mode
// described in spec.md section 4.3. Off by default because it
// distorts throughput measurement.
func (c *Connection) EnableRateLimitRetry(enabled bool) { c.rateLimitRetry = enabled }

// ErrorClass is the bucket Classify assigns a RoundTrip error, the way
// the worker loop's run_batch needs it (spec.md section 4.7): aborted connections,
// malformed/incomplete responses, request timeouts, or something else
// that should propagate and fail the worker.
type ErrorClass int

const (
	ErrOther ErrorClass = iota
	ErrConnectionAborted
	ErrInvalidBody
	ErrTimeout
)

func Classify(err error) ErrorClass {
	if err == nil {
		return ErrOther
	}
	msg := err.Error()
	switch {
	case errors.Is(err, io.EOF),
		strings.Contains(msg, "use of closed network connection"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "http2: client conn is closed"),
		strings.Contains(msg, "http2: client conn not usable"):
		return ErrConnectionAborted
	case errors.Is(err, io.ErrUnexpectedEOF),
		strings.Contains(msg, "malformed"),
		strings.Contains(msg, "unexpected EOF"),
		strings.Contains(msg, "too large"),
		strings.Contains(msg, "status code"):
		return ErrInvalidBody
	case isTimeout(err):
		return ErrTimeout
	default:
		return ErrOther
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	for e := err; e != nil; {
		if x, ok := e.(timeouter); ok {
			t = x
			break
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return t != nil && t.Timeout()
}

// ExecuteReq rewrites req's URI to the connection's own scheme and
// host-header value, sends it, and waits for the full response head
// and body. No pipelining: a Connection handles one request at a time
// by construction (its transport's roundTrip blocks until the response
// completes).
func (c *Connection) ExecuteReq(ctx context.Context, req contract.Request) (contract.ResponseHead, []byte, error) {
	if c.rateLimitRetry {
		return c.executeWithRateLimitRetry(ctx, req)
	}
	return c.executeOnce(ctx, req)
}

func (c *Connection) executeOnce(ctx context.Context, req contract.Request) (contract.ResponseHead, []byte, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return contract.ResponseHead{}, nil, err
	}

	resp, err := c.transport.roundTrip(ctx, httpReq)
	if err != nil {
		return contract.ResponseHead{}, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contract.ResponseHead{}, nil, err
	}

	return contract.ResponseHead{StatusCode: resp.StatusCode, Header: resp.Header}, body, nil
}

// executeWithRateLimitRetry retries a 429 response with exponential
// backoff starting at 500ms, doubling up to 30s, for up to 12
// attempts, reusing the same Connection. It is off by default (see
// EnableRateLimitRetry) because it distorts throughput measurement.
func (c *Connection) executeWithRateLimitRetry(ctx context.Context, req contract.Request) (contract.ResponseHead, []byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.Multiplier = 2
	bo.MaxInterval = 30 * time.Second
	bo.RandomizationFactor = 0

	const maxAttempts = 12
	var lastHead contract.ResponseHead
	var lastBody []byte

	for attempt := 0; attempt < maxAttempts; attempt++ {
		head, body, err := c.executeOnce(ctx, req)
		if err != nil {
			return head, body, err
		}
		if head.StatusCode != http.StatusTooManyRequests {
			return head, body, nil
		}
		lastHead, lastBody = head, body

		d := bo.NextBackOff()
		if d == backoff.Stop {
			break
		}
		select {
		case <-ctx.Done():
			return lastHead, lastBody, ctx.Err()
		case <-time.After(d):
		}
	}
	return lastHead, lastBody, nil
}

func (c *Connection) buildRequest(ctx context.Context, req contract.Request) (*http.Request, error) {
	path := req.Path
	if path == "" {
		path = "/"
	}
	u, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u.Scheme = c.scheme
	u.Host = c.hostHeader

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
	}
	httpReq.Host = c.hostHeader
	httpReq.URL.Scheme = c.scheme
	httpReq.URL.Host = c.hostHeader
	httpReq.ContentLength = int64(len(req.Body))
	return httpReq, nil
}
