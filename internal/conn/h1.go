package conn

import (
	"bufio"
	"context"
	"net/http"
	"time"

	"github.com/rewrkio/rewrk/internal/usage"
)

var zeroTime time.Time

// h1Transport drives one HTTP/1.1 connection: write the request,
// read the response, nothing pipelined. The spec explicitly forbids
// pipelining on HTTP/1 (at most one in-flight request per connection),
// which this naturally satisfies since roundTrip blocks until the
// whole response is read before returning.
type h1Transport struct {
	conn *usage.Conn
	br   *bufio.Reader
}

func newH1Transport(c *usage.Conn) *h1Transport {
	return &h1Transport{conn: c, br: bufio.NewReader(c)}
}

func (t *h1Transport) roundTrip(ctx context.Context, req *http.Request) (*http.Response, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = t.conn.SetDeadline(dl)
	} else {
		_ = t.conn.SetDeadline(zeroTime)
	}

	if err := req.Write(t.conn); err != nil {
		return nil, err
	}
	resp, err := http.ReadResponse(t.br, req)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *h1Transport) close() error {
	return t.conn.Close()
}

// NewH1Connection builds a Connection driving HTTP/1.1 over c.
func NewH1Connection(c *usage.Conn, hostHeader, scheme string) *Connection {
	return &Connection{
		transport:  newH1Transport(c),
		usage:      c.Usage(),
		hostHeader: hostHeader,
		scheme:     scheme,
	}
}
