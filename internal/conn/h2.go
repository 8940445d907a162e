package conn

import (
	"context"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/rewrkio/rewrk/internal/usage"
)

// h2Transport drives one HTTP/2 connection via golang.org/x/net/http2's
// ClientConn, which itself owns the background read loop (the "driver
// task" spec.md section 4.3 requires be aborted on Drop); closing the
// underlying socket is enough to stop it.
type h2Transport struct {
	cc   *http2.ClientConn
	conn *usage.Conn
}

// h2FrameSize tunes the HTTP/2 client beyond Go's conservative
// defaults, mirroring the window-size tuning the original rewrk-core
// h2 connector applied (rewrk-core/src/proto/h2.rs).
const h2FrameSize = 1 << 20

func newH2Transport(c *usage.Conn) (*h2Transport, error) {
	t := &http2.Transport{
		MaxReadFrameSize: h2FrameSize,
	}
	cc, err := t.NewClientConn(c)
	if err != nil {
		return nil, err
	}
	return &h2Transport{cc: cc, conn: c}, nil
}

func (t *h2Transport) roundTrip(ctx context.Context, req *http.Request) (*http.Response, error) {
	return t.cc.RoundTrip(req.WithContext(ctx))
}

func (t *h2Transport) close() error {
	_ = t.cc.Close()
	return t.conn.Close()
}

// NewH2Connection builds a Connection driving HTTP/2 over c, which
// must already be past its ALPN/TLS (or h2c prior-knowledge) setup.
func NewH2Connection(c *usage.Conn, hostHeader, scheme string) (*Connection, error) {
	t, err := newH2Transport(c)
	if err != nil {
		return nil, err
	}
	return &Connection{
		transport:  t,
		usage:      c.Usage(),
		hostHeader: hostHeader,
		scheme:     scheme,
	}, nil
}
