package connector

import (
	"crypto/tls"
	"net"
)

// tlsConfig builds the benchmarking-mode TLS config for t: certificate
// and hostname verification are disabled (spec.md section 4.2 — this is
// a load generator, not a client that needs to trust the target), SNI
// is set from the target host, and ALPN offers only the configured
// protocol.
func (t Target) tlsConfig() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         t.Host,
		NextProtos:         []string{t.Protocol.ALPN()},
	}
}

// tlsClient wraps the dialed conn in a client-side TLS layer, to be
// driven with HandshakeContext so the connect deadline applies to the
// handshake too.
func tlsClient(c net.Conn, cfg *tls.Config) *tls.Conn {
	return tls.Client(c, cfg)
}
