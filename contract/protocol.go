package contract

// Protocol selects the wire protocol a Benchmark speaks to the target.
type Protocol int

const (
	H1 Protocol = iota
	H2
)

func (p Protocol) String() string {
	if p == H2 {
		return "h2"
	}
	return "h1"
}

// ALPN returns the protocol id to offer during a TLS handshake.
func (p Protocol) ALPN() string {
	if p == H2 {
		return "h2"
	}
	return "http/1.1"
}
