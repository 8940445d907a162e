package connector

import (
	"context"
	"fmt"
	"net"
	"net/url"

	"github.com/rewrkio/rewrk/contract"
)

// Scheme is the resolved URI scheme of a Target.
type Scheme int

const (
	Http Scheme = iota
	Https
)

// Target is the resolved, immutable tuple a Connector dials against.
// It is built once from the base URI and cloned (by value — Target
// holds no mutable state) into every worker.
type Target struct {
	Addr       string // resolved "ip:port" to dial
	Scheme     Scheme
	Host       string // hostname, used for SNI
	HostHeader string // value to force into every Request's Host header
	Protocol   contract.Protocol
}

// ErrInvalidScheme is returned when the base URI scheme is neither
// "http" nor "https".
type ErrInvalidScheme struct{ Scheme string }

func (e ErrInvalidScheme) Error() string { return fmt.Sprintf("invalid scheme %q", e.Scheme) }

// ErrMissingHost is returned when the base URI has no host component.
type ErrMissingHost struct{}

func (ErrMissingHost) Error() string { return "missing host" }

// ParseTarget parses rawURI per spec.md section 6: scheme must be http
// or https, host is required, port defaults by scheme, path and query
// on the base URI itself are not retained (each Request supplies its
// own path and query), and the address is resolved eagerly, preferring
// IPv4.
func ParseTarget(ctx context.Context, rawURI string, protocol contract.Protocol) (Target, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return Target{}, fmt.Errorf("parse base uri: %w", err)
	}

	var scheme Scheme
	switch u.Scheme {
	case "http":
		scheme = Http
	case "https":
		scheme = Https
	default:
		return Target{}, ErrInvalidScheme{Scheme: u.Scheme}
	}

	host := u.Hostname()
	if host == "" {
		return Target{}, ErrMissingHost{}
	}

	port := u.Port()
	if port == "" {
		if scheme == Https {
			port = "443"
		} else {
			port = "80"
		}
	}

	addr, err := resolveAddr(ctx, host, port)
	if err != nil {
		return Target{}, err
	}

	hostHeader := host
	if (scheme == Http && port != "80") || (scheme == Https && port != "443") {
		hostHeader = net.JoinHostPort(host, port)
	}

	return Target{
		Addr:       addr,
		Scheme:     scheme,
		Host:       host,
		HostHeader: hostHeader,
		Protocol:   protocol,
	}, nil
}

// ErrAddressLookup wraps a failed address resolution.
type ErrAddressLookup struct {
	Host string
	Err  error
}

func (e ErrAddressLookup) Error() string { return fmt.Sprintf("lookup %q: %v", e.Host, e.Err) }
func (e ErrAddressLookup) Unwrap() error { return e.Err }

// resolveAddr resolves host and applies the IPv4-preferred selection
// policy: the first IPv4 address wins; if none is IPv4, fall back to
// the last resolved address.
func resolveAddr(ctx context.Context, host, port string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return net.JoinHostPort(host, port), nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", ErrAddressLookup{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		return "", ErrAddressLookup{Host: host, Err: fmt.Errorf("no addresses")}
	}

	var chosen net.IP
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			chosen = v4
			break
		}
	}
	if chosen == nil {
		chosen = addrs[len(addrs)-1].IP
	}

	return net.JoinHostPort(chosen.String(), port), nil
}
