package connector

import (
	"context"
	"testing"

	"github.com/rewrkio/rewrk/contract"
)

func TestParseTargetDefaultsHTTPPort(t *testing.T) {
	target, err := ParseTarget(context.Background(), "http://127.0.0.1", contract.H1)
	if err != nil {
		t.Fatalf("ParseTarget returned error: %v", err)
	}
	if target.Scheme != Http {
		t.Fatalf("Scheme = %v, want Http", target.Scheme)
	}
	if target.Addr != "127.0.0.1:80" {
		t.Fatalf("Addr = %q, want %q", target.Addr, "127.0.0.1:80")
	}
}

func TestParseTargetDefaultsHTTPSPort(t *testing.T) {
	target, err := ParseTarget(context.Background(), "https://127.0.0.1", contract.H2)
	if err != nil {
		t.Fatalf("ParseTarget returned error: %v", err)
	}
	if target.Addr != "127.0.0.1:443" {
		t.Fatalf("Addr = %q, want %q", target.Addr, "127.0.0.1:443")
	}
	if target.Protocol != contract.H2 {
		t.Fatalf("Protocol = %v, want H2", target.Protocol)
	}
}

func TestParseTargetExplicitPort(t *testing.T) {
	target, err := ParseTarget(context.Background(), "http://127.0.0.1:9090", contract.H1)
	if err != nil {
		t.Fatalf("ParseTarget returned error: %v", err)
	}
	if target.Addr != "127.0.0.1:9090" {
		t.Fatalf("Addr = %q, want %q", target.Addr, "127.0.0.1:9090")
	}
	if target.HostHeader != "127.0.0.1:9090" {
		t.Fatalf("HostHeader = %q, want %q (non-default port kept explicit)", target.HostHeader, "127.0.0.1:9090")
	}
}

func TestParseTargetRejectsInvalidScheme(t *testing.T) {
	_, err := ParseTarget(context.Background(), "ftp://127.0.0.1", contract.H1)
	if _, ok := asInvalidScheme(err); !ok {
		t.Fatalf("expected ErrInvalidScheme, got %v", err)
	}
}

func TestParseTargetRejectsMissingHost(t *testing.T) {
	_, err := ParseTarget(context.Background(), "http://", contract.H1)
	if _, ok := err.(ErrMissingHost); !ok {
		t.Fatalf("expected ErrMissingHost, got %v", err)
	}
}

func asInvalidScheme(err error) (ErrInvalidScheme, bool) {
	e, ok := err.(ErrInvalidScheme)
	return e, ok
}
