// Package metricsserver is an optional echo-based HTTP surface that
// exposes a running Benchmark's Prometheus series alongside liveness
// and readiness probes. It is not required to run a benchmark — most
// embedders drive everything in-process — but mirrors the observability
// surface the teacher's proxy server exposes.
package metricsserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/atomic"
)

// Server wraps an *echo.Echo exposing /metrics, /healthz and /readyz.
// Readiness flips true when Start is called, just before the listener
// is opened, and false again once Shutdown begins, so a load balancer
// draining the process sees a 503 before the socket actually closes.
type Server struct {
	echo      *echo.Echo
	readiness *atomic.Bool
	namespace string
}

// New builds a Server with its routes wired but not yet listening.
// namespace is the Prometheus namespace prefix for the HTTP-level
// request metrics the echoprometheus middleware collects (separate
// from the rewrk/metrics package's benchmark-level series).
func New(namespace string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		readiness: atomic.NewBool(false),
		namespace: namespace,
	}

	e.Use(middleware.Recover())
	e.Use(s.rejectUntilReady)
	e.Use(echoprometheus.NewMiddleware(namespace))
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/healthz", s.handleLiveness)
	e.GET("/readyz", s.handleReadiness)

	return s
}

func (s *Server) rejectUntilReady(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.readiness.Load() {
			p := c.Request().URL.Path
			if p != "/healthz" && p != "/readyz" && p != "/metrics" {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return next(c)
	}
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleReadiness(c echo.Context) error {
	if s.readiness.Load() {
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusServiceUnavailable)
}

// Start begins listening on addr in the background and marks the
// server ready. Errors other than a graceful shutdown are returned on
// the given channel.
func (s *Server) Start(addr string) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		s.readiness.Store(true)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	return errCh
}

// Shutdown marks the server not-ready and closes the listener within
// timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.readiness.Store(false)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
