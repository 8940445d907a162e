// Package metrics provides an optional SampleCollector that republishes
// every delivered Sample as Prometheus series, for embedders who want
// to scrape a running benchmark rather than read it from in-process
// Go state.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rewrkio/rewrk/sample"
)

// PrometheusCollector implements contract.SampleCollector (via the
// rewrk.SampleCollector alias), exporting running totals and a
// latency histogram keyed by worker id.
type PrometheusCollector struct {
	requestsTotal    *prometheus.CounterVec
	successTotal     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	latencySeconds   *prometheus.HistogramVec
	readThroughput   *prometheus.GaugeVec
	writeThroughput  *prometheus.GaugeVec
	samplesProcessed prometheus.Counter
}

// NewPrometheusCollector registers its series on reg under namespace
// and returns a ready-to-use collector. Pass prometheus.DefaultRegisterer
// to expose the series on the default /metrics handler.
func NewPrometheusCollector(namespace string, reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of requests attempted, per worker.",
		}, []string{"worker_id"}),
		successTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_successful_total",
			Help:      "Total number of requests that completed and passed validation, per worker.",
		}, []string{"worker_id"}),
		errorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Total number of recorded request errors, per worker and error kind.",
		}, []string{"worker_id", "kind"}),
		latencySeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_latency_seconds",
			Help:      "Latency of successful requests, per worker.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"worker_id"}),
		readThroughput: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_read_bytes_per_second",
			Help:      "Peak read throughput observed in the window, per worker.",
		}, []string{"worker_id"}),
		writeThroughput: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "peak_write_bytes_per_second",
			Help:      "Peak write throughput observed in the window, per worker.",
		}, []string{"worker_id"}),
		samplesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_processed_total",
			Help:      "Total number of Samples delivered to this collector.",
		}),
	}
}

// ProcessSample implements contract.SampleCollector.
func (c *PrometheusCollector) ProcessSample(_ context.Context, s *sample.Sample) error {
	workerID := strconv.Itoa(s.Metadata.WorkerID)

	c.samplesProcessed.Inc()
	c.requestsTotal.WithLabelValues(workerID).Add(float64(s.TotalRequests))
	c.successTotal.WithLabelValues(workerID).Add(float64(s.TotalSuccessfulRequests))

	for _, verr := range s.Errors {
		c.errorsTotal.WithLabelValues(workerID, verr.Kind.String()).Inc()
	}

	for _, d := range s.Latency {
		c.latencySeconds.WithLabelValues(workerID).Observe(d.Seconds())
	}

	// s is sorted ascending at collector ingress (sample.Sort), so the
	// last element of each sequence is the window's peak, not its most
	// recent sample.
	if n := len(s.ReadTransfer); n > 0 {
		c.readThroughput.WithLabelValues(workerID).Set(float64(s.ReadTransfer[n-1]))
	}
	if n := len(s.WriteTransfer); n > 0 {
		c.writeThroughput.WithLabelValues(workerID).Set(float64(s.WriteTransfer[n-1]))
	}

	return nil
}
