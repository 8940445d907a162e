package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rewrkio/rewrk/sample"
)

func TestProcessSampleIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector("rewrk_test", reg)

	s := sample.New(sample.Metadata{WorkerID: 0}, 0)
	s.RecordTotalRequest()
	s.RecordSuccessfulRequest()
	s.RecordLatency(5 * time.Millisecond)
	s.RecordReadTransfer(0, 100, time.Second)
	s.RecordWriteTransfer(0, 50, time.Second)

	if err := c.ProcessSample(context.Background(), s); err != nil {
		t.Fatalf("ProcessSample: %v", err)
	}

	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("0")); got != 1 {
		t.Fatalf("requestsTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.successTotal.WithLabelValues("0")); got != 1 {
		t.Fatalf("successTotal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.readThroughput.WithLabelValues("0")); got != 100 {
		t.Fatalf("readThroughput = %v, want 100", got)
	}
}

func TestProcessSampleRecordsErrorsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector("rewrk_test", reg)

	s := sample.New(sample.Metadata{WorkerID: 1}, 0)
	s.RecordError(*sample.NewTimeout())
	s.RecordError(*sample.NewTimeout())
	s.RecordError(*sample.NewConnectionAborted())

	if err := c.ProcessSample(context.Background(), s); err != nil {
		t.Fatalf("ProcessSample: %v", err)
	}

	if got := testutil.ToFloat64(c.errorsTotal.WithLabelValues("1", "timeout")); got != 2 {
		t.Fatalf("errorsTotal[timeout] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.errorsTotal.WithLabelValues("1", "connection-aborted")); got != 1 {
		t.Fatalf("errorsTotal[connection-aborted] = %v, want 1", got)
	}
}
