package sample

import (
	"testing"
	"time"
)

func TestSampleRecordLatencyAccumulatesTotal(t *testing.T) {
	s := New(Metadata{WorkerID: 1}, 0)
	s.RecordLatency(10 * time.Millisecond)
	s.RecordLatency(20 * time.Millisecond)

	if got, want := s.TotalLatencyDuration, 30*time.Millisecond; got != want {
		t.Fatalf("TotalLatencyDuration = %v, want %v", got, want)
	}
	if len(s.Latency) != 2 {
		t.Fatalf("len(Latency) = %d, want 2", len(s.Latency))
	}
}

func TestRateZeroDurationYieldsZero(t *testing.T) {
	if got := rate(0, 1000, 0); got != 0 {
		t.Fatalf("rate with zero duration = %d, want 0", got)
	}
}

func TestRateRoundsToNearest(t *testing.T) {
	got := rate(0, 151, 2*time.Second)
	if got != 76 {
		t.Fatalf("rate(0, 151, 2s) = %d, want 76 (75.5 rounded)", got)
	}
}

func TestSortOrdersAscending(t *testing.T) {
	s := New(Metadata{}, 0)
	s.RecordLatency(30 * time.Millisecond)
	s.RecordLatency(10 * time.Millisecond)
	s.RecordLatency(20 * time.Millisecond)

	s.Sort()

	for i := 1; i < len(s.Latency); i++ {
		if s.Latency[i-1] > s.Latency[i] {
			t.Fatalf("Latency not sorted ascending: %v", s.Latency)
		}
	}
}

func TestSortIsIdempotent(t *testing.T) {
	s := New(Metadata{}, 0)
	s.RecordLatency(5 * time.Millisecond)
	s.RecordLatency(1 * time.Millisecond)
	s.Sort()
	first := append([]time.Duration{}, s.Latency...)
	s.Sort()
	if len(first) != len(s.Latency) {
		t.Fatalf("length changed across repeated Sort calls")
	}
	for i := range first {
		if first[i] != s.Latency[i] {
			t.Fatalf("Sort is not idempotent: %v != %v", first, s.Latency)
		}
	}
}

func TestAddIsAssociativeOnScalars(t *testing.T) {
	a := New(Metadata{}, 7)
	a.RecordTotalRequest()
	a.RecordSuccessfulRequest()
	a.RecordLatency(time.Millisecond)

	b := New(Metadata{}, 7)
	b.RecordTotalRequest()
	b.RecordError(*NewTimeout())

	c := New(Metadata{}, 7)
	c.RecordTotalRequest()
	c.RecordSuccessfulRequest()

	left := a.Add(b).Add(c)
	right := a.Add(b.Add(c))

	if left.TotalRequests != right.TotalRequests {
		t.Fatalf("Add is not associative on TotalRequests: %d != %d", left.TotalRequests, right.TotalRequests)
	}
	if left.TotalSuccessfulRequests != right.TotalSuccessfulRequests {
		t.Fatalf("Add is not associative on TotalSuccessfulRequests: %d != %d",
			left.TotalSuccessfulRequests, right.TotalSuccessfulRequests)
	}
}

func TestAddWithEmptyIsIdentity(t *testing.T) {
	s := New(Metadata{}, 3)
	s.RecordTotalRequest()
	s.RecordSuccessfulRequest()
	s.RecordLatency(time.Millisecond)

	sum := s.Add(New(Metadata{}, 3))

	if sum.TotalRequests != s.TotalRequests || sum.TotalSuccessfulRequests != s.TotalSuccessfulRequests {
		t.Fatalf("Add with empty Sample changed scalar fields")
	}
	if len(sum.Latency) != len(s.Latency) {
		t.Fatalf("Add with empty Sample changed Latency length")
	}
}

func TestAddConcatenatesErrors(t *testing.T) {
	a := New(Metadata{}, 0)
	a.RecordError(*NewTimeout())
	b := New(Metadata{}, 0)
	b.RecordError(*NewConnectionAborted())

	sum := a.Add(b)
	if len(sum.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(sum.Errors))
	}
}

func TestInvariantLatencyLenMatchesSuccessCount(t *testing.T) {
	s := New(Metadata{}, 0)
	for i := 0; i < 5; i++ {
		s.RecordTotalRequest()
		s.RecordSuccessfulRequest()
		s.RecordLatency(time.Duration(i) * time.Millisecond)
		s.RecordReadTransfer(0, uint64(i*10), time.Millisecond)
		s.RecordWriteTransfer(0, uint64(i*10), time.Millisecond)
	}
	s.RecordTotalRequest()
	s.RecordError(*NewTimeout())

	if len(s.Latency) != s.TotalSuccessfulRequests {
		t.Fatalf("len(Latency)=%d != TotalSuccessfulRequests=%d", len(s.Latency), s.TotalSuccessfulRequests)
	}
	if len(s.ReadTransfer) != len(s.Latency) || len(s.WriteTransfer) != len(s.Latency) {
		t.Fatalf("transfer sequence lengths diverge from Latency")
	}
	if s.TotalRequests < s.TotalSuccessfulRequests+len(s.Errors) {
		t.Fatalf("TotalRequests=%d < successful(%d)+errors(%d)", s.TotalRequests, s.TotalSuccessfulRequests, len(s.Errors))
	}
}
