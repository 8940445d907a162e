package sample

import "testing"

func TestMergerAddsByKey(t *testing.T) {
	m := NewMerger()

	a := New(Metadata{WorkerID: 0}, 1)
	a.RecordTotalRequest()
	a.RecordSuccessfulRequest()

	b := New(Metadata{WorkerID: 0}, 1)
	b.RecordTotalRequest()
	b.RecordSuccessfulRequest()

	c := New(Metadata{WorkerID: 1}, 1)
	c.RecordTotalRequest()

	m.Add(a)
	m.Add(b)
	m.Add(c)

	samples := m.Samples()
	if len(samples) != 2 {
		t.Fatalf("len(samples) = %d, want 2 (one per worker)", len(samples))
	}

	byWorker := make(map[int]*Sample)
	for _, s := range samples {
		byWorker[s.Metadata.WorkerID] = s
	}

	if got := byWorker[0].TotalRequests; got != 2 {
		t.Fatalf("worker 0 merged TotalRequests = %d, want 2", got)
	}
	if got := byWorker[0].TotalSuccessfulRequests; got != 2 {
		t.Fatalf("worker 0 merged TotalSuccessfulRequests = %d, want 2", got)
	}
	if got := byWorker[1].TotalRequests; got != 1 {
		t.Fatalf("worker 1 merged TotalRequests = %d, want 1", got)
	}
}

func TestMergerPreservesFirstSeenOrder(t *testing.T) {
	m := NewMerger()
	m.Add(New(Metadata{WorkerID: 2}, 0))
	m.Add(New(Metadata{WorkerID: 0}, 0))
	m.Add(New(Metadata{WorkerID: 1}, 0))

	samples := m.Samples()
	want := []int{2, 0, 1}
	for i, s := range samples {
		if s.Metadata.WorkerID != want[i] {
			t.Fatalf("Samples()[%d].WorkerID = %d, want %d", i, s.Metadata.WorkerID, want[i])
		}
	}
}
