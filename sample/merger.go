package sample

// mergeKey identifies the slot a Sample came from for merging purposes.
type mergeKey struct {
	Tag           uint64
	WorkerID      int
	ConcurrencyID int
}

// Merger accumulates Samples by addition, keyed by (tag, worker_id,
// concurrency_id). It is not required by the core — it is an optional
// utility for collectors that want a single rolled-up Sample per
// slot-and-tag instead of handling each window individually.
type Merger struct {
	byKey map[mergeKey]*Sample
	order []mergeKey
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{byKey: make(map[mergeKey]*Sample)}
}

// Add folds s into the running total for its (tag, worker, concurrency
// slot) key.
func (m *Merger) Add(s *Sample) {
	k := mergeKey{Tag: s.Tag, WorkerID: s.Metadata.WorkerID, ConcurrencyID: s.Metadata.ConcurrencyID}
	existing, ok := m.byKey[k]
	if !ok {
		m.byKey[k] = s
		m.order = append(m.order, k)
		return
	}
	m.byKey[k] = existing.Add(s)
}

// Samples returns the merged Samples in first-seen key order.
func (m *Merger) Samples() []*Sample {
	out := make([]*Sample, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.byKey[k])
	}
	return out
}
