package contract

import "time"

// RuntimeTimings accumulates how much wall time a worker's slot tasks
// spent waiting on the producer versus actually executing requests.
// The two fields are additive across slots and across workers.
type RuntimeTimings struct {
	ProducerWaitRuntime time.Duration
	ExecuteWaitRuntime  time.Duration
}

// Add returns the componentwise sum of t and other.
func (t RuntimeTimings) Add(other RuntimeTimings) RuntimeTimings {
	return RuntimeTimings{
		ProducerWaitRuntime: t.ProducerWaitRuntime + other.ProducerWaitRuntime,
		ExecuteWaitRuntime:  t.ExecuteWaitRuntime + other.ExecuteWaitRuntime,
	}
}

// ProducerWaitPercent returns the share of total runtime spent waiting
// on the producer, as a percentage in [0, 100]. Returns 0 if no time
// has been recorded at all.
func (t RuntimeTimings) ProducerWaitPercent() float64 {
	total := t.ProducerWaitRuntime + t.ExecuteWaitRuntime
	if total <= 0 {
		return 0
	}
	return float64(t.ProducerWaitRuntime) / float64(total) * 100
}
