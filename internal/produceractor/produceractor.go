// Package produceractor runs the per-worker background task that owns
// the user Producer and feeds Batches into a bounded channel for the
// worker's slot tasks to consume.
package produceractor

import (
	"context"

	"github.com/rewrkio/rewrk/contract"
	"github.com/rewrkio/rewrk/rewrklog"
)

// Actor owns one worker's Producer clone and the sending side of its
// bounded batch channel.
type Actor struct {
	workerID int
	producer contract.Producer
	batches  chan contract.Batch
	goSignal chan struct{}
	done     chan struct{}
}

// New builds an Actor for workerID, sharding producer via ForWorker and
// sizing the backpressure channel to 4x the worker's slot count.
func New(workerID int, producer contract.Producer, slots int) *Actor {
	capacity := slots * 4
	if capacity <= 0 {
		capacity = 4
	}
	return &Actor{
		workerID: workerID,
		producer: producer.ForWorker(workerID),
		batches:  make(chan contract.Batch, capacity),
		goSignal: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Batches returns the receive side slot tasks read from. It closes
// once the producer reaches End or errors.
func (a *Actor) Batches() <-chan contract.Batch { return a.batches }

// Go releases the one-shot signal that lets the actor call
// producer.Ready and begin producing, per spec.md section 4.6 step 1.
func (a *Actor) Go() {
	close(a.goSignal)
}

// Start launches the actor goroutine.
func (a *Actor) Start(ctx context.Context) {
	go a.run(ctx)
}

// Wait blocks until the actor goroutine has exited.
func (a *Actor) Wait() {
	<-a.done
}

func (a *Actor) run(ctx context.Context) {
	defer close(a.done)
	defer close(a.batches)

	select {
	case <-a.goSignal:
	case <-ctx.Done():
		return
	}

	a.producer.Ready(ctx)

	for {
		rb, err := a.producer.CreateBatch(ctx)
		if err != nil {
			rewrklog.Error().Err(err).Int("worker", a.workerID).Msg("producer returned an error, terminating")
			return
		}
		if rb.End {
			rewrklog.Debug().Int("worker", a.workerID).Msg("producer reached end of requests")
			return
		}
		select {
		case a.batches <- rb.Batch:
		case <-ctx.Done():
			return
		}
	}
}
