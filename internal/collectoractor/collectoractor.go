// Package collectoractor runs the single goroutine that owns the user's
// SampleCollector: it drains the unbounded sample mailbox, sorts each
// Sample's latency and transfer slices, and hands it to ProcessSample one at a time
// so user code never has to be safe for concurrent use.
package collectoractor

import (
	"context"

	"github.com/rewrkio/rewrk/contract"
	"github.com/rewrkio/rewrk/internal/mailbox"
	"github.com/rewrkio/rewrk/rewrklog"
	"github.com/rewrkio/rewrk/sample"
)

// Actor owns the consuming side of the sample mailbox.
type Actor struct {
	inbox     *mailbox.Mailbox[*sample.Sample]
	collector contract.SampleCollector
	done      chan struct{}
}

// New builds an Actor draining inbox into collector. Start must be
// called to begin consuming.
func New(inbox *mailbox.Mailbox[*sample.Sample], collector contract.SampleCollector) *Actor {
	return &Actor{inbox: inbox, collector: collector, done: make(chan struct{})}
}

// Start launches the consumer goroutine and returns immediately. The
// goroutine exits once the mailbox is closed and fully drained.
func (a *Actor) Start(ctx context.Context) {
	go a.run(ctx)
}

// Wait blocks until the consumer goroutine has exited.
func (a *Actor) Wait() {
	<-a.done
}

// Collector surrenders the user collector back to the caller. Only
// meaningful after Wait returns, once the actor is no longer calling
// into it concurrently.
func (a *Actor) Collector() contract.SampleCollector {
	return a.collector
}

func (a *Actor) run(ctx context.Context) {
	defer close(a.done)
	for {
		s, ok := a.inbox.Recv()
		if !ok {
			return
		}
		s.Sort()
		if err := a.collector.ProcessSample(ctx, s); err != nil {
			rewrklog.Warn().Err(err).Uint64("tag", s.Tag).Msg("sample collector returned an error, ignoring")
		}
	}
}
