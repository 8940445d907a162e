package rewrk

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/multierr"

	"github.com/rewrkio/rewrk/internal/collectoractor"
	"github.com/rewrkio/rewrk/internal/connector"
	"github.com/rewrkio/rewrk/internal/mailbox"
	"github.com/rewrkio/rewrk/internal/workerrt"
	"github.com/rewrkio/rewrk/rewrklog"
	"github.com/rewrkio/rewrk/sample"
)

// Benchmark is the orchestrator described in spec.md section 4.8: it
// owns the resolved target, the collector actor, the shutdown flag,
// and spawns one workerrt.Worker per configured worker on Run.
type Benchmark struct {
	cfg         config
	concurrency int

	baseConnector *connector.Connector
	protocol      Protocol
	producer      Producer

	shutdown       *ShutdownHandle
	inbox          *mailbox.Mailbox[*sample.Sample]
	collectorActor *collectoractor.Actor

	mu      sync.Mutex
	started bool
	done    chan struct{}
	runErr  error
}

// Create parses baseURI, resolves its address, and wires up the
// collector actor. The returned Benchmark is configured with defaults
// and is ready for its mutators and then Run.
func Create(ctx context.Context, baseURI string, concurrency int, protocol Protocol, producer Producer, collector SampleCollector) (*Benchmark, error) {
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if producer == nil {
		return nil, fmt.Errorf("producer must not be nil")
	}
	if collector == nil {
		return nil, fmt.Errorf("collector must not be nil")
	}

	target, err := connector.ParseTarget(ctx, baseURI, protocol)
	if err != nil {
		return nil, err
	}

	b := &Benchmark{
		cfg:           defaultConfig(),
		concurrency:   concurrency,
		baseConnector: connector.New(target, ""),
		protocol:      protocol,
		producer:      producer,
		shutdown:      NewShutdownHandle(),
		inbox:         mailbox.New[*sample.Sample](),
		done:          make(chan struct{}),
	}

	b.collectorActor = collectoractor.New(b.inbox, collector)
	b.collectorActor.Start(ctx)

	return b, nil
}

// Run partitions concurrency across the configured worker count,
// spawns one workerrt.Worker per worker, and returns a channel that
// closes once every worker has exited. Calling Run more than once is
// a no-op; it returns the same channel.
func (b *Benchmark) Run(ctx context.Context) <-chan struct{} {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return b.done
	}
	b.started = true
	b.mu.Unlock()

	slots := partitionSlots(b.concurrency, b.cfg.numWorkers)
	rewrklog.Info().Int("workers", len(slots)).Int("concurrency", b.concurrency).
		Str("protocol", b.protocol.String()).Msg("starting benchmark run")

	// conc.WaitGroup recovers a panicking worker goroutine and re-raises
	// it from Wait, instead of a bare goroutine panic taking the whole
	// process down before the other workers get a chance to drain.
	var wg conc.WaitGroup
	for id, n := range slots {
		if n == 0 {
			continue
		}
		id := id
		workerConnector := b.baseConnector.Clone()
		workerConnector.SetMaxRetries(b.cfg.connectionRetryMax)

		w := &workerrt.Worker{
			ID:                     id,
			Slots:                  n,
			Connector:              workerConnector,
			Producer:               b.producer,
			Validator:              b.cfg.validator,
			Window:                 b.cfg.sampleWindow,
			Shutdown:               b.shutdown,
			Sink:                   b.inbox,
			ProducerWaitWarningPct: b.cfg.producerWaitWarningPct,
		}

		wg.Go(func() {
			if _, err := w.Run(ctx); err != nil {
				b.mu.Lock()
				b.runErr = multierr.Append(b.runErr, fmt.Errorf("worker %d: %w", id, err))
				b.mu.Unlock()
			}
		})
	}

	go func() {
		wg.Wait()
		rewrklog.Info().Msg("all workers exited")
		close(b.done)
	}()

	return b.done
}

// Err returns the combined errors of every worker that exited
// abnormally (most commonly a failed connection establishment). It is
// safe to call at any point; it returns nil until the corresponding
// workers have actually exited.
func (b *Benchmark) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runErr
}

// Shutdown sets the cooperative shutdown flag; every worker drains and
// exits at its next poll point.
func (b *Benchmark) Shutdown() {
	if b.shutdown.Set() {
		rewrklog.Info().Msg("shutdown requested")
	}
}

// ConsumeCollector triggers shutdown, waits for every worker to exit
// and the sample mailbox to drain, and returns the user's
// SampleCollector for any final reporting.
func (b *Benchmark) ConsumeCollector(ctx context.Context) SampleCollector {
	b.Shutdown()
	select {
	case <-b.done:
	case <-ctx.Done():
	}
	b.inbox.Close()
	b.collectorActor.Wait()
	return b.collectorActor.Collector()
}

// partitionSlots implements spec.md section 4.7's concurrency split:
// each of w workers gets floor(concurrency/w) slots, and the first
// concurrency%w workers get one extra.
func partitionSlots(concurrency, w int) []int {
	if w <= 0 {
		w = 1
	}
	base := concurrency / w
	rem := concurrency % w
	slots := make([]int, w)
	for i := range slots {
		slots[i] = base
		if i < rem {
			slots[i]++
		}
	}
	return slots
}
