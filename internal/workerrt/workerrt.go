// Package workerrt implements the per-worker runtime described in
// spec.md section 4.7: connection establishment for a worker's slots,
// the producer actor that feeds them, and the per-slot benchmark loop
// that turns batches into recorded Samples.
package workerrt

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/rewrkio/rewrk/contract"
	"github.com/rewrkio/rewrk/internal/conn"
	"github.com/rewrkio/rewrk/internal/connector"
	"github.com/rewrkio/rewrk/internal/produceractor"
	"github.com/rewrkio/rewrk/rewrklog"
	"github.com/rewrkio/rewrk/sample"
)

// connectTimeout is the fixed per-attempt deadline for establishing a
// slot's connection (spec.md section 4.7 step 3).
const connectTimeout = 5 * time.Second

// shutdownPollInterval bounds how quickly a blocked slot notices the
// shutdown flag was set elsewhere, since the flag itself carries no
// wakeup signal.
const shutdownPollInterval = 50 * time.Millisecond

// Worker runs one of the benchmark's num_workers parallel runtimes: a
// fixed number of concurrency slots, each driving its own Connection,
// fed by a single producer actor over a shared bounded channel.
type Worker struct {
	ID    int
	Slots int

	Connector *connector.Connector
	Producer  contract.Producer
	Validator contract.ResponseValidator

	Window                 time.Duration
	Shutdown               *contract.ShutdownHandle
	Sink                   sample.Submitter
	ProducerWaitWarningPct float64
}

// Run establishes this worker's slot connections, drives every slot's
// benchmark loop to completion, and returns the summed RuntimeTimings.
// It pins the calling goroutine to its OS thread for the duration.
// Only that goroutine is pinned: the producer actor and the per-slot
// loops run in their own goroutines, which the Go scheduler may place
// on any thread.
func (w *Worker) Run(parent context.Context) (contract.RuntimeTimings, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go w.watchShutdown(ctx, cancel)

	actor := produceractor.New(w.ID, w.Producer, w.Slots)
	actor.Start(ctx)

	connections, err := w.establishSlots(ctx)
	if err != nil {
		if w.Shutdown.Set() {
			rewrklog.Error().Err(err).Int("worker", w.ID).Msg("failed to establish a connection, shutting down")
		}
		for _, c := range connections {
			_ = c.Close()
		}
		cancel()
		actor.Wait()
		return contract.RuntimeTimings{}, fmt.Errorf("establish slots: %w", err)
	}

	actor.Go()
	rewrklog.Debug().Int("worker", w.ID).Int("slots", len(connections)).Msg("all slot connections established, starting")

	// One Factory shared by every slot in this worker; ConcurrencyID is
	// left at its zero value, same as the original's SampleMetadata.
	factory := sample.NewFactory(sample.Metadata{WorkerID: w.ID}, w.Window, w.Sink)

	// errgroup gives every slot a shared, cancel-on-first-error context:
	// a slot that exits on a transport error unblocks its siblings'
	// batch receives immediately, rather than waiting on the shutdown
	// flag's poll interval.
	g, gctx := errgroup.WithContext(ctx)
	timings := make([]contract.RuntimeTimings, len(connections))
	slotErrs := make([]error, len(connections))
	for slotID, connection := range connections {
		slotID, connection := slotID, connection
		g.Go(func() error {
			t, slotErr := w.runSlot(gctx, slotID, connection, actor.Batches(), factory)
			timings[slotID] = t
			slotErrs[slotID] = slotErr
			return slotErr
		})
	}
	_ = g.Wait()

	var total contract.RuntimeTimings
	for _, t := range timings {
		total = total.Add(t)
	}

	actor.Wait()

	if pct := total.ProducerWaitPercent(); pct >= w.ProducerWaitWarningPct {
		rewrklog.Warn().Float64("producer_wait_percent", pct).Int("worker", w.ID).
			Msg("producer wait time crossed the configured warning threshold")
	}

	return total, multierr.Combine(slotErrs...)
}

func (w *Worker) watchShutdown(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.Shutdown.IsSet() {
				cancel()
				return
			}
		}
	}
}

// establishSlots connects every slot sequentially. On the first
// failure it stops, reporting the connections already made so the
// caller can close them.
func (w *Worker) establishSlots(ctx context.Context) ([]*conn.Connection, error) {
	connections := make([]*conn.Connection, 0, w.Slots)
	slotConnector := w.Connector.Clone()
	for i := 0; i < w.Slots; i++ {
		c, err := slotConnector.ConnectTimeout(ctx, connectTimeout)
		if err != nil {
			return connections, err
		}
		if c == nil {
			return connections, errors.New("connect timed out with no underlying error")
		}
		connections = append(connections, c)
	}
	return connections, nil
}

// runSlot is the per-slot benchmark loop of spec.md section 4.7.
func (w *Worker) runSlot(
	ctx context.Context,
	slotID int,
	connection *conn.Connection,
	batches <-chan contract.Batch,
	factory *sample.Factory,
) (contract.RuntimeTimings, error) {
	defer connection.Close()

	var timings contract.RuntimeTimings
	var current *sample.Sample
	var windowStart time.Time
	var slotErr error
	firstBatch := true

	for !w.Shutdown.IsSet() {
		t0 := time.Now()
		batch, ok := recvBatch(ctx, batches)
		timings.ProducerWaitRuntime += time.Since(t0)
		if !ok {
			break
		}
		if firstBatch {
			windowStart = time.Now()
			firstBatch = false
		}

		t1 := time.Now()
		next, stop, err := w.runBatch(ctx, connection, batch, current, factory, &windowStart)
		timings.ExecuteWaitRuntime += time.Since(t1)
		current = next
		if err != nil {
			slotErr = fmt.Errorf("slot %d: %w", slotID, err)
		}
		if stop {
			break
		}
	}

	if current != nil {
		current.SetTotalDuration(time.Since(windowStart))
		factory.SubmitSample(current)
	}

	return timings, slotErr
}

func recvBatch(ctx context.Context, batches <-chan contract.Batch) (contract.Batch, bool) {
	select {
	case b, ok := <-batches:
		return b, ok
	case <-ctx.Done():
		return contract.Batch{}, false
	}
}

// runBatch executes every request in batch against connection,
// rolling the current Sample over whenever the batch tag changes or
// the sample window elapses. It returns the (possibly new, possibly
// nil) current Sample and whether the slot should stop.
func (w *Worker) runBatch(
	ctx context.Context,
	connection *conn.Connection,
	batch contract.Batch,
	current *sample.Sample,
	factory *sample.Factory,
	windowStart *time.Time,
) (*sample.Sample, bool, error) {
	switch {
	case current == nil:
		current = factory.NewSample(batch.Tag)
	case current.Tag != batch.Tag:
		current.SetTotalDuration(time.Since(*windowStart))
		if factory.SubmitSample(current) == sample.Shutdown {
			w.Shutdown.Set()
			return nil, true, nil
		}
		current = factory.NewSample(batch.Tag)
		*windowStart = time.Now()
	}

	usage := connection.Usage()

	for n, req := range batch.Requests {
		key := contract.RequestKey{WorkerID: w.ID, RequestID: batch.FirstRequestID + uint64(n)}
		current.RecordTotalRequest()

		readStart, writeStart := usage.Received(), usage.Written()
		tReq := time.Now()

		head, body, err := connection.ExecuteReq(ctx, req)
		if err != nil {
			switch conn.Classify(err) {
			case conn.ErrConnectionAborted:
				current.RecordError(*sample.NewConnectionAborted())
				w.Shutdown.Set()
				return current, true, fmt.Errorf("connection aborted: %w", err)
			case conn.ErrInvalidBody:
				current.RecordError(*sample.NewInvalidBody("invalid-http-body"))
				continue
			case conn.ErrTimeout:
				current.RecordError(*sample.NewTimeout())
				continue
			default:
				rewrklog.Error().Err(err).Int("worker", w.ID).Msg("request failed with an unexpected transport error")
				w.Shutdown.Set()
				return current, true, fmt.Errorf("unexpected transport error: %w", err)
			}
		}

		elapsed := time.Since(tReq)
		readEnd, writeEnd := usage.Received(), usage.Written()

		if verr := w.Validator.Validate(key, head, body); verr != nil {
			current.RecordError(*verr)
		} else {
			current.RecordSuccessfulRequest()
			current.RecordLatency(elapsed)
			current.RecordReadTransfer(readStart, readEnd, elapsed)
			current.RecordWriteTransfer(writeStart, writeEnd, elapsed)
		}

		if w.Shutdown.IsSet() {
			return current, true, nil
		}

		// Checked after every request, not just once per batch: a
		// producer emitting few large batches must still roll the
		// window mid-batch once it elapses.
		if factory.ShouldSubmit(*windowStart) {
			current.SetTotalDuration(time.Since(*windowStart))
			if factory.SubmitSample(current) == sample.Shutdown {
				w.Shutdown.Set()
				return nil, true, nil
			}
			current = factory.NewSample(batch.Tag)
			*windowStart = time.Now()
		}
	}

	return current, false, nil
}
