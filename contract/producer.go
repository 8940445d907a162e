package contract

import "context"

// Producer is the external collaborator that generates batches of
// requests to drive through the engine. ForWorker is called once per
// worker at startup so implementations can shard work deterministically
// (e.g. round-robin a request list by worker id); Ready is called once
// all of that worker's connections are established and before the
// first CreateBatch call; CreateBatch is then polled in a loop until it
// returns an End batch or an error.
type Producer interface {
	ForWorker(workerID int) Producer
	Ready(ctx context.Context)
	CreateBatch(ctx context.Context) (RequestBatch, error)
}
