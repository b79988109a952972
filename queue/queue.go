package queue

import (
	"context"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/errors"
)

// Queue is a blocking FIFO of payment batches connecting the upstream
// producer with a payment worker. Shutdown is signalled in band by
// enqueueing the poison pill batch, so that all batches enqueued before
// the pill are still processed.
type Queue struct {
	batches chan *payout.Batch
}

// New returns a queue holding up to capacity batches. A producer putting
// into a full queue blocks, which is the natural backpressure on batch
// production.
func New(capacity int) *Queue {
	return &Queue{
		batches: make(chan *payout.Batch, capacity),
	}
}

// Put enqueues a batch, blocking while the queue is full. It returns early
// with an error when the context is cancelled.
func (q *Queue) Put(ctx context.Context, b *payout.Batch) error {
	select {
	case q.batches <- b:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "queue put")
	}
}

// Get dequeues the oldest batch, blocking while the queue is empty. It
// returns early with an error when the context is cancelled.
func (q *Queue) Get(ctx context.Context) (*payout.Batch, error) {
	select {
	case b := <-q.batches:
		return b, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "queue get")
	}
}

// Len returns the number of batches currently waiting.
func (q *Queue) Len() int {
	return len(q.batches)
}

// PutExit enqueues the poison pill. Batches already in the queue are
// drained before a worker observes the pill and terminates.
func (q *Queue) PutExit(ctx context.Context) error {
	return q.Put(ctx, payout.ExitBatch())
}
