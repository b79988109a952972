package payout

// Producer is notified once, synchronously, after a batch was processed
// and its Items slot was replaced with the outcome items.
type Producer interface {
	OnSuccess(*Batch)
	OnFail(*Batch)
}

// Batch is a single cycle worth of payment obligations. It is created by
// an upstream producer, travels through the work queue and is consumed
// exactly once. Items is replaced with the outcome items before any
// producer callback fires.
type Batch struct {
	Cycle int64
	Items []*Item
	// Producer is optional. When set, exactly one of its callbacks is
	// invoked after processing.
	Producer Producer
}

// Empty returns true if there is nothing to process.
func (b *Batch) Empty() bool {
	return len(b.Items) == 0
}

// IsExit returns true if the batch carries the shutdown signal. Only the
// first item is inspected, remaining items are ignored.
func (b *Batch) IsExit() bool {
	return len(b.Items) > 0 && b.Items[0].Kind == KindExit
}

// ExitBatch returns the poison pill batch used to shut a worker down.
func ExitBatch() *Batch {
	return &Batch{Items: []*Item{ExitItem()}}
}
