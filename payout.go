package payout

import (
	"context"

	"github.com/iov-one/payout/coin"
)

// ExecResult is what the executor reports back after attempting an ordered
// batch of payments.
type ExecResult struct {
	// Items are the outcome items. The executor only annotates items
	// (status, fees, description), it never reorders or drops them.
	Items []*Item
	// Attempts is the number of injection attempts made. Zero means
	// nothing was submitted and no notifications should be sent.
	Attempts int
	// TotalPaid is the total amount paid out in this run.
	TotalPaid coin.Mutez
	// FutureCycles is the projected number of future cycles that the
	// remaining payout account balance can cover.
	FutureCycles int
}

// Executor performs the actual transfers for an ordered list of payment
// candidates. Signing, fee policy and broadcast retries are all behind
// this interface and out of scope for the engine.
type Executor interface {
	Pay(ctx context.Context, items []*Item, dryRun bool) (*ExecResult, error)
}

// BalanceSource looks up the spendable balance of a destination address.
// It is used by the zero balance filter to detect dormant accounts.
type BalanceSource interface {
	Balance(address string) (coin.Mutez, error)
}

// DiskGuard is the ambient capacity check consulted before every dequeue.
// A guard reporting full makes the worker stop pulling work rather than
// risking a half completed report write.
type DiskGuard interface {
	IsFull() bool
}
