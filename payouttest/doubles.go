/*
Package payouttest provides test doubles for the engine collaborators: a
scripted executor, a static balance source, recording notification and
statistics sinks and a recording producer. They are used by the package
tests across this repository and can be used by any application embedding
the engine.
*/
package payouttest

import (
	"context"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/stats"
)

// Executor is a scripted payout.Executor. Every item is annotated with the
// status scripted for its address, StatusPaid when not scripted. The input
// order is preserved and input items are never mutated.
type Executor struct {
	// Outcomes maps an address to the status the executor applies.
	Outcomes map[string]payout.Status
	// DelegateFee and DelegatorFee are stamped on every attempted item.
	DelegateFee  coin.Mutez
	DelegatorFee coin.Mutez
	// FutureCycles is reported back as the runway projection.
	FutureCycles int
	// Err, when set, fails every Pay call.
	Err error

	payCall   int
	lastDry   bool
	lastItems []*payout.Item
}

var _ payout.Executor = (*Executor)(nil)

func (e *Executor) Pay(ctx context.Context, items []*payout.Item, dryRun bool) (*payout.ExecResult, error) {
	e.payCall++
	e.lastDry = dryRun
	e.lastItems = items

	if e.Err != nil {
		return nil, e.Err
	}

	res := payout.ExecResult{
		Items:        make([]*payout.Item, 0, len(items)),
		Attempts:     len(items),
		FutureCycles: e.FutureCycles,
	}
	for _, it := range items {
		out := it.Clone()
		out.Status = payout.StatusPaid
		if s, ok := e.Outcomes[it.Address]; ok {
			out.Status = s
		}
		out.DelegateFee = e.DelegateFee
		out.DelegatorFee = e.DelegatorFee
		if out.Status.Processed() {
			res.TotalPaid += out.AdjustedAmount
		}
		res.Items = append(res.Items, out)
	}
	return &res, nil
}

// PayCallCount returns how many times Pay was invoked.
func (e *Executor) PayCallCount() int {
	return e.payCall
}

// LastDryRun returns the dryRun flag of the most recent Pay call.
func (e *Executor) LastDryRun() bool {
	return e.lastDry
}

// LastItems returns the candidates of the most recent Pay call.
func (e *Executor) LastItems() []*payout.Item {
	return e.lastItems
}

// Balances is a static payout.BalanceSource. Addresses not present in
// Amounts are reported as funded with one whole unit, so that only
// explicitly declared accounts appear dormant.
type Balances struct {
	Amounts map[string]coin.Mutez
	// Err, when set, fails every lookup.
	Err error
}

var _ payout.BalanceSource = (*Balances)(nil)

func (b *Balances) Balance(address string) (coin.Mutez, error) {
	if b.Err != nil {
		return 0, b.Err
	}
	if amount, ok := b.Amounts[address]; ok {
		return amount, nil
	}
	return coin.MutezPerTez, nil
}

// PayoutNote is a recorded payout notification.
type PayoutNote struct {
	Cycle      int64
	Total      coin.Mutez
	Recipients int
}

// AdminNote is a recorded admin notification.
type AdminNote struct {
	Subject     string
	Message     string
	Attachments []string
	Items       []*payout.Item
}

// Notifier records every notification it receives.
type Notifier struct {
	Payouts []PayoutNote
	Admins  []AdminNote
	// Err, when set, is returned from every send.
	Err error
}

func (n *Notifier) SendPayoutNotification(cycle int64, total coin.Mutez, recipients int) error {
	n.Payouts = append(n.Payouts, PayoutNote{Cycle: cycle, Total: total, Recipients: recipients})
	return n.Err
}

func (n *Notifier) SendAdminNotification(subject, message string, attachments []string, items []*payout.Item) error {
	n.Admins = append(n.Admins, AdminNote{
		Subject:     subject,
		Message:     message,
		Attachments: attachments,
		Items:       items,
	})
	return n.Err
}

// Name makes the notifier identifiable in fanout logs.
func (n *Notifier) Name() string {
	return "payouttest"
}

// Publisher records every published statistics record.
type Publisher struct {
	Records []*stats.Record
	// Err, when set, is returned from every publish.
	Err error
	// Panic, when set, makes every publish panic. Publishing is fire
	// and forget, so a publisher blowing up must not hurt the worker.
	Panic bool
}

var _ stats.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(rec *stats.Record) error {
	if p.Panic {
		panic("stats publisher exploded")
	}
	p.Records = append(p.Records, rec)
	return p.Err
}

// Producer records the batches it was notified about.
type Producer struct {
	Successes []*payout.Batch
	Failures  []*payout.Batch
}

var _ payout.Producer = (*Producer)(nil)

func (p *Producer) OnSuccess(b *payout.Batch) {
	p.Successes = append(p.Successes, b)
}

func (p *Producer) OnFail(b *payout.Batch) {
	p.Failures = append(p.Failures, b)
}

// Guard is a static payout.DiskGuard.
type Guard struct {
	Full bool
}

var _ payout.DiskGuard = (*Guard)(nil)

func (g *Guard) IsFull() bool {
	return g.Full
}
