package payout

import (
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
)

// Kind classifies a payment item by the role of its recipient.
type Kind string

const (
	// KindFounder is a payout to a founders account.
	KindFounder Kind = "F"
	// KindOwner is a payout to an owners account.
	KindOwner Kind = "O"
	// KindDelegator is a regular delegator reward payout.
	KindDelegator Kind = "D"
	// KindMerged is a payout that combines several items remapped to
	// the same destination address.
	KindMerged Kind = "M"

	// KindExit is a distinguished kind that signals the worker to
	// terminate. It never represents a payment.
	KindExit Kind = "X"
)

// Priority returns the execution ordering weight of the kind. Founders are
// paid first, merged payouts last. Unknown kinds sort after everything.
func (k Kind) Priority() int {
	switch k {
	case KindFounder:
		return 0
	case KindOwner:
		return 1
	case KindDelegator:
		return 2
	case KindMerged:
		return 3
	}
	return 4
}

// Validate returns an error unless the kind is one of the payable kinds.
func (k Kind) Validate() error {
	switch k {
	case KindFounder, KindOwner, KindDelegator, KindMerged:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown item kind %q", string(k))
}

// Status is the payment state of a single item.
type Status uint8

const (
	// StatusUnpaid items are candidates for execution.
	StatusUnpaid Status = iota
	// StatusFail items were attempted and are retryable on a later run
	// of the same cycle.
	StatusFail
	// StatusPaid items were executed and confirmed.
	StatusPaid
	// StatusInjected items were broadcast but final confirmation is not
	// known. They are treated as processed and never retried.
	StatusInjected
)

// Processed returns true for terminal statuses. A processed item must
// never re-enter execution.
func (s Status) Processed() bool {
	return s == StatusPaid || s == StatusInjected
}

func (s Status) String() string {
	switch s {
	case StatusUnpaid:
		return "UNPAID"
	case StatusFail:
		return "FAIL"
	case StatusPaid:
		return "PAID"
	case StatusInjected:
		return "INJECTED"
	}
	return "INVALID"
}

// ParseStatus converts a report file representation back into a Status.
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case "UNPAID":
		return StatusUnpaid, nil
	case "FAIL":
		return StatusFail, nil
	case "PAID":
		return StatusPaid, nil
	case "INJECTED":
		return StatusInjected, nil
	}
	return StatusUnpaid, errors.Wrapf(errors.ErrCorrupt, "unknown status %q", raw)
}

// Source records the original contributor of a merged payout so that a
// report can still name every address the merged amount came from.
type Source struct {
	Address string
	Amount  coin.Mutez
}

// Item is a single payment obligation within a cycle batch.
type Item struct {
	// Address is the destination of the transfer. The remap phase may
	// rewrite it, in which case OriginalAddress keeps where the payment
	// pointed before.
	Address string
	// OriginalAddress is only set for remapped items.
	OriginalAddress string
	Kind            Kind
	// Sources is set for KindMerged items only and retains the original
	// contributors together with their amounts.
	Sources []Source
	// StakingBalance is the stake the reward was computed from. It is
	// only used as the deterministic ordering tiebreak.
	StakingBalance coin.Mutez
	// RawAmount is the reward as computed upstream.
	RawAmount coin.Mutez
	// AdjustedAmount is the amount to transfer after fee adjustments
	// and merging.
	AdjustedAmount coin.Mutez
	// DelegateFee and DelegatorFee are filled in by the executor with
	// the transaction fees actually charged.
	DelegateFee  coin.Mutez
	DelegatorFee coin.Mutez
	// Payable is false for items administratively excluded from
	// execution. Non payable items are never reported.
	Payable bool
	Status  Status
	// Desc collects free form annotations accumulated while the item
	// travels through the pipeline.
	Desc string
}

// Clone returns an independent deep copy of the item.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	cpy := *it
	if it.Sources != nil {
		cpy.Sources = make([]Source, len(it.Sources))
		copy(cpy.Sources, it.Sources)
	}
	return &cpy
}

// Validate ensures the item can be submitted for execution.
func (it *Item) Validate() error {
	var err error
	if it.Address == "" {
		err = errors.Append(err, errors.Wrap(errors.ErrEmpty, "address"))
	}
	if e := it.Kind.Validate(); e != nil {
		err = errors.Append(err, e)
	}
	if e := it.AdjustedAmount.Validate(); e != nil {
		err = errors.Append(err, errors.Wrap(e, "adjusted amount"))
	}
	return err
}

// ExitItem returns the poison pill. A batch starting with this item makes
// the worker terminate after the batch is observed.
func ExitItem() *Item {
	return &Item{Kind: KindExit}
}
