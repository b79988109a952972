package pipeline

import (
	"sort"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Pipeline applies the deterministic pre-execution transforms to a list of
// payment candidates: address remapping, merging of payouts sharing a
// destination, dormant account filtering and the final execution ordering.
//
// All phases are pure with respect to their input. The returned list is
// built of fresh or untouched items, never of mutated input items.
type Pipeline struct {
	destMap          map[string]string
	balances         payout.BalanceSource
	reactivateZeroed bool
	logger           log.Logger
}

// New returns a pipeline. destMap may be nil when no remapping is
// configured. logger may be nil, in which case nothing is logged.
func New(destMap map[string]string, balances payout.BalanceSource, reactivateZeroed bool, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Pipeline{
		destMap:          destMap,
		balances:         balances,
		reactivateZeroed: reactivateZeroed,
		logger:           logger,
	}
}

// Run pushes candidates through all phases and returns them in execution
// order.
func (p *Pipeline) Run(items []*payout.Item) ([]*payout.Item, error) {
	items = Remap(items, p.destMap)

	items, err := Merge(items)
	if err != nil {
		return nil, errors.Wrap(err, "merge")
	}

	items, err = ZeroBalanceFilter(items, p.balances, p.reactivateZeroed, p.logger)
	if err != nil {
		return nil, errors.Wrap(err, "zero balance filter")
	}

	Sort(items)
	return items, nil
}

// Sort orders candidates for execution: founders first, then owners, then
// delegators, merged payouts last. Within a kind the higher staking
// balance goes first and the address breaks remaining ties, so that the
// ordering is a pure function of the input. Downstream fee and runway
// projections rely on this order being reproducible.
func Sort(items []*payout.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if pa, pb := a.Kind.Priority(), b.Kind.Priority(); pa != pb {
			return pa < pb
		}
		if a.StakingBalance != b.StakingBalance {
			return a.StakingBalance > b.StakingBalance
		}
		return a.Address < b.Address
	})
}
