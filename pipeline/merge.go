package pipeline

import (
	"github.com/iov-one/payout"
	"github.com/iov-one/payout/errors"
)

// Merge collapses candidates sharing a destination address into a single
// item of KindMerged. The merged amount is the sum of all contributors and
// the original contributors are retained in Sources for reporting. Groups
// of size one pass through untouched. The output order is stable by first
// seen address, so no item is lost or duplicated.
func Merge(items []*payout.Item) ([]*payout.Item, error) {
	groups := make(map[string][]*payout.Item, len(items))
	order := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := groups[it.Address]; !ok {
			order = append(order, it.Address)
		}
		groups[it.Address] = append(groups[it.Address], it)
	}

	out := make([]*payout.Item, 0, len(order))
	for _, addr := range order {
		group := groups[addr]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		merged, err := mergeGroup(addr, group)
		if err != nil {
			return nil, errors.Wrapf(err, "address %s", addr)
		}
		out = append(out, merged)
	}
	return out, nil
}

func mergeGroup(addr string, group []*payout.Item) (*payout.Item, error) {
	merged := &payout.Item{
		Address: addr,
		Kind:    payout.KindMerged,
		Sources: make([]payout.Source, 0, len(group)),
		Payable: true,
		Status:  payout.StatusUnpaid,
		Desc:    "Merged payment. ",
	}

	for _, it := range group {
		var err error
		if merged.AdjustedAmount, err = merged.AdjustedAmount.Add(it.AdjustedAmount); err != nil {
			return nil, errors.Wrap(err, "adjusted amount")
		}
		if merged.RawAmount, err = merged.RawAmount.Add(it.RawAmount); err != nil {
			return nil, errors.Wrap(err, "raw amount")
		}
		// The combined stake keeps the ordering tiebreak meaningful
		// for the merged item.
		if merged.StakingBalance, err = merged.StakingBalance.Add(it.StakingBalance); err != nil {
			return nil, errors.Wrap(err, "staking balance")
		}

		if len(it.Sources) > 0 {
			// An already merged item contributes its original
			// sources, not itself.
			merged.Sources = append(merged.Sources, it.Sources...)
			continue
		}
		merged.Sources = append(merged.Sources, payout.Source{
			Address: contributor(it),
			Amount:  it.AdjustedAmount,
		})
	}

	return merged, nil
}

// contributor names the origin of a merged amount. Remapped items share
// their destination, so the contributor is where the payment originally
// pointed.
func contributor(it *payout.Item) string {
	if it.OriginalAddress != "" {
		return it.OriginalAddress
	}
	return it.Address
}
