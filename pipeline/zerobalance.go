package pipeline

import (
	"github.com/iov-one/payout"
	"github.com/iov-one/payout/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// ZeroBalanceFilter drops payments to dormant, zero balance destinations
// unless reactivation is enabled. A reactivated destination proceeds to
// execution and the payment implicitly covers the reactivation. Dropped
// items are excluded from both reports.
func ZeroBalanceFilter(items []*payout.Item, balances payout.BalanceSource, reactivateZeroed bool, logger log.Logger) ([]*payout.Item, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	out := make([]*payout.Item, 0, len(items))
	for _, it := range items {
		balance, err := balances.Balance(it.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %s", it.Address)
		}
		if !balance.IsZero() {
			out = append(out, it)
			continue
		}

		if !reactivateZeroed {
			logger.Info("Skipping payment to a dormant account",
				"address", it.Address, "amount", it.AdjustedAmount.String())
			continue
		}

		kept := it.Clone()
		kept.Desc += "Reactivation of a zero balance account. "
		out = append(out, kept)
	}
	return out, nil
}
