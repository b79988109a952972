package report

import (
	"github.com/iov-one/payout"
	"github.com/iov-one/payout/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Reconciler back fills the transaction fees actually charged during
// execution into the calculation report of a cycle.
//
// The merge is strictly field level: only the two fee fields of matched
// rows are overwritten. Reward amounts, the report total and all metadata
// except the reconciliation flag are preserved. Rows without a matching
// outcome item only gain a note.
type Reconciler struct {
	calc          *CalcStore
	bakingAddress string
	logger        log.Logger
}

// NewReconciler returns a reconciler working against given calculation
// store. calc may be nil when no calculation directory is configured, in
// which case reconciliation is a logged no-op.
func NewReconciler(calc *CalcStore, bakingAddress string, logger log.Logger) *Reconciler {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Reconciler{
		calc:          calc,
		bakingAddress: bakingAddress,
		logger:        logger,
	}
}

// Reconcile updates the calculation report of the cycle with the fees
// carried by the outcome items.
func (r *Reconciler) Reconcile(cycle int64, items []*payout.Item) error {
	if r.calc == nil {
		r.logger.Info("Calculations file not modified", "cycle", cycle)
		return nil
	}

	path := r.calc.PathFor(cycle)
	rows, meta, err := r.calc.Parse(path, r.bakingAddress)
	if err != nil {
		return errors.Wrap(err, "parse calculation report")
	}

	byAddress := make(map[string]*payout.Item, len(items))
	for _, it := range items {
		byAddress[it.Address] = it
	}

	for _, row := range rows {
		it, ok := byAddress[row.Address]
		if !ok {
			row.Desc += "Not in payment log. "
			continue
		}
		row.DelegateFee = it.DelegateFee
		row.DelegatorFee = it.DelegatorFee
	}

	meta.Reconciled = true
	if err := r.calc.Write(rows, path, meta, r.bakingAddress); err != nil {
		return errors.Wrap(err, "write calculation report")
	}

	r.logger.Info("Transaction fees added to the calculation report",
		"cycle", cycle, "path", path)
	return nil
}
