package commands

import (
	"context"
	"flag"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
	"github.com/iov-one/payout/notify"
	"github.com/iov-one/payout/pay"
	"github.com/iov-one/payout/queue"
	"github.com/iov-one/payout/report"
	"github.com/tendermint/tendermint/libs/log"
)

// ReplayCmd pushes the failed payments of a cycle through the engine once
// more. Execution is always a dry run: the simulated executor marks every
// candidate as paid without touching the chain, so the command is safe to
// use for inspecting what a retry would do.
func ReplayCmd(logger log.Logger, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	var (
		reportsDir = fs.String("reports", "reports", "reports directory")
		calcDir    = fs.String("calc", "", "calculations directory, reconciliation disabled when empty")
		cycle      = fs.Int64("cycle", 0, "cycle to replay")
		baker      = fs.String("baker", "", "baking address, identifies the summary row")
		keyName    = fs.String("key", "payoutd", "payout key name")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cycle == 0 {
		return errors.Wrap(errors.ErrInput, "cycle is required")
	}

	reports := report.NewStore(*reportsDir, logger)
	items, err := reports.Read(*cycle, 1)
	if err != nil {
		return errors.Wrapf(err, "no failure report for cycle %d", *cycle)
	}

	var calc *report.CalcStore
	if *calcDir != "" {
		calc = report.NewCalcStore(*calcDir)
	}

	cfg := pay.WorkerConfig{
		KeyName:       *keyName,
		BakingAddress: *baker,
		DryRun:        true,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	q := queue.New(1)
	w := pay.NewWorker(
		cfg,
		pay.Env{
			Queue:      q,
			Executor:   simExecutor{},
			Balances:   fundedBalances{},
			Reports:    reports,
			Reconciler: report.NewReconciler(calc, *baker, logger),
			Notifier:   notify.NewFanout(logger),
			Guard:      pay.StatfsGuard{Path: *reportsDir},
			Logger:     logger,
		},
	)

	ctx := context.Background()
	if err := q.Put(ctx, &payout.Batch{Cycle: *cycle, Items: items}); err != nil {
		return err
	}
	if err := q.PutExit(ctx); err != nil {
		return err
	}
	return w.Run(ctx)
}

// simExecutor marks every candidate as paid without broadcasting anything.
type simExecutor struct{}

func (simExecutor) Pay(ctx context.Context, items []*payout.Item, dryRun bool) (*payout.ExecResult, error) {
	res := payout.ExecResult{
		Items:    make([]*payout.Item, 0, len(items)),
		Attempts: len(items),
	}
	for _, it := range items {
		out := it.Clone()
		out.Status = payout.StatusPaid
		out.Desc += "Simulated. "
		var err error
		if res.TotalPaid, err = res.TotalPaid.Add(out.AdjustedAmount); err != nil {
			return nil, errors.Wrapf(err, "total for %s", out.Address)
		}
		res.Items = append(res.Items, out)
	}
	return &res, nil
}

// fundedBalances reports every account as funded so that a replay never
// drops payments on the zero balance filter.
type fundedBalances struct{}

func (fundedBalances) Balance(address string) (coin.Mutez, error) {
	return coin.MutezPerTez, nil
}

var (
	_ payout.Executor      = simExecutor{}
	_ payout.BalanceSource = fundedBalances{}
)
