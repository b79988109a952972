package commands

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
	"github.com/iov-one/payout/report"
)

// InspectCmd prints a summary of the payment reports of a cycle: how many
// payments ended in which state and how much was transferred.
func InspectCmd(out io.Writer, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var (
		reportsDir = fs.String("reports", "reports", "reports directory")
		cycle      = fs.Int64("cycle", 0, "cycle to inspect")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cycle == 0 {
		return errors.Wrap(errors.ErrInput, "cycle is required")
	}

	reports := report.NewStore(*reportsDir, nil)

	items, err := reports.Read(*cycle, 0)
	if err != nil {
		return errors.Wrap(err, "read canonical report")
	}
	if err := printSummary(out, "canonical", items); err != nil {
		return err
	}

	failures, err := reports.Read(*cycle, 1)
	switch {
	case err == nil:
		if err := printSummary(out, "failures", failures); err != nil {
			return err
		}
	case errors.ErrNotFound.Is(err):
		// No failure report means a clean cycle.
	default:
		return errors.Wrap(err, "read failure report")
	}

	if reports.Interrupted(*cycle) {
		fmt.Fprintln(out, "warning: an interrupted report write was detected, the cycle should be replayed")
	}
	return nil
}

func printSummary(out io.Writer, name string, items []*payout.Item) error {
	var (
		byStatus = make(map[payout.Status]int)
		total    coin.Mutez
	)
	for _, it := range items {
		byStatus[it.Status]++
		if it.Status.Processed() {
			var err error
			if total, err = total.Add(it.AdjustedAmount); err != nil {
				return errors.Wrapf(err, "total for %s", it.Address)
			}
		}
	}

	fmt.Fprintf(out, "%s: %d payments, %s transferred\n", name, len(items), total)
	for _, s := range []payout.Status{
		payout.StatusPaid, payout.StatusInjected, payout.StatusFail, payout.StatusUnpaid,
	} {
		if n := byStatus[s]; n > 0 {
			fmt.Fprintf(out, "  %-8s %d\n", s, n)
		}
	}
	return nil
}
