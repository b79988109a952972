package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
)

// Row is a single calculation report entry: the reward computed upstream
// for one address, together with the transaction fee fields that the
// reconciler back fills after execution.
type Row struct {
	Address        string
	Kind           payout.Kind
	StakingBalance coin.Mutez
	// Reward is the computed reward amount. The reconciler must never
	// touch it.
	Reward       coin.Mutez
	DelegateFee  coin.Mutez
	DelegatorFee coin.Mutez
	Desc         string
}

// CalcMeta is the report level metadata carried by the summary row.
type CalcMeta struct {
	// Total is the total distributed amount.
	Total coin.Mutez
	// RewardsType is the classification tag, for example "actual" or
	// "ideal".
	RewardsType string
	// EarlyPayout marks a payout executed before the cycle completed.
	EarlyPayout bool
	// Reconciled marks a report whose fee fields were back filled with
	// the values actually charged.
	Reconciled bool
}

// CalcStore reads and writes calculation reports. One report per cycle,
// rows keyed by address, plus a summary row for the baking address that
// carries the report metadata.
type CalcStore struct {
	dir string
}

// NewCalcStore returns a store keeping calculation reports under given
// directory.
func NewCalcStore(dir string) *CalcStore {
	return &CalcStore{dir: dir}
}

// PathFor returns the calculation report location of a cycle.
func (s *CalcStore) PathFor(cycle int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.csv", cycle))
}

var calcHeader = []string{
	"address", "kind", "staking_balance", "reward_amount",
	"delegate_fee", "delegator_fee", "description",
	"rewards_type", "early_payout", "reconciled",
}

// Parse loads a calculation report. The summary row identified by the
// baking address is split off into the returned metadata and is not part
// of the returned rows.
func (s *CalcStore) Parse(path, bakingAddress string) ([]*Row, CalcMeta, error) {
	var meta CalcMeta

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, meta, errors.Wrapf(errors.ErrNotFound, "no calculation report at %s", path)
		}
		return nil, meta, errors.Wrap(err, "open calculation report")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, meta, errors.Wrap(errors.ErrCorrupt, err.Error())
	}
	if len(records) == 0 {
		return nil, meta, errors.Wrap(errors.ErrCorrupt, "missing header")
	}

	var (
		rows    []*Row
		summary bool
	)
	for i, rec := range records[1:] {
		if len(rec) != len(calcHeader) {
			return nil, meta, errors.Wrapf(errors.ErrCorrupt, "row %d: want %d fields, got %d", i+1, len(calcHeader), len(rec))
		}
		row, err := parseCalcRow(rec)
		if err != nil {
			return nil, meta, errors.Wrapf(err, "row %d", i+1)
		}

		if row.Address == bakingAddress {
			meta.Total = row.Reward
			meta.RewardsType = rec[7]
			meta.EarlyPayout = rec[8] == "1"
			meta.Reconciled = rec[9] == "1"
			summary = true
			continue
		}
		rows = append(rows, row)
	}
	if !summary {
		return nil, meta, errors.Wrapf(errors.ErrCorrupt, "no summary row for %s", bakingAddress)
	}
	return rows, meta, nil
}

// Write persists a calculation report, overwriting any previous content.
// The summary row is appended last.
func (s *CalcStore) Write(rows []*Row, path string, meta CalcMeta, bakingAddress string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create calculation directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create calculation report")
	}

	w := csv.NewWriter(f)
	if err := w.Write(calcHeader); err != nil {
		f.Close()
		return errors.Wrap(err, "write header")
	}
	for _, row := range rows {
		if err := w.Write(calcRecord(row, nil)); err != nil {
			f.Close()
			return errors.Wrap(err, "write row")
		}
	}
	summary := Row{
		Address: bakingAddress,
		Kind:    "B",
		Reward:  meta.Total,
	}
	if err := w.Write(calcRecord(&summary, &meta)); err != nil {
		f.Close()
		return errors.Wrap(err, "write summary row")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrap(err, "flush")
	}
	return errors.Wrap(f.Close(), "close")
}

func calcRecord(row *Row, meta *CalcMeta) []string {
	rec := []string{
		row.Address,
		string(row.Kind),
		strconv.FormatInt(int64(row.StakingBalance), 10),
		strconv.FormatInt(int64(row.Reward), 10),
		strconv.FormatInt(int64(row.DelegateFee), 10),
		strconv.FormatInt(int64(row.DelegatorFee), 10),
		row.Desc,
		"", "", "",
	}
	if meta != nil {
		rec[7] = meta.RewardsType
		rec[8] = flag(meta.EarlyPayout)
		rec[9] = flag(meta.Reconciled)
	}
	return rec
}

func parseCalcRow(rec []string) (*Row, error) {
	row := Row{
		Address: rec[0],
		Kind:    payout.Kind(rec[1]),
		Desc:    rec[6],
	}
	for _, field := range []struct {
		raw  string
		dst  *coin.Mutez
		name string
	}{
		{rec[2], &row.StakingBalance, "staking balance"},
		{rec[3], &row.Reward, "reward amount"},
		{rec[4], &row.DelegateFee, "delegate fee"},
		{rec[5], &row.DelegatorFee, "delegator fee"},
	} {
		n, err := strconv.ParseInt(field.raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCorrupt, "%s: %s", field.name, err)
		}
		*field.dst = coin.Mutez(n)
	}
	return &row, nil
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
