package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Store persists payment reports for a single payout key. Reports are
// keyed by (cycle, failCount): failCount zero is the canonical report
// holding everything resolved for the cycle, any positive failCount is the
// failure report holding only the failed subset.
//
// A busy marker file is created next to a report before writing and
// removed after the write completed, so that an interrupted write is
// detectable on a later retry of the same cycle.
//
// The store is owned by exactly one worker, report directories are
// partitioned per payout key, so no locking is needed.
type Store struct {
	dir    string
	logger log.Logger
}

// NewStore returns a store keeping reports under given directory.
func NewStore(dir string, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{dir: dir, logger: logger}
}

// PathFor returns the report location for given cycle and failure count.
// All positive failure counts share a single failure report location.
func (s *Store) PathFor(cycle int64, failCount int) string {
	sub := "done"
	if failCount > 0 {
		sub = "failed"
	}
	return filepath.Join(s.dir, sub, fmt.Sprintf("%d.csv", cycle))
}

// BusyMarker returns the location of the busy marker for a report.
func BusyMarker(reportPath string) string {
	return reportPath + ".BUSY"
}

// Write persists the items as the report keyed by (cycle, failCount),
// overwriting any previous attempt. It returns the path the report was
// written to.
func (s *Store) Write(cycle int64, items []*payout.Item, failCount int) (string, error) {
	path := s.PathFor(cycle, failCount)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, "create report directory")
	}

	busy := BusyMarker(path)
	if err := touch(busy); err != nil {
		return "", errors.Wrap(err, "create busy marker")
	}

	if err := writeItems(path, items); err != nil {
		// The marker stays behind on purpose, it is the witness of
		// the interrupted write.
		return "", errors.Wrap(err, "write report")
	}

	if err := os.Remove(busy); err != nil {
		return "", errors.Wrap(err, "remove busy marker")
	}

	s.logger.Info("Payment report written", "cycle", cycle, "path", path)
	return path, nil
}

// Read loads a previously written report. Use it to reload terminal item
// statuses into a batch before a cycle is submitted again after a restart.
func (s *Store) Read(cycle int64, failCount int) ([]*payout.Item, error) {
	path := s.PathFor(cycle, failCount)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "no report at %s", path)
		}
		return nil, errors.Wrap(err, "open report")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCorrupt, err.Error())
	}
	if len(records) == 0 {
		return nil, errors.Wrap(errors.ErrCorrupt, "missing header")
	}

	items := make([]*payout.Item, 0, len(records)-1)
	for i, rec := range records[1:] {
		it, err := parseItem(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+1)
		}
		items = append(items, it)
	}
	return items, nil
}

// Interrupted reports whether the failure report of given cycle carries a
// leftover busy marker, the witness of a write that never completed.
func (s *Store) Interrupted(cycle int64) bool {
	return exists(BusyMarker(s.PathFor(cycle, 1)))
}

// CleanStale removes obsolete failure artifacts of a cycle.
//
// When the cycle succeeded, the failure report is deleted because the
// canonical report already reflects full success. The busy marker is
// removed unconditionally: on success it is no longer needed, on failure
// a fresh failure report has just been written over the interrupted one.
func (s *Store) CleanStale(cycle int64, succeeded bool) error {
	failure := s.PathFor(cycle, 1)

	if succeeded && exists(failure) {
		if err := os.Remove(failure); err != nil {
			return errors.Wrap(err, "remove stale failure report")
		}
		s.logger.Info("Stale failure report removed", "cycle", cycle, "path", failure)
	}

	busy := BusyMarker(failure)
	if exists(busy) {
		if err := os.Remove(busy); err != nil {
			return errors.Wrap(err, "remove busy marker")
		}
	}
	return nil
}

var header = []string{
	"address", "original_address", "kind", "staking_balance",
	"raw_amount", "adjusted_amount", "delegate_fee", "delegator_fee",
	"payable", "status", "sources", "description",
}

func writeItems(path string, items []*payout.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, it := range items {
		if err := w.Write(itemRecord(it)); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func itemRecord(it *payout.Item) []string {
	payable := "0"
	if it.Payable {
		payable = "1"
	}
	return []string{
		it.Address,
		it.OriginalAddress,
		string(it.Kind),
		strconv.FormatInt(int64(it.StakingBalance), 10),
		strconv.FormatInt(int64(it.RawAmount), 10),
		strconv.FormatInt(int64(it.AdjustedAmount), 10),
		strconv.FormatInt(int64(it.DelegateFee), 10),
		strconv.FormatInt(int64(it.DelegatorFee), 10),
		payable,
		it.Status.String(),
		encodeSources(it.Sources),
		it.Desc,
	}
}

func parseItem(rec []string) (*payout.Item, error) {
	if len(rec) != len(header) {
		return nil, errors.Wrapf(errors.ErrCorrupt, "want %d fields, got %d", len(header), len(rec))
	}

	status, err := payout.ParseStatus(rec[9])
	if err != nil {
		return nil, err
	}
	sources, err := decodeSources(rec[10])
	if err != nil {
		return nil, err
	}

	it := payout.Item{
		Address:         rec[0],
		OriginalAddress: rec[1],
		Kind:            payout.Kind(rec[2]),
		Payable:         rec[8] == "1",
		Status:          status,
		Sources:         sources,
		Desc:            rec[11],
	}
	for _, field := range []struct {
		raw  string
		dst  *coin.Mutez
		name string
	}{
		{rec[3], &it.StakingBalance, "staking balance"},
		{rec[4], &it.RawAmount, "raw amount"},
		{rec[5], &it.AdjustedAmount, "adjusted amount"},
		{rec[6], &it.DelegateFee, "delegate fee"},
		{rec[7], &it.DelegatorFee, "delegator fee"},
	} {
		n, err := strconv.ParseInt(field.raw, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCorrupt, "%s: %s", field.name, err)
		}
		*field.dst = coin.Mutez(n)
	}
	return &it, nil
}

// encodeSources packs merged payment contributors into a single report
// field as "address:amount" pairs separated by "|".
func encodeSources(sources []payout.Source) string {
	if len(sources) == 0 {
		return ""
	}
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = src.Address + ":" + strconv.FormatInt(int64(src.Amount), 10)
	}
	return strings.Join(parts, "|")
}

func decodeSources(raw string) ([]payout.Source, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, "|")
	sources := make([]payout.Source, 0, len(parts))
	for _, p := range parts {
		i := strings.LastIndex(p, ":")
		if i == -1 {
			return nil, errors.Wrapf(errors.ErrCorrupt, "malformed source %q", p)
		}
		amount, err := strconv.ParseInt(p[i+1:], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCorrupt, "source amount: %s", err)
		}
		sources = append(sources, payout.Source{
			Address: p[:i],
			Amount:  coin.Mutez(amount),
		})
	}
	return sources, nil
}

func touch(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
