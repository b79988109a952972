package report

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baker = "tz1baker"

func tmpCalcStore(t *testing.T) (*CalcStore, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "payout-calc")
	require.NoError(t, err)
	return NewCalcStore(dir), func() { os.RemoveAll(dir) }
}

func writeCalcFixture(t *testing.T, s *CalcStore, cycle int64, rows []*Row, meta CalcMeta) {
	t.Helper()
	require.NoError(t, s.Write(rows, s.PathFor(cycle), meta, baker))
}

func TestCalcParseWriteRoundTrip(t *testing.T) {
	s, cleanup := tmpCalcStore(t)
	defer cleanup()

	rows := []*Row{
		{Address: "tz1aaa", Kind: payout.KindDelegator, StakingBalance: 1000, Reward: 90},
		{Address: "tz1bbb", Kind: payout.KindDelegator, StakingBalance: 500, Reward: 45, Desc: "note"},
	}
	meta := CalcMeta{Total: 135, RewardsType: "actual", EarlyPayout: true}

	writeCalcFixture(t, s, 100, rows, meta)

	gotRows, gotMeta, err := s.Parse(s.PathFor(100), baker)
	require.NoError(t, err)
	assert.Equal(t, rows, gotRows)
	assert.Equal(t, meta, gotMeta)
}

func TestCalcParseMissingFile(t *testing.T) {
	s, cleanup := tmpCalcStore(t)
	defer cleanup()

	_, _, err := s.Parse(s.PathFor(100), baker)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
}

func TestCalcParseRequiresSummaryRow(t *testing.T) {
	s, cleanup := tmpCalcStore(t)
	defer cleanup()

	writeCalcFixture(t, s, 100, nil, CalcMeta{})

	_, _, err := s.Parse(s.PathFor(100), "tz1someoneelse")
	assert.True(t, errors.ErrCorrupt.Is(err), "got %+v", err)
}

func TestReconcileUpdatesOnlyFeeFields(t *testing.T) {
	s, cleanup := tmpCalcStore(t)
	defer cleanup()

	rows := []*Row{
		{Address: "tz1aaa", Kind: payout.KindDelegator, Reward: 90, DelegateFee: 1, DelegatorFee: 1},
		{Address: "tz1bbb", Kind: payout.KindDelegator, Reward: 45, Desc: "existing note. "},
	}
	meta := CalcMeta{Total: 135, RewardsType: "actual"}
	writeCalcFixture(t, s, 100, rows, meta)

	outcomes := []*payout.Item{
		{
			Address:        "tz1aaa",
			Kind:           payout.KindDelegator,
			AdjustedAmount: coin.Mutez(1234),
			DelegateFee:    7,
			DelegatorFee:   5,
			Status:         payout.StatusPaid,
		},
	}

	r := NewReconciler(s, baker, nil)
	require.NoError(t, r.Reconcile(100, outcomes))

	gotRows, gotMeta, err := s.Parse(s.PathFor(100), baker)
	require.NoError(t, err)
	require.Len(t, gotRows, 2)

	// Matched row: fees overwritten, reward untouched.
	assert.Equal(t, coin.Mutez(90), gotRows[0].Reward)
	assert.Equal(t, coin.Mutez(7), gotRows[0].DelegateFee)
	assert.Equal(t, coin.Mutez(5), gotRows[0].DelegatorFee)

	// Unmatched row: only a note is appended.
	assert.Equal(t, coin.Mutez(45), gotRows[1].Reward)
	assert.Equal(t, coin.Mutez(0), gotRows[1].DelegateFee)
	assert.Equal(t, "existing note. Not in payment log. ", gotRows[1].Desc)

	// Metadata survives, only the reconciliation flag flips.
	assert.Equal(t, coin.Mutez(135), gotMeta.Total)
	assert.Equal(t, "actual", gotMeta.RewardsType)
	assert.True(t, gotMeta.Reconciled)
}

func TestReconcileWithoutCalcStoreIsNoop(t *testing.T) {
	r := NewReconciler(nil, baker, nil)
	require.NoError(t, r.Reconcile(100, nil))
}
