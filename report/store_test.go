package report

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmpStore(t *testing.T) (*Store, string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "payout-reports")
	require.NoError(t, err)
	return NewStore(dir, nil), dir, func() { os.RemoveAll(dir) }
}

func TestWriteReadRoundTrip(t *testing.T) {
	s, _, cleanup := tmpStore(t)
	defer cleanup()

	items := []*payout.Item{
		{
			Address:        "tz1aaa",
			Kind:           payout.KindDelegator,
			StakingBalance: 1000,
			RawAmount:      120,
			AdjustedAmount: 100,
			DelegateFee:    3,
			DelegatorFee:   2,
			Payable:        true,
			Status:         payout.StatusPaid,
			Desc:           "all good",
		},
		{
			Address: "KT1pool",
			Kind:    payout.KindMerged,
			Sources: []payout.Source{
				{Address: "tz1bbb", Amount: 10},
				{Address: "tz1ccc", Amount: 20},
			},
			AdjustedAmount: 30,
			Payable:        true,
			Status:         payout.StatusInjected,
		},
	}

	path, err := s.Write(100, items, 0)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path) || path != "")

	got, err := s.Read(100, 0)
	require.NoError(t, err)
	require.Equal(t, items, got)
}

func TestWriteRemovesBusyMarker(t *testing.T) {
	s, _, cleanup := tmpStore(t)
	defer cleanup()

	path, err := s.Write(100, nil, 1)
	require.NoError(t, err)

	if _, err := os.Stat(BusyMarker(path)); !os.IsNotExist(err) {
		t.Fatal("busy marker left behind after a completed write")
	}
}

func TestPathForPartitionsByOutcome(t *testing.T) {
	s := NewStore("/reports", nil)

	canonical := s.PathFor(42, 0)
	failure1 := s.PathFor(42, 1)
	failure9 := s.PathFor(42, 9)

	assert.Equal(t, filepath.Join("/reports", "done", "42.csv"), canonical)
	assert.Equal(t, filepath.Join("/reports", "failed", "42.csv"), failure1)
	// Every positive failure count points at the same file.
	assert.Equal(t, failure1, failure9)
}

func TestReadMissingReport(t *testing.T) {
	s, _, cleanup := tmpStore(t)
	defer cleanup()

	_, err := s.Read(7, 0)
	assert.True(t, errors.ErrNotFound.Is(err), "got %+v", err)
}

func TestInterruptedDetection(t *testing.T) {
	s, _, cleanup := tmpStore(t)
	defer cleanup()

	assert.False(t, s.Interrupted(100))

	// A crash between marker creation and write completion leaves the
	// marker behind.
	failure := s.PathFor(100, 1)
	require.NoError(t, os.MkdirAll(filepath.Dir(failure), 0755))
	require.NoError(t, touch(BusyMarker(failure)))

	assert.True(t, s.Interrupted(100))
}

func TestCleanStale(t *testing.T) {
	item := &payout.Item{
		Address:        "tz1aaa",
		Kind:           payout.KindDelegator,
		AdjustedAmount: coin.Mutez(5),
		Payable:        true,
		Status:         payout.StatusFail,
	}

	t.Run("success removes failure report and marker", func(t *testing.T) {
		s, _, cleanup := tmpStore(t)
		defer cleanup()

		failure, err := s.Write(100, []*payout.Item{item}, 1)
		require.NoError(t, err)
		require.NoError(t, touch(BusyMarker(failure)))

		require.NoError(t, s.CleanStale(100, true))

		assert.False(t, exists(failure))
		assert.False(t, exists(BusyMarker(failure)))
	})

	t.Run("failure keeps the fresh failure report", func(t *testing.T) {
		s, _, cleanup := tmpStore(t)
		defer cleanup()

		failure, err := s.Write(100, []*payout.Item{item}, 1)
		require.NoError(t, err)
		require.NoError(t, touch(BusyMarker(failure)))

		require.NoError(t, s.CleanStale(100, false))

		// The report stays, only the marker of the interrupted
		// write goes away because a fresh report exists now.
		assert.True(t, exists(failure))
		assert.False(t, exists(BusyMarker(failure)))
	})

	t.Run("nothing to clean is not an error", func(t *testing.T) {
		s, _, cleanup := tmpStore(t)
		defer cleanup()
		require.NoError(t, s.CleanStale(100, true))
	})
}
