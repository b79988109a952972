package stats

import (
	"regexp"
	"testing"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"github.com/stretchr/testify/assert"
)

func TestPseudonymousID(t *testing.T) {
	a := PseudonymousID("mykey")
	b := PseudonymousID("mykey")
	c := PseudonymousID("otherkey")

	// Same key, same id. Different key, different id.
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	// The id looks like a UUID and never contains the key name.
	format := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	assert.True(t, format.MatchString(a), a)
	assert.NotContains(t, a, "mykey")
}

func TestNewRecord(t *testing.T) {
	items := []*payout.Item{
		{Kind: payout.KindFounder, AdjustedAmount: 1 * coin.MutezPerTez},
		{Kind: payout.KindOwner, AdjustedAmount: 2 * coin.MutezPerTez},
		{Kind: payout.KindDelegator, AdjustedAmount: 500000},
		{Kind: payout.KindDelegator, AdjustedAmount: 700000},
		{Kind: payout.KindMerged, AdjustedAmount: 300000},
	}

	rec := NewRecord(Tally{
		KeyName:     "mykey",
		Network:     "MAINNET",
		Cycle:       100,
		Items:       items,
		Attempts:    7,
		Failed:      1,
		Unknown:     2,
		PaysXfer:    true,
		RewardsType: "A",
	})

	assert.Equal(t, PseudonymousID("mykey"), rec.UUID)
	assert.Equal(t, int64(100), rec.Cycle)
	assert.Equal(t, "MAINNET", rec.Network)
	assert.Equal(t, 5, rec.Payments)
	assert.Equal(t, 1, rec.Failed)
	assert.Equal(t, 2, rec.Unknown)
	assert.Equal(t, 7, rec.Attempts)
	assert.Equal(t, 1, rec.Founders)
	assert.Equal(t, 1, rec.Owners)
	assert.Equal(t, 2, rec.Delegators)
	assert.Equal(t, 1, rec.Merged)
	assert.Equal(t, 1, rec.PaysTransferFee)
	assert.Equal(t, 0, rec.PaysReactivationFee)
	assert.Equal(t, "A", rec.RewardsType)
	assert.Equal(t, payout.Version(), rec.Version)

	// 4.5 units in total, truncated to whole units.
	assert.Equal(t, int64(4), rec.TotalAmount)
}

func TestNewRecordSaturatesOnOverflow(t *testing.T) {
	items := []*payout.Item{
		{Kind: payout.KindDelegator, AdjustedAmount: coin.MaxMutez},
		{Kind: payout.KindDelegator, AdjustedAmount: coin.MaxMutez},
	}
	rec := NewRecord(Tally{Items: items})
	assert.Equal(t, coin.MaxMutez.Tez(), rec.TotalAmount)
}
