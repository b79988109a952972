package stats

import (
	"fmt"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/coin"
	"golang.org/x/crypto/blake2b"
)

// Record is the fixed shape de-identified usage record emitted after a
// live payout run. It must never contain key material or destination
// addresses.
type Record struct {
	// UUID is a stable pseudonymous payer id. Same key, same id. The id
	// does not reveal the key.
	UUID    string `json:"uuid"`
	Cycle   int64  `json:"cycle"`
	Network string `json:"network"`
	// TotalAmount is the payout total truncated to whole units.
	TotalAmount int64 `json:"total_amount"`
	Payments    int   `json:"nb_pay"`
	Failed      int   `json:"nb_failed"`
	Unknown     int   `json:"nb_unknown"`
	Attempts    int   `json:"total_attempts"`
	Founders    int   `json:"nb_founders"`
	Owners      int   `json:"nb_owners"`
	Delegators  int   `json:"nb_delegators"`
	Merged      int   `json:"nb_merged"`
	// Fee policy flags, 1 when the delegator carries the fee.
	PaysTransferFee     int `json:"pay_xfer_fee"`
	PaysReactivationFee int `json:"pay_ra_fee"`
	// RewardsType is the classification code: "I" for ideal, "A" for
	// actual rewards.
	RewardsType string `json:"rewards_type"`
	Version     string `json:"version"`
}

// Publisher delivers a record to the anonymous statistics backend. The
// transport is external. Publishing is fire and forget, a failure must
// never influence a payout run.
type Publisher interface {
	Publish(*Record) error
}

// PseudonymousID derives the stable payer id from the payout key name. The
// derivation is a one way hash, so the id cannot be traced back to the
// key, yet the same key always produces the same id.
func PseudonymousID(keyName string) string {
	sum := blake2b.Sum256([]byte("payout-stats:" + keyName))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

// Tally is the per run input of a record.
type Tally struct {
	KeyName     string
	Network     string
	Cycle       int64
	Items       []*payout.Item
	Attempts    int
	Failed      int
	Unknown     int
	PaysXfer    bool
	PaysRa      bool
	RewardsType string
}

// NewRecord builds the record for a completed run.
func NewRecord(t Tally) *Record {
	rec := Record{
		UUID:        PseudonymousID(t.KeyName),
		Cycle:       t.Cycle,
		Network:     t.Network,
		Payments:    len(t.Items),
		Failed:      t.Failed,
		Unknown:     t.Unknown,
		Attempts:    t.Attempts,
		RewardsType: t.RewardsType,
		Version:     payout.Version(),
	}
	if t.PaysXfer {
		rec.PaysTransferFee = 1
	}
	if t.PaysRa {
		rec.PaysReactivationFee = 1
	}

	var total coin.Mutez
	for _, it := range t.Items {
		// Overflow on display statistics is not worth failing a run,
		// saturate instead.
		if sum, err := total.Add(it.AdjustedAmount); err == nil {
			total = sum
		} else {
			total = coin.MaxMutez
		}

		switch it.Kind {
		case payout.KindFounder:
			rec.Founders++
		case payout.KindOwner:
			rec.Owners++
		case payout.KindDelegator:
			rec.Delegators++
		case payout.KindMerged:
			rec.Merged++
		}
	}
	rec.TotalAmount = total.Tez()

	return &rec
}
