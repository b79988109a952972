package payout

import (
	"testing"

	"github.com/iov-one/payout/coin"
	"github.com/iov-one/payout/errors"
)

func TestStatusProcessed(t *testing.T) {
	cases := map[string]struct {
		status Status
		want   bool
	}{
		"unpaid is not terminal":   {StatusUnpaid, false},
		"fail is retryable":        {StatusFail, false},
		"paid is terminal":         {StatusPaid, true},
		"injected is terminal too": {StatusInjected, true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.status.Processed(); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStatusStringRoundTrip(t *testing.T) {
	for _, s := range []Status{StatusUnpaid, StatusFail, StatusPaid, StatusInjected} {
		back, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("%s: %+v", s, err)
		}
		if back != s {
			t.Fatalf("want %v, got %v", s, back)
		}
	}

	if _, err := ParseStatus("BOGUS"); !errors.ErrCorrupt.Is(err) {
		t.Fatalf("want corrupt error, got %+v", err)
	}
}

func TestItemValidate(t *testing.T) {
	cases := map[string]struct {
		item    Item
		wantErr *errors.Error
	}{
		"valid delegator item": {
			item: Item{
				Address:        "tz1abc",
				Kind:           KindDelegator,
				AdjustedAmount: 100,
				Payable:        true,
			},
		},
		"missing address": {
			item:    Item{Kind: KindDelegator},
			wantErr: errors.ErrEmpty,
		},
		"exit kind is not payable": {
			item:    Item{Address: "tz1abc", Kind: KindExit},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.item.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %+v", err)
				}
				return
			}
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %v, got %+v", tc.wantErr, err)
			}
		})
	}
}

func TestItemCloneIsIndependent(t *testing.T) {
	orig := &Item{
		Address: "tz1merged",
		Kind:    KindMerged,
		Sources: []Source{
			{Address: "tz1one", Amount: 10},
			{Address: "tz1two", Amount: 20},
		},
		AdjustedAmount: coin.Mutez(30),
	}

	cpy := orig.Clone()
	cpy.Sources[0].Amount = 99
	cpy.Address = "tz1other"

	if orig.Sources[0].Amount != 10 {
		t.Fatal("clone shares the sources slice")
	}
	if orig.Address != "tz1merged" {
		t.Fatal("clone shares the item")
	}
}

func TestBatchIsExit(t *testing.T) {
	if (&Batch{}).IsExit() {
		t.Fatal("empty batch must not be an exit batch")
	}
	if !ExitBatch().IsExit() {
		t.Fatal("exit batch not detected")
	}

	// Only the first item decides.
	b := &Batch{Items: []*Item{
		{Address: "tz1abc", Kind: KindDelegator},
		ExitItem(),
	}}
	if b.IsExit() {
		t.Fatal("exit marker in a non leading position must be ignored")
	}
}
