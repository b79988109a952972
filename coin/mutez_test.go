package coin

import (
	"testing"

	"github.com/iov-one/payout/errors"
)

func TestAddOverflow(t *testing.T) {
	if _, err := MaxMutez.Add(1); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %+v", err)
	}
	if _, err := MinMutez.Add(-1); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %+v", err)
	}

	sum, err := Mutez(1500000).Add(Mutez(500000))
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if sum != 2000000 {
		t.Fatalf("want 2000000, got %d", sum)
	}
}

func TestMultiply(t *testing.T) {
	cases := map[string]struct {
		amount  Mutez
		times   int64
		want    Mutez
		wantErr *errors.Error
	}{
		"zero amount":   {amount: 0, times: 100, want: 0},
		"zero times":    {amount: 42, times: 0, want: 0},
		"simple":        {amount: 250, times: 4, want: 1000},
		"negative":      {amount: -5, times: 3, want: -15},
		"overflow":      {amount: MaxMutez, times: 2, wantErr: errors.ErrOverflow},
		"big but valid": {amount: MutezPerTez, times: 1000, want: 1000 * MutezPerTez},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.amount.Multiply(tc.times)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v, got %+v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestSum(t *testing.T) {
	total, err := Sum(1, 2, 3, MutezPerTez)
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if total != MutezPerTez+6 {
		t.Fatalf("unexpected total: %d", total)
	}

	if _, err := Sum(MaxMutez, MaxMutez); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %+v", err)
	}
}

func TestTezTruncates(t *testing.T) {
	cases := map[string]struct {
		amount Mutez
		want   int64
	}{
		"below one tez":  {amount: 999999, want: 0},
		"exactly one":    {amount: 1000000, want: 1},
		"truncated down": {amount: 2999999, want: 2},
		"negative":       {amount: -1500000, want: -1},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.amount.Tez(); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestHumanFormatRoundTrip(t *testing.T) {
	cases := map[string]struct {
		amount Mutez
		human  string
	}{
		"whole only":      {amount: 5000000, human: "5 XTZ"},
		"with fraction":   {amount: 1234567, human: "1.234567 XTZ"},
		"trailing zeros":  {amount: 1500000, human: "1.5 XTZ"},
		"below one":       {amount: 123, human: "0.000123 XTZ"},
		"zero":            {amount: 0, human: "0 XTZ"},
		"negative":        {amount: -2500000, human: "-2.5 XTZ"},
		"negative small":  {amount: -100, human: "-0.0001 XTZ"},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.amount.String(); got != tc.human {
				t.Fatalf("want %q, got %q", tc.human, got)
			}
			back, err := ParseHumanFormat(tc.human)
			if err != nil {
				t.Fatalf("cannot parse back: %+v", err)
			}
			if back != tc.amount {
				t.Fatalf("want %d, got %d", tc.amount, back)
			}
		})
	}
}

func TestParseHumanFormatRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "XTZ", "1,5 XTZ", "abc", "1.5 BTC"} {
		if _, err := ParseHumanFormat(raw); !errors.ErrInput.Is(err) {
			t.Fatalf("%q: want input error, got %+v", raw, err)
		}
	}
}
