package coin

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/payout/errors"
)

// Mutez is an amount expressed in the smallest chain unit. All payment
// amounts and transaction fees flowing through the engine are kept in this
// representation and converted to whole units only for display and
// anonymous statistics.
type Mutez int64

const (
	// MutezPerTez is the number of fractional units in a whole unit.
	MutezPerTez Mutez = 1000000

	// MaxMutez is the largest amount we accept. Anything above is
	// considered a computation gone wrong.
	MaxMutez Mutez = 999999999999999999

	// MinMutez is the lowest amount we accept.
	MinMutez = -MaxMutez
)

// Tez returns the amount truncated to whole units.
func (m Mutez) Tez() int64 {
	return int64(m / MutezPerTez)
}

// Add combines two amounts. Returns an error if the combination would
// cause an overflow.
func (m Mutez) Add(o Mutez) (Mutez, error) {
	sum := m + o
	if (o > 0 && sum < m) || (o < 0 && sum > m) {
		return 0, errors.Wrap(errors.ErrOverflow, "addition")
	}
	if sum < MinMutez || sum > MaxMutez {
		return 0, errors.Wrap(errors.ErrOverflow, "addition")
	}
	return sum, nil
}

// Multiply returns the result of an amount multiplication. This method can
// fail if the result would overflow the maximum amount.
func (m Mutez) Multiply(times int64) (Mutez, error) {
	if times == 0 || m == 0 {
		return 0, nil
	}
	res := m * Mutez(times)
	if res/Mutez(times) != m || res < MinMutez || res > MaxMutez {
		return 0, errors.Wrap(errors.ErrOverflow, "multiplication")
	}
	return res, nil
}

// IsZero returns true if the amount is 0.
func (m Mutez) IsZero() bool {
	return m == 0
}

// IsPositive returns true if the amount is greater than 0.
func (m Mutez) IsPositive() bool {
	return m > 0
}

// Sum adds up all given amounts. It fails on the first overflow.
func Sum(amounts ...Mutez) (Mutez, error) {
	var total Mutez
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Validate ensures that the amount is in the valid range. It accepts
// negative values (fees can be deducted), so you may want to make other
// checks in your business logic.
func (m Mutez) Validate() error {
	if m < MinMutez || m > MaxMutez {
		return errors.ErrOverflow
	}
	return nil
}

// String provides a human readable representation of the amount in whole
// units. This function is meant mostly for logs, notifications and
// debugging. The result can be parsed back using ParseHumanFormat.
func (m Mutez) String() string {
	var b bytes.Buffer

	whole := int64(m / MutezPerTez)
	frac := int64(m % MutezPerTez)

	if m < 0 && whole == 0 {
		io.WriteString(&b, "-")
	}
	io.WriteString(&b, strconv.FormatInt(whole, 10))

	if frac != 0 {
		if frac < 0 {
			frac = -frac
		}
		s := strconv.FormatInt(frac, 10)
		// Add leading zeros to convert it to a floating point number.
		s = "." + strings.Repeat("0", 6-len(s)) + s
		// Remove trailing zeros as they provide no information.
		s = strings.TrimRight(s, "0")
		io.WriteString(&b, s)
	}

	io.WriteString(&b, " XTZ")
	return b.String()
}

// ParseHumanFormat parse a human readable amount representation. Accepted
// format is a string:
//   "<whole>[.<fractional>][ XTZ]"
func ParseHumanFormat(h string) (Mutez, error) {
	results := humanAmountRx.FindAllStringSubmatch(h, -1)
	if len(results) != 1 {
		return 0, errors.Wrapf(errors.ErrInput, "invalid amount format: %q", h)
	}

	result := results[0][1:]

	whole, err := strconv.ParseInt(result[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrInput, "invalid whole value: %s", err)
	}

	var frac int64
	if result[2] != "" {
		digits := result[2][1:]
		if len(digits) > 6 {
			digits = digits[:6]
		}
		digits += strings.Repeat("0", 6-len(digits))
		if frac, err = strconv.ParseInt(digits, 10, 64); err != nil {
			return 0, errors.Wrapf(errors.ErrInput, "invalid fractional value: %s", err)
		}
	}

	m := Mutez(whole)*MutezPerTez + Mutez(frac)
	if result[0] == "-" {
		m = -m
	}
	return m, nil
}

var humanAmountRx = regexp.MustCompile(`^(\-?)\s*(\d+)(\.\d+)?(?:\s*XTZ)?$`)
