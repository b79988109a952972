package address

import (
	"crypto/sha256"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/iov-one/payout/errors"
)

// Length is the expected length of an encoded address.
const Length = 36

// rawLength is the length of a decoded address: a 3 byte prefix, a 20 byte
// key hash and a 4 byte checksum.
const rawLength = 3 + 20 + 4

// Validator checks destination addresses before they are accepted into the
// pipeline. The context string names where the address came from (a
// configuration key, a destination map) so that error messages point at
// the offending input.
type Validator struct {
	context string
}

// NewValidator returns a validator reporting errors against given context.
func NewValidator(context string) *Validator {
	return &Validator{context: context}
}

// Validate returns an error unless given address is a well formed tz or KT
// address with a valid base58 checksum.
func (v *Validator) Validate(addr string) error {
	if !strings.HasPrefix(addr, "tz") && !strings.HasPrefix(addr, "KT") {
		return errors.Wrapf(errors.ErrAddress,
			"incorrect input in %s, %q is not a tz or KT address", v.context, addr)
	}
	if len(addr) != Length {
		return errors.Wrapf(errors.ErrAddress,
			"incorrect input in %s, %q length must be %d", v.context, addr, Length)
	}
	if !checksumOK(addr) {
		return errors.Wrapf(errors.ErrAddress,
			"incorrect input in %s, %q has an invalid checksum", v.context, addr)
	}
	return nil
}

// IsAddress reports whether given string looks like a valid destination
// address.
func IsAddress(addr string) bool {
	if len(addr) != Length {
		return false
	}
	if !strings.HasPrefix(addr, "tz") && !strings.HasPrefix(addr, "KT") {
		return false
	}
	return checksumOK(addr)
}

// checksumOK verifies the trailing 4 byte double sha256 checksum of the
// base58 encoded address.
func checksumOK(addr string) bool {
	raw := base58.Decode(addr)
	if len(raw) != rawLength {
		return false
	}
	payload := raw[:rawLength-4]
	want := raw[rawLength-4:]

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	for i := 0; i < 4; i++ {
		if second[i] != want[i] {
			return false
		}
	}
	return true
}
