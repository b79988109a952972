package pipeline

import "github.com/iov-one/payout"

// Remap rewrites the destination address of every candidate whose address
// is a key of the destination map. Amounts are not affected. Items without
// a mapping are passed through untouched.
func Remap(items []*payout.Item, destMap map[string]string) []*payout.Item {
	if len(destMap) == 0 {
		return items
	}

	out := make([]*payout.Item, 0, len(items))
	for _, it := range items {
		dest, ok := destMap[it.Address]
		if !ok {
			out = append(out, it)
			continue
		}

		mapped := it.Clone()
		mapped.Address = dest
		mapped.OriginalAddress = it.Address
		mapped.Desc += "Payment remapped from " + it.Address + ". "
		out = append(out, mapped)
	}
	return out
}
