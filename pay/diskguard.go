package pay

import (
	"golang.org/x/sys/unix"
)

// DefaultMinFreeBytes is the default free space threshold below which the
// guard reports exhaustion. Enough headroom for many report files.
const DefaultMinFreeBytes = 100 << 20

// StatfsGuard implements payout.DiskGuard against the filesystem holding
// the report directories. A worker observing exhaustion stops pulling new
// work instead of risking a partially written report.
type StatfsGuard struct {
	// Path is any location on the filesystem to watch, usually the
	// reports directory.
	Path string
	// MinFreeBytes is the threshold. Zero means DefaultMinFreeBytes.
	MinFreeBytes uint64
}

// IsFull returns true when the available space dropped below the
// threshold. When the filesystem cannot be inspected the guard reports
// not full, an unreadable mount must not silently halt payouts.
func (g StatfsGuard) IsFull() bool {
	var st unix.Statfs_t
	if err := unix.Statfs(g.Path, &st); err != nil {
		return false
	}

	min := g.MinFreeBytes
	if min == 0 {
		min = DefaultMinFreeBytes
	}
	free := st.Bavail * uint64(st.Bsize)
	return free < min
}
