//go:build linux
// +build linux

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// changeTime extracts the inode change time (Linux has no true birth time,
// ctime is the closest approximation).
func changeTime(info os.FileInfo) (time.Time, bool) {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(sys.Ctim.Sec, sys.Ctim.Nsec), true
	}
	return time.Time{}, false
}
