//go:build darwin
// +build darwin

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// changeTime extracts the inode change time on macOS.
func changeTime(info os.FileInfo) (time.Time, bool) {
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(sys.Ctimespec.Sec, sys.Ctimespec.Nsec), true
	}
	return time.Time{}, false
}
