//go:build windows
// +build windows

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// changeTime extracts the creation time on Windows, matching what a stat
// call reports as ctime there.
func changeTime(info os.FileInfo) (time.Time, bool) {
	if sys, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, sys.CreationTime.Nanoseconds()), true
	}
	return time.Time{}, false
}
