//go:build !linux && !darwin && !windows
// +build !linux,!darwin,!windows

package filesystem

import (
	"os"
	"time"
)

// changeTime has no portable source on this platform; callers fall back to
// the modification time alone.
func changeTime(_ os.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
