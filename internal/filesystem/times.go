package filesystem

import (
	"os"

	"github.com/DanielWuxiaoxiao/headstamp/pkg/models"
)

// FallbackDates derives header timestamps from filesystem metadata, for
// files version control knows nothing about. Last-edit is the modification
// time; creation is the earlier of the modification time and the platform
// change/creation time, since a true birth time is not portable.
func FallbackDates(path string) (created, lastEdited string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}

	mod := info.ModTime()
	createdAt := mod
	if ct, ok := changeTime(info); ok && ct.Before(mod) {
		createdAt = ct
	}

	return createdAt.Format(models.TimeLayout), mod.Format(models.TimeLayout), nil
}
