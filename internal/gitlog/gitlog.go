package gitlog

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DanielWuxiaoxiao/headstamp/pkg/models"
)

// ciLayout is what git's %ci placeholder produces,
// e.g. "2021-03-05 14:02:11 +0800".
const ciLayout = "2006-01-02 15:04:05 -0700"

// Client answers date questions about files by shelling out to git.
// Queries run with the configured root as working directory, so they hit
// the right repository no matter where the process itself was started.
type Client struct {
	root   string
	logger *zap.Logger
}

func NewClient(root string, logger *zap.Logger) *Client {
	return &Client{root: root, logger: logger}
}

// FileDates returns the creation and last-edit timestamps git records for
// path, normalized to the header layout. Either value may be empty: a file
// outside any repository, an untracked file, or a missing git binary all
// degrade to empty strings rather than errors.
func (c *Client) FileDates(ctx context.Context, path string) (created, lastEdited string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return c.creationTime(ctx, path), c.lastEditTime(ctx, path)
}

// creationTime asks for the date of every commit that added the file,
// following renames, and keeps the earliest. A file deleted and re-added
// has several addition commits; its creation is the minimum of them, not
// whichever one git happens to list last.
func (c *Client) creationTime(ctx context.Context, path string) string {
	out := c.run(ctx, "log", "--diff-filter=A", "--follow", "--format=%ci", "--", path)
	return earliest(out)
}

// lastEditTime is the date of the most recent commit touching the file.
func (c *Client) lastEditTime(ctx context.Context, path string) string {
	out := c.run(ctx, "log", "-1", "--format=%ci", "--", path)
	return normalizeTimestamp(firstLine(out))
}

// run executes a git subcommand and returns its stdout, or "" when the
// command fails for any reason. Stderr is discarded.
func (c *Client) run(ctx context.Context, args ...string) string {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.root

	out, err := cmd.Output()
	if err != nil {
		c.logger.Debug("git query failed",
			zap.Strings("args", args),
			zap.Error(err))
		return ""
	}
	return string(out)
}

// earliest parses every timestamp line in out and returns the smallest,
// normalized. Blank or malformed lines are skipped.
func earliest(out string) string {
	var best time.Time
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ts, err := time.Parse(ciLayout, line)
		if err != nil {
			continue
		}
		if best.IsZero() || ts.Before(best) {
			best = ts
		}
	}
	if best.IsZero() {
		return ""
	}
	return best.Format(models.TimeLayout)
}

func firstLine(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimSpace(line)
}

// normalizeTimestamp drops the timezone offset from a %ci timestamp while
// keeping the wall-clock reading. Unparseable input maps to the empty
// string and is treated as absent.
func normalizeTimestamp(s string) string {
	if s == "" {
		return ""
	}
	ts, err := time.Parse(ciLayout, s)
	if err != nil {
		return ""
	}
	return ts.Format(models.TimeLayout)
}
