package report

import (
	"fmt"
	"io"
	"time"

	"github.com/DanielWuxiaoxiao/headstamp/pkg/models"
)

// Printer renders the user-facing contract output on stdout: one warning
// line per failed file, stale-file lines for check runs, and the final
// summary count. Diagnostics belong to the logger, never here.
type Printer struct {
	out     io.Writer
	verbose bool
}

// NewPrinter creates a new printer writing to out
func NewPrinter(out io.Writer, verbose bool) *Printer {
	return &Printer{out: out, verbose: verbose}
}

// FileWarning reports a per-file failure; the batch continues afterwards.
func (p *Printer) FileWarning(path string, err error) {
	fmt.Fprintf(p.out, "[WARN] Failed updating %s: %v\n", path, err)
}

// StaleFile reports a file whose header a check run found missing or stale.
func (p *Printer) StaleFile(path string) {
	fmt.Fprintf(p.out, "Stale header in %s\n", path)
}

// Summary prints the final changed-file count. The count line is always the
// last line of a run; verbose detail goes above it.
func (p *Printer) Summary(s *models.RunSummary) {
	if p.verbose {
		fmt.Fprintf(p.out, "Examined %d candidate file(s) under %s in %s\n",
			s.Candidates, s.Root, FormatDuration(s.Duration))
	}

	verb := "Updated"
	if s.DryRun {
		verb = "Would update"
	}
	fmt.Fprintf(p.out, "%s headers in %d file(s)\n", verb, s.ChangedCount())
}

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		// Milliseconds
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		// Seconds
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		// Minutes and seconds
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	// Hours, minutes and seconds
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}
