package models

import "time"

// FileFailure records a file whose update failed after all recovery attempts
type FileFailure struct {
	Path string
	Err  error
}

// RunSummary contains the complete result of one update or check run
type RunSummary struct {
	// Summary
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Root      string
	Mode      string
	DryRun    bool

	// Counters
	Candidates int // Files that passed discovery filters

	// Outcomes
	Changed  []string      // Files rewritten (or that would be, in dry-run)
	Failures []FileFailure // Files whose processing failed
}

// AddChanged records a file that was (or would be) rewritten
func (s *RunSummary) AddChanged(path string) {
	s.Changed = append(s.Changed, path)
}

// AddFailure records a failed file
func (s *RunSummary) AddFailure(path string, err error) {
	s.Failures = append(s.Failures, FileFailure{Path: path, Err: err})
}

// ChangedCount returns the number of files rewritten
func (s *RunSummary) ChangedCount() int {
	return len(s.Changed)
}

// Finish stamps the end time and computes the duration
func (s *RunSummary) Finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}
