package updater

import (
	"context"
	"fmt"
	"os"
	"time"

	retry "github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/DanielWuxiaoxiao/headstamp/internal/config"
	"github.com/DanielWuxiaoxiao/headstamp/internal/filesystem"
	"github.com/DanielWuxiaoxiao/headstamp/internal/gitlog"
	"github.com/DanielWuxiaoxiao/headstamp/internal/header"
	"github.com/DanielWuxiaoxiao/headstamp/internal/report"
	"github.com/DanielWuxiaoxiao/headstamp/pkg/models"
)

// DateSource answers timestamp queries for a file. The production source is
// the gitlog client; tests substitute fixed dates.
type DateSource interface {
	FileDates(ctx context.Context, path string) (created, lastEdited string)
}

// Updater is the batch engine: discover, derive, synthesize, splice, write —
// one file at a time.
type Updater struct {
	config  *config.Config
	logger  *zap.Logger
	git     DateSource
	walker  *filesystem.Walker
	printer *report.Printer
	now     func() time.Time
}

// NewUpdater creates a new updater instance
func NewUpdater(cfg *config.Config, logger *zap.Logger, printer *report.Printer) *Updater {
	return &Updater{
		config:  cfg,
		logger:  logger,
		git:     gitlog.NewClient(cfg.Root, logger),
		walker:  filesystem.NewWalker(cfg, logger),
		printer: printer,
		now:     time.Now,
	}
}

// Run processes the explicit file list, or scans the root when the list is
// empty. Per-file failures print a warning line, land in the summary and
// never stop the batch; the returned error is reserved for discovery
// failures that prevent the run from happening at all.
func (u *Updater) Run(ctx context.Context, explicit []string) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		StartTime: u.now(),
		Root:      u.config.Root,
		Mode:      u.config.Mode,
		DryRun:    u.config.DryRun,
	}

	u.logger.Info("Starting header update",
		zap.String("root", u.config.Root),
		zap.String("mode", u.config.Mode),
		zap.Bool("dry_run", u.config.DryRun))

	targets, err := u.walker.Discover(explicit)
	if err != nil {
		summary.Finish()
		return summary, fmt.Errorf("failed to discover files: %w", err)
	}
	summary.Candidates = len(targets)

	for _, path := range targets {
		changed, err := u.UpdateFile(ctx, path)
		if err != nil {
			u.printer.FileWarning(path, err)
			summary.AddFailure(path, err)
			continue
		}
		if changed {
			summary.AddChanged(path)
		}
	}

	summary.Finish()

	if len(summary.Failures) > 0 {
		var errs *multierror.Error
		for _, f := range summary.Failures {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
		u.logger.Debug("Run finished with failures", zap.Error(errs.ErrorOrNil()))
	}

	u.logger.Info("Header update complete",
		zap.Int("candidates", summary.Candidates),
		zap.Int("changed", summary.ChangedCount()),
		zap.Int("failures", len(summary.Failures)),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// UpdateFile rewrites the header of a single file. It reports true when the
// content changed — or would change, in dry-run mode.
func (u *Updater) UpdateFile(ctx context.Context, path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	// Content stays raw bytes end to end; invalid UTF-8 passes through.
	orig := string(raw)
	target := models.FileTarget{Path: path, EOL: header.DetectEOL(orig)}

	rec := u.deriveDates(ctx, target.Path)

	id := header.Identity{Author: u.config.Author, Email: u.config.Email}
	block := header.Build(id, rec, target.EOL)
	updated := header.Splice(orig, block)

	if updated == orig {
		return false, nil
	}
	if u.config.DryRun {
		u.logger.Debug("Would update header", zap.String("path", path))
		return true, nil
	}
	if err := u.writeFile(target.Path, []byte(updated)); err != nil {
		return false, err
	}

	u.logger.Debug("Updated header", zap.String("path", path))
	return true, nil
}

// deriveDates resolves the header timestamps for one file: git history
// first, filesystem metadata for whatever git could not answer. In commit
// mode the last-edit time is then forced to the current wall clock.
func (u *Updater) deriveDates(ctx context.Context, path string) models.HeaderRecord {
	var rec models.HeaderRecord
	rec.Created, rec.LastEdited = u.git.FileDates(ctx, path)

	if !rec.Complete() {
		fsCreated, fsEdited, err := filesystem.FallbackDates(path)
		if err != nil {
			// Both values stay absent; the header renders them empty.
			u.logger.Debug("Filesystem fallback failed",
				zap.String("path", path), zap.Error(err))
		} else {
			if rec.Created == "" {
				rec.Created = fsCreated
			}
			if rec.LastEdited == "" {
				rec.LastEdited = fsEdited
			}
		}
	}

	if u.config.Mode == config.ModeCommit {
		rec.LastEdited = u.now().Format(models.TimeLayout)
	}

	return rec
}

// writeFile writes content back, clearing a read-only bit and retrying once
// when the first attempt is refused.
func (u *Updater) writeFile(path string, content []byte) error {
	err := retry.Do(
		func() error {
			return os.WriteFile(path, content, 0o644)
		},
		retry.Attempts(2),
		retry.RetryIf(os.IsPermission),
		retry.OnRetry(func(_ uint, err error) {
			u.logger.Debug("Write refused, clearing read-only bit",
				zap.String("path", path), zap.Error(err))
			u.clearReadOnly(path)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// clearReadOnly adds the owner-write bit, keeping the other mode bits intact.
func (u *Updater) clearReadOnly(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if err := os.Chmod(path, info.Mode()|0o200); err != nil {
		u.logger.Debug("chmod failed", zap.String("path", path), zap.Error(err))
	}
}
