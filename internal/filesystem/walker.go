package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"

	"github.com/DanielWuxiaoxiao/headstamp/internal/config"
)

// Walker walks the filesystem and finds files to stamp
type Walker struct {
	config  *config.Config
	logger  *zap.Logger
	exclude map[string]bool
	ignorer *ignore.GitIgnore
	maxSize int64
}

// NewWalker creates a new filesystem walker
func NewWalker(cfg *config.Config, logger *zap.Logger) *Walker {
	// Build exclude map for fast lookup
	exclude := make(map[string]bool)
	for _, dir := range cfg.SkipDirs {
		exclude[dir] = true
	}

	w := &Walker{
		config:  cfg,
		logger:  logger,
		exclude: exclude,
		maxSize: ParseSize(cfg.MaxSize),
	}

	if cfg.IgnoreFile != "" {
		path := filepath.Join(cfg.Root, cfg.IgnoreFile)
		if ign, err := ignore.CompileIgnoreFile(path); err == nil {
			w.ignorer = ign
		}
	}

	return w
}

// Discover returns the files to process: the explicit list filtered by the
// same rules as a scan, or a full walk of the root when the list is empty.
// Order follows directory traversal; no sorting is applied.
func (w *Walker) Discover(explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		return w.filterExplicit(explicit), nil
	}
	return w.scan()
}

func (w *Walker) scan() ([]string, error) {
	var targets []string

	err := filepath.Walk(w.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Debug("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil // Continue walking
		}

		relPath, err := filepath.Rel(w.config.Root, path)
		if err != nil {
			relPath = path
		}

		// Skip excluded directories; the root itself is never excluded
		if info.IsDir() {
			if relPath != "." && (w.shouldExclude(info.Name(), relPath) || w.ignored(relPath)) {
				w.logger.Debug("Skipping excluded directory", zap.String("path", relPath))
				return filepath.SkipDir
			}
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		if !w.config.ShouldProcess(filepath.Ext(path)) {
			return nil
		}
		if w.ignored(relPath) {
			w.logger.Debug("Skipping ignored file", zap.String("path", relPath))
			return nil
		}
		if w.maxSize > 0 && info.Size() > w.maxSize {
			w.logger.Debug("Skipping oversized file",
				zap.String("path", relPath),
				zap.Int64("size", info.Size()))
			return nil
		}

		targets = append(targets, path)
		return nil
	})

	return targets, err
}

// filterExplicit applies the scan rules to user-supplied paths. Paths that
// do not exist, are not regular files, have a non-target extension, or sit
// under an excluded or ignored directory are silently dropped.
func (w *Walker) filterExplicit(paths []string) []string {
	var targets []string

	for _, arg := range paths {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(w.config.Root, path)
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			w.logger.Debug("Dropping explicit path", zap.String("path", arg), zap.Error(err))
			continue
		}
		if !w.config.ShouldProcess(filepath.Ext(path)) {
			w.logger.Debug("Dropping explicit path with non-target extension", zap.String("path", arg))
			continue
		}

		relPath, err := filepath.Rel(w.config.Root, path)
		if err != nil {
			relPath = path
		}

		// Walk the ancestor chain the way a scan would have pruned it
		if dir := filepath.Dir(relPath); dir != "." && w.shouldExclude(filepath.Base(dir), dir) {
			w.logger.Debug("Dropping explicit path under excluded directory", zap.String("path", arg))
			continue
		}
		if w.ignored(relPath) {
			w.logger.Debug("Dropping ignored explicit path", zap.String("path", arg))
			continue
		}
		if w.maxSize > 0 && info.Size() > w.maxSize {
			w.logger.Debug("Dropping oversized explicit path", zap.String("path", arg))
			continue
		}

		targets = append(targets, path)
	}

	return targets
}

// shouldExclude checks if a directory should be excluded
func (w *Walker) shouldExclude(name, path string) bool {
	// Check exact match
	if w.exclude[name] {
		return true
	}

	// Check if path contains an excluded directory
	parts := strings.Split(path, string(os.PathSeparator))
	for _, part := range parts {
		if w.exclude[part] {
			return true
		}
	}

	return false
}

func (w *Walker) ignored(relPath string) bool {
	return w.ignorer != nil && w.ignorer.MatchesPath(relPath)
}
