package scan

import (
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
)

// PathFilter decides which directories are pruned and which files are yielded.
type PathFilter interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Walk returns a lazy sequence of candidate file paths beneath rootDir.
// Unreadable directories are logged and skipped; traversal continues elsewhere.
// Symlinked directories are not followed.
func Walk(rootDir string, filter PathFilter, logger *slog.Logger) iter.Seq[string] {
	return func(yield func(string) bool) {
		filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == rootDir && d == nil {
					logger.Warn("cannot read root directory", "path", path, "error", err)
					return filepath.SkipAll
				}
				logger.Warn("skipping unreadable directory", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != rootDir && filter.ShouldIgnoreDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					return nil
				}
			}
			if filter.ShouldIgnore(path) {
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
