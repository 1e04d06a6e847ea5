package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which directories are pruned and which files are candidates.
// It combines exclusion substrings, the extension allow-list, optional glob
// excludes, and optionally the project's .gitignore.
// Thread-safe: Reload() acquires a write lock, the Should* methods acquire a read lock.
type Matcher struct {
	mu           sync.RWMutex
	rootDir      string
	exclusions   []string
	extensions   []string
	excludeGlobs []string
	useGitignore bool
	gitIgnore    gitignore.GitIgnore
}

// MatcherOptions configures the matcher. Nil slices fall back to the defaults;
// empty non-nil slices disable the rule.
type MatcherOptions struct {
	RootDir      string
	Exclusions   []string
	Extensions   []string
	ExcludeGlobs []string
	UseGitignore bool
}

// NewMatcher creates a matcher rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	matcher := &Matcher{
		rootDir:      options.RootDir,
		exclusions:   options.Exclusions,
		extensions:   options.Extensions,
		excludeGlobs: options.ExcludeGlobs,
		useGitignore: options.UseGitignore,
	}
	if matcher.exclusions == nil {
		matcher.exclusions = DefaultExclusions
	}
	if matcher.extensions == nil {
		matcher.extensions = DefaultExtensions
	}

	if matcher.useGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}
	return matcher
}

// RootDir returns the directory the matcher resolves relative paths against.
func (m *Matcher) RootDir() string {
	return m.rootDir
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely during traversal.
// The root itself is never skipped.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	relativePath := m.relative(absolutePath)
	if relativePath == "." {
		return false
	}

	if m.isExcludedDir(relativePath) {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.matchesExcludeGlobs(relativePath) {
		return true
	}
	return m.matchesGitignore(relativePath, true)
}

// ShouldIgnore returns true if the file at absolutePath is not a candidate.
// It re-checks the containing directories so that paths reported outside a
// traversal (watcher events) follow the same rules.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	if !m.HasAllowedExtension(absolutePath) {
		return true
	}

	relativePath := m.relative(absolutePath)
	if dir := filepath.ToSlash(filepath.Dir(relativePath)); dir != "." && m.isExcludedDir(dir) {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.matchesExcludeGlobs(relativePath) {
		return true
	}
	if m.matchesGitignore(relativePath, false) {
		return true
	}
	// gitignore directory rules only match the directory entry itself
	for dir := filepath.ToSlash(filepath.Dir(relativePath)); dir != "." && dir != "/"; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if m.matchesGitignore(dir, true) || m.matchesExcludeGlobs(dir) {
			return true
		}
	}
	return false
}

// HasAllowedExtension reports whether the file name ends with an allowed suffix.
// The comparison is case-sensitive.
func (m *Matcher) HasAllowedExtension(path string) bool {
	name := filepath.Base(path)
	for _, ext := range m.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Extensions returns the extension allow-list.
func (m *Matcher) Extensions() []string {
	return m.extensions
}

// Exclusions returns the directory exclusion substrings.
func (m *Matcher) Exclusions() []string {
	return m.exclusions
}

// isExcludedDir checks whether any exclusion term is a substring of the directory path.
func (m *Matcher) isExcludedDir(relativeDir string) bool {
	for _, term := range m.exclusions {
		if term != "" && strings.Contains(relativeDir, term) {
			return true
		}
	}
	return false
}

// matchesExcludeGlobs checks the path and its basename against the user glob patterns.
func (m *Matcher) matchesExcludeGlobs(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.excludeGlobs {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, baseName); err == nil && matched {
			return true
		}
	}
	return false
}

func (m *Matcher) matchesGitignore(relativePath string, isDir bool) bool {
	if m.gitIgnore == nil {
		return false
	}
	match := m.gitIgnore.Relative(relativePath, isDir)
	return match != nil && match.Ignore()
}

// relative returns the forward-slash path of absolutePath relative to the root.
func (m *Matcher) relative(absolutePath string) string {
	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	return filepath.ToSlash(relativePath)
}

// Reload re-reads .gitignore from disk. No-op unless gitignore support is enabled.
// Used when the watcher detects changes to it.
func (m *Matcher) Reload() {
	if !m.useGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

// ValidateGlobs returns the first invalid pattern, if any.
func ValidateGlobs(patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return pattern, false
		}
	}
	return "", true
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
