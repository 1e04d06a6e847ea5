package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/useclient-mcp/classify"
)

// ScannedFile is the latest classification of one candidate file.
type ScannedFile struct {
	Path         string    // Absolute file path
	RelativePath string    // Path relative to project root (forward slashes)
	Language     string    // Detected source language
	SizeBytes    int64     // File size in bytes
	ModTime      time.Time // Last modification time at classification
	Result       classify.Result
	ReadError    string // non-empty when the file could not be read; Result is zero then
}

// NeedsMarker reports whether the file is a finding.
func (f *ScannedFile) NeedsMarker() bool {
	return f.ReadError == "" && f.Result.NeedsMarker()
}

// FileIndex keeps the classification of every candidate in the project.
// It uses a map for O(1) path lookups and a sorted slice for glob iteration.
type FileIndex struct {
	mu          sync.RWMutex
	files       map[string]*ScannedFile // key: relative path (forward slashes)
	sortedPaths []string                // sorted for consistent iteration
}

// NewFileIndex creates a new empty file index.
func NewFileIndex() *FileIndex {
	return &FileIndex{
		files:       make(map[string]*ScannedFile),
		sortedPaths: make([]string, 0),
	}
}

// AddFile adds or replaces a file's classification.
func (fi *FileIndex) AddFile(file *ScannedFile) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	_, exists := fi.files[file.RelativePath]
	fi.files[file.RelativePath] = file

	if !exists {
		idx := sort.SearchStrings(fi.sortedPaths, file.RelativePath)
		fi.sortedPaths = append(fi.sortedPaths, "")
		copy(fi.sortedPaths[idx+1:], fi.sortedPaths[idx:])
		fi.sortedPaths[idx] = file.RelativePath
	}
}

// RemoveFile removes a file from the index by its relative path.
func (fi *FileIndex) RemoveFile(relativePath string) {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	if _, exists := fi.files[relativePath]; !exists {
		return
	}

	delete(fi.files, relativePath)

	idx := sort.SearchStrings(fi.sortedPaths, relativePath)
	if idx < len(fi.sortedPaths) && fi.sortedPaths[idx] == relativePath {
		fi.sortedPaths = append(fi.sortedPaths[:idx], fi.sortedPaths[idx+1:]...)
	}
}

// RemoveDir removes every file under the directory relativeDir and returns
// the removed paths.
func (fi *FileIndex) RemoveDir(relativeDir string) []string {
	prefix := strings.TrimSuffix(strings.ReplaceAll(relativeDir, "\\", "/"), "/") + "/"

	fi.mu.Lock()
	defer fi.mu.Unlock()

	start := sort.SearchStrings(fi.sortedPaths, prefix)
	end := start
	for end < len(fi.sortedPaths) && strings.HasPrefix(fi.sortedPaths[end], prefix) {
		end++
	}
	if start == end {
		return nil
	}

	removed := make([]string, end-start)
	copy(removed, fi.sortedPaths[start:end])
	for _, path := range removed {
		delete(fi.files, path)
	}
	fi.sortedPaths = append(fi.sortedPaths[:start], fi.sortedPaths[end:]...)
	return removed
}

// GetFile returns the ScannedFile for a given relative path, or nil if not found.
func (fi *FileIndex) GetFile(relativePath string) *ScannedFile {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return fi.files[strings.ReplaceAll(relativePath, "\\", "/")]
}

// FileCount returns the number of scanned files, including unreadable ones.
func (fi *FileIndex) FileCount() int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()
	return len(fi.files)
}

// Counts returns the number of files per verdict plus the number of read errors.
func (fi *FileIndex) Counts() (verdicts map[classify.Verdict]int, readErrors int) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	verdicts = make(map[classify.Verdict]int)
	for _, file := range fi.files {
		if file.ReadError != "" {
			readErrors++
			continue
		}
		verdicts[file.Result.Verdict]++
	}
	return verdicts, readErrors
}

// LanguageCounts returns a map of language -> file count.
func (fi *FileIndex) LanguageCounts() map[string]int {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	counts := make(map[string]int)
	for _, file := range fi.files {
		counts[file.Language]++
	}
	return counts
}

// SearchByGlob returns files matching a doublestar glob pattern in path order.
// The pattern is matched against relative paths (forward slashes).
func (fi *FileIndex) SearchByGlob(pattern string, maxResults int, findingsOnly bool) ([]*ScannedFile, error) {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 50
	}
	if pattern == "" {
		pattern = "**"
	}

	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []*ScannedFile
	for _, path := range fi.sortedPaths {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, path)
		if err != nil || !matched {
			continue
		}
		file := fi.files[path]
		if findingsOnly && !file.NeedsMarker() {
			continue
		}
		results = append(results, file)
	}
	return results, nil
}

// Findings returns every file that needs the marker, in path order.
func (fi *FileIndex) Findings() []*ScannedFile {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	var result []*ScannedFile
	for _, path := range fi.sortedPaths {
		if file := fi.files[path]; file.NeedsMarker() {
			result = append(result, file)
		}
	}
	return result
}

// AllFiles returns all scanned files in sorted order.
func (fi *FileIndex) AllFiles() []*ScannedFile {
	fi.mu.RLock()
	defer fi.mu.RUnlock()

	result := make([]*ScannedFile, 0, len(fi.sortedPaths))
	for _, path := range fi.sortedPaths {
		if file, ok := fi.files[path]; ok {
			result = append(result, file)
		}
	}
	return result
}

// Clear removes all files from the index.
func (fi *FileIndex) Clear() {
	fi.mu.Lock()
	defer fi.mu.Unlock()

	fi.files = make(map[string]*ScannedFile)
	fi.sortedPaths = make([]string, 0)
}
