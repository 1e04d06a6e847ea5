// Package scan composes the tree walker and the classifier into a single pass
// over a project, producing the list of files that need the client directive.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/lexandro/useclient-mcp/classify"
)

// DefaultWorkers is the size of the classification worker pool.
const DefaultWorkers = 8

// Finding is a candidate file that lacks the marker and matches a signature.
type Finding struct {
	Path         string // absolute path
	RelativePath string // forward slashes, relative to the root
	Signature    string // first matching signature
	Line         int    // 1-based line of the first match
}

// FileError records a candidate that could not be read or decoded.
type FileError struct {
	Path         string
	RelativePath string
	Err          error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// FileResult is the outcome for one candidate file, successful or not.
type FileResult struct {
	Path         string
	RelativePath string
	Result       classify.Result
	SizeBytes    int64
	ModTime      time.Time
	Err          error
}

// Report is the aggregated outcome of a scan. Findings and Errors are in
// discovery order.
type Report struct {
	Root     string
	Findings []Finding
	Errors   []FileError
	Scanned  int // candidates inspected, including ones that failed to read
	Duration time.Duration
}

// ObserveFunc receives every file result along with the file's content (empty
// on error). It is called from worker goroutines and must be safe for
// concurrent use.
type ObserveFunc func(result FileResult, content string)

// Scanner walks a root directory and classifies each candidate file.
type Scanner struct {
	RootDir    string
	Filter     PathFilter
	Classifier *classify.Classifier
	Workers    int
	Logger     *slog.Logger
	Observe    ObserveFunc
}

type sequencedResult struct {
	seq    int
	result FileResult
}

// Run performs a full scan. Per-file read failures are logged and collected in
// the report; they never abort the scan. The only error returned is ctx's.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	workerCount := s.Workers
	if workerCount <= 0 {
		workerCount = DefaultWorkers
	}

	type scanJob struct {
		seq  int
		path string
	}
	jobs := make(chan scanJob, 100)

	// Each worker accumulates locally; results are merged by discovery sequence.
	perWorker := make([][]sequencedResult, workerCount)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for job := range jobs {
				result := s.ScanFile(job.path)
				perWorker[worker] = append(perWorker[worker], sequencedResult{seq: job.seq, result: result})
			}
		}(i)
	}

	seq := 0
	var walkErr error
	for path := range Walk(s.RootDir, s.Filter, s.Logger) {
		if err := ctx.Err(); err != nil {
			walkErr = err
			break
		}
		jobs <- scanJob{seq: seq, path: path}
		seq++
	}
	close(jobs)
	wg.Wait()

	if walkErr != nil {
		return nil, fmt.Errorf("scan canceled: %w", walkErr)
	}

	merged := make([]sequencedResult, 0, seq)
	for _, local := range perWorker {
		merged = append(merged, local...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].seq < merged[j].seq })

	report := &Report{Root: s.RootDir, Scanned: len(merged)}
	for _, entry := range merged {
		r := entry.result
		if r.Err != nil {
			report.Errors = append(report.Errors, FileError{Path: r.Path, RelativePath: r.RelativePath, Err: r.Err})
			continue
		}
		if r.Result.NeedsMarker() {
			report.Findings = append(report.Findings, Finding{
				Path:         r.Path,
				RelativePath: r.RelativePath,
				Signature:    r.Result.Signature,
				Line:         r.Result.Line,
			})
		}
	}
	report.Duration = time.Since(start)

	s.Logger.Info("scan complete",
		"root", s.RootDir,
		"scanned", report.Scanned,
		"findings", len(report.Findings),
		"errors", len(report.Errors),
		"duration", report.Duration,
	)
	return report, nil
}

// ScanFile reads and classifies one file, reporting it to Observe.
func (s *Scanner) ScanFile(path string) FileResult {
	result := FileResult{Path: path, RelativePath: s.RelativePath(path)}

	content, info, err := s.Classifier.ReadFile(path)
	if err != nil {
		s.Logger.Warn("skipping unreadable file", "path", path, "error", err)
		result.Err = err
		if s.Observe != nil {
			s.Observe(result, "")
		}
		return result
	}

	result.SizeBytes = info.Size()
	result.ModTime = info.ModTime()
	result.Result = s.Classifier.Classify(content)
	s.Logger.Debug("classified file",
		"path", result.RelativePath,
		"verdict", result.Result.Verdict,
		"signature", result.Result.Signature,
	)

	if s.Observe != nil {
		s.Observe(result, content)
	}
	return result
}

// RelativePath returns path relative to the root with forward slashes.
func (s *Scanner) RelativePath(path string) string {
	relPath, err := filepath.Rel(s.RootDir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(relPath)
}
