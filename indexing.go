package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lexandro/useclient-mcp/classify"
	"github.com/lexandro/useclient-mcp/config"
	"github.com/lexandro/useclient-mcp/ignore"
	"github.com/lexandro/useclient-mcp/index"
	"github.com/lexandro/useclient-mcp/language"
	"github.com/lexandro/useclient-mcp/scan"
	"github.com/lexandro/useclient-mcp/watcher"
)

// workspace holds the live classification of one project in serve mode.
type workspace struct {
	rootDir      string
	matcher      *ignore.Matcher
	classifier   *classify.Classifier
	fileIndex    *index.FileIndex
	contentIndex *index.ContentIndex
	workers      int
	logger       *slog.Logger
}

func newWorkspace(cfg *config.Config, logger *slog.Logger) (*workspace, error) {
	classifier, err := cfg.NewClassifier()
	if err != nil {
		return nil, err
	}
	contentIndex, err := index.NewContentIndex()
	if err != nil {
		return nil, fmt.Errorf("creating content index: %w", err)
	}
	return &workspace{
		rootDir:      cfg.Root,
		matcher:      ignore.NewMatcher(cfg.MatcherOptions()),
		classifier:   classifier,
		fileIndex:    index.NewFileIndex(),
		contentIndex: contentIndex,
		workers:      cfg.Workers,
		logger:       logger,
	}, nil
}

func (w *workspace) Close() error {
	return w.contentIndex.Close()
}

func (w *workspace) scanner() *scan.Scanner {
	return &scan.Scanner{
		RootDir:    w.rootDir,
		Filter:     w.matcher,
		Classifier: w.classifier,
		Workers:    w.workers,
		Logger:     w.logger,
		Observe:    w.record,
	}
}

// performIndexing scans the whole project into empty indexes.
func (w *workspace) performIndexing(ctx context.Context) (*scan.Report, error) {
	w.fileIndex.Clear()
	if err := w.contentIndex.Clear(); err != nil {
		return nil, fmt.Errorf("clearing content index: %w", err)
	}
	return w.scanner().Run(ctx)
}

// rescan reloads ignore rules and rebuilds the indexes from scratch.
func (w *workspace) rescan(ctx context.Context) (*scan.Report, error) {
	w.matcher.Reload()
	return w.performIndexing(ctx)
}

// indexSingleFile re-classifies one file into both indexes.
func (w *workspace) indexSingleFile(absolutePath string) scan.FileResult {
	return w.scanner().ScanFile(absolutePath)
}

// record stores a file result. It is called concurrently by scan workers.
func (w *workspace) record(result scan.FileResult, content string) {
	file := &index.ScannedFile{
		Path:         result.Path,
		RelativePath: result.RelativePath,
		Language:     language.DetectLanguage(result.Path),
		SizeBytes:    result.SizeBytes,
		ModTime:      result.ModTime,
		Result:       result.Result,
	}

	if result.Err != nil {
		file.ReadError = result.Err.Error()
		if info, err := os.Stat(result.Path); err == nil {
			file.SizeBytes = info.Size()
			file.ModTime = info.ModTime()
		}
		w.fileIndex.AddFile(file)
		if err := w.contentIndex.RemoveFile(result.RelativePath); err != nil {
			w.logger.Warn("failed to drop content", "path", result.RelativePath, "error", err)
		}
		return
	}

	w.fileIndex.AddFile(file)
	if err := w.contentIndex.IndexFile(result.RelativePath, content, file.Language, result.Result.Verdict); err != nil {
		w.logger.Warn("failed to index content", "path", result.RelativePath, "error", err)
	}
}

func (w *workspace) removeFile(relativePath string) {
	w.fileIndex.RemoveFile(relativePath)
	if err := w.contentIndex.RemoveFile(relativePath); err != nil {
		w.logger.Warn("failed to drop content", "path", relativePath, "error", err)
	}
}

// removeDir drops every indexed file under relativeDir.
func (w *workspace) removeDir(relativeDir string) {
	for _, relPath := range w.fileIndex.RemoveDir(relativeDir) {
		if err := w.contentIndex.RemoveFile(relPath); err != nil {
			w.logger.Warn("failed to drop content", "path", relPath, "error", err)
		}
	}
}

func (w *workspace) relativePath(absolutePath string) string {
	relPath, err := filepath.Rel(w.rootDir, absolutePath)
	if err != nil {
		return filepath.ToSlash(absolutePath)
	}
	return filepath.ToSlash(relPath)
}

func (w *workspace) absolutePath(relativePath string) string {
	return filepath.Join(w.rootDir, filepath.FromSlash(relativePath))
}

// handleWatcherEvents applies debounced file system events to the indexes
// until the watcher closes its event channel.
func (w *workspace) handleWatcherEvents(fileWatcher *watcher.Watcher) {
	for events := range fileWatcher.Events() {
		for _, event := range events {
			if fileWatcher.IsIgnoreFile(event.Path) {
				w.matcher.Reload()
				w.logger.Info("reloaded ignore rules", "trigger", filepath.Base(event.Path))
				w.performSyncVerification()
				continue
			}

			relPath := w.relativePath(event.Path)
			if event.Op.Gone() {
				w.removeFile(relPath)
				w.removeDir(relPath)
				w.logger.Debug("removed from index", "path", relPath)
				continue
			}

			if w.matcher.ShouldIgnore(event.Path) {
				continue
			}
			info, err := os.Stat(event.Path)
			if err != nil || info.IsDir() {
				continue
			}

			result := w.indexSingleFile(event.Path)
			w.logger.Debug("re-classified file",
				"path", relPath,
				"op", event.Op,
				"verdict", result.Result.Verdict,
			)
		}
	}
}
