package main

import (
	"os"
	"time"

	"github.com/lexandro/useclient-mcp/index"
	"github.com/lexandro/useclient-mcp/scan"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles  int // candidates on disk but not in the index
	StaleFiles    int // indexed files that are gone or no longer candidates
	ModifiedFiles int // files whose ModTime differs
	Duration      time.Duration
}

// runPeriodicSync verifies index consistency at the given interval until stop
// is closed.
func (w *workspace) runPeriodicSync(intervalSeconds int, stop <-chan struct{}) {
	interval := time.Duration(intervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("periodic sync started", "intervalSeconds", intervalSeconds)

	for {
		select {
		case <-stop:
			w.logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			w.performSyncVerification()
		}
	}
}

// performSyncVerification compares the candidate files on disk with the index
// and re-classifies anything out of sync.
func (w *workspace) performSyncVerification() SyncResult {
	start := time.Now()
	var result SyncResult

	diskFiles := make(map[string]os.FileInfo) // key: relative path (forward slashes)
	for path := range scan.Walk(w.rootDir, w.matcher, w.logger) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		diskFiles[w.relativePath(path)] = info
	}

	indexedSet := make(map[string]*index.ScannedFile)
	for _, f := range w.fileIndex.AllFiles() {
		indexedSet[f.RelativePath] = f
	}

	for relPath, info := range diskFiles {
		indexed, exists := indexedSet[relPath]
		switch {
		case !exists:
			w.indexSingleFile(w.absolutePath(relPath))
			w.logger.Info("sync: classified missing file", "path", relPath)
			result.MissingFiles++
		case !info.ModTime().Equal(indexed.ModTime):
			w.indexSingleFile(w.absolutePath(relPath))
			w.logger.Info("sync: re-classified modified file", "path", relPath)
			result.ModifiedFiles++
		}
	}

	for relPath := range indexedSet {
		if _, exists := diskFiles[relPath]; !exists {
			w.removeFile(relPath)
			w.logger.Info("sync: removed stale file", "path", relPath)
			result.StaleFiles++
		}
	}

	result.Duration = time.Since(start)
	if result.MissingFiles+result.StaleFiles+result.ModifiedFiles > 0 {
		w.logger.Info("sync verification complete",
			"missing", result.MissingFiles,
			"stale", result.StaleFiles,
			"modified", result.ModifiedFiles,
			"duration", result.Duration,
		)
	} else {
		w.logger.Debug("sync verification complete, index is in sync", "duration", result.Duration)
	}
	return result
}
