package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/lexandro/useclient-mcp/classify"
	"github.com/lexandro/useclient-mcp/ignore"
	"github.com/lexandro/useclient-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// maxStatusFindings caps the findings listed in the status output.
const maxStatusFindings = 20

// StatusArgs defines the input parameters for the useclient_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	FileIndex    *index.FileIndex
	ContentIndex *index.ContentIndex
	Classifier   *classify.Classifier
	Matcher      *ignore.Matcher
	StartTime    time.Time
	Logger       *slog.Logger
}

// Handle processes a useclient_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	var builder strings.Builder

	fileCount := h.FileIndex.FileCount()
	verdicts, readErrors := h.FileIndex.Counts()
	langCounts := h.FileIndex.LanguageCounts()
	docCount := h.ContentIndex.DocumentCount()
	uptime := time.Since(h.StartTime)

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("useclient_status",
		"files", fileCount,
		"findings", verdicts[classify.NeedsMarker],
		"memory", memStats.Alloc,
		"uptime", uptime,
	)

	builder.WriteString("=== useclient-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", h.Matcher.RootDir()))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Marker: %q in the first %d characters\n", h.Classifier.Marker(), h.Classifier.MarkerWindow()))
	builder.WriteString(fmt.Sprintf("Signatures: %d\n", len(h.Classifier.Signatures())))
	builder.WriteString(fmt.Sprintf("Extensions: %s\n", joinOrNone(h.Matcher.Extensions())))
	builder.WriteString(fmt.Sprintf("Excluded directories: %s\n", joinOrNone(h.Matcher.Exclusions())))
	builder.WriteString(fmt.Sprintf("Scanned files: %d\n", fileCount))
	builder.WriteString(fmt.Sprintf("  Need 'use client': %d\n", verdicts[classify.NeedsMarker]))
	builder.WriteString(fmt.Sprintf("  Already marked: %d\n", verdicts[classify.Marked]))
	builder.WriteString(fmt.Sprintf("  Clean: %d\n", verdicts[classify.Clean]))
	builder.WriteString(fmt.Sprintf("  Read errors: %d\n", readErrors))
	builder.WriteString(fmt.Sprintf("Content-indexed documents: %d\n", docCount))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if len(langCounts) > 0 {
		builder.WriteString("\nLanguages:\n")

		type langEntry struct {
			lang  string
			count int
		}
		entries := make([]langEntry, 0, len(langCounts))
		for lang, count := range langCounts {
			entries = append(entries, langEntry{lang, count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].lang < entries[j].lang
		})

		for _, entry := range entries {
			builder.WriteString(fmt.Sprintf("  %-20s %d files\n", entry.lang, entry.count))
		}
	}

	if findings := h.FileIndex.Findings(); len(findings) > 0 {
		builder.WriteString("\nFindings:\n")
		for i, file := range findings {
			if i == maxStatusFindings {
				builder.WriteString(fmt.Sprintf("  ... and %d more (use useclient_files with findingsOnly)\n", len(findings)-i))
				break
			}
			builder.WriteString(fmt.Sprintf("  %s (%s, line %d)\n", file.RelativePath, file.Result.Signature, file.Result.Line))
		}
	}

	return textResult(builder.String()), nil, nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
