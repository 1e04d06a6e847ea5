package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/useclient-mcp/classify"
	"github.com/lexandro/useclient-mcp/index"
)

// FormatSearchResults formats content search results as human-readable text.
// Groups matches by file with line numbers and optional context.
func FormatSearchResults(results []index.ContentSearchResult, totalMatches int) string {
	if len(results) == 0 {
		return "No matches found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d matches in %d files:\n\n", totalMatches, len(results)))

	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("── %s ──\n", result.RelativePath))

		for _, match := range result.Matches {
			for _, ctxLine := range match.ContextBefore {
				builder.WriteString(fmt.Sprintf("  %s\n", ctxLine))
			}
			builder.WriteString(fmt.Sprintf("  %d: %s\n", match.LineNumber, match.LineText))
			for _, ctxLine := range match.ContextAfter {
				builder.WriteString(fmt.Sprintf("  %s\n", ctxLine))
			}
		}
	}

	return builder.String()
}

// FormatFileResults formats scanned files as human-readable text.
func FormatFileResults(files []*index.ScannedFile, nameOnly bool) string {
	if len(files) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(files)))

	for _, file := range files {
		if nameOnly {
			builder.WriteString(file.RelativePath)
			builder.WriteString("\n")
			continue
		}
		builder.WriteString(fmt.Sprintf("  %s  (%s, %s, %s)\n",
			file.RelativePath,
			file.Language,
			formatFileSize(file.SizeBytes),
			describeFile(file),
		))
	}

	return builder.String()
}

func describeFile(file *index.ScannedFile) string {
	switch {
	case file.ReadError != "":
		return "error: " + file.ReadError
	case file.NeedsMarker():
		return fmt.Sprintf("needs marker: %s on line %d", file.Result.Signature, file.Result.Line)
	default:
		return file.Result.Verdict.String()
	}
}

// FormatExplanation renders a classification together with every line that
// matched a signature.
func FormatExplanation(label string, marker string, explanation classify.Explanation) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("── %s ──\n", label))
	builder.WriteString(fmt.Sprintf("Verdict: %s\n", explanation.Verdict))

	if explanation.MarkerFound {
		builder.WriteString(fmt.Sprintf("Marker %q: found\n", marker))
	} else {
		builder.WriteString(fmt.Sprintf("Marker %q: not found\n", marker))
	}
	if explanation.NeedsMarker() {
		builder.WriteString(fmt.Sprintf("First signature: %s (line %d)\n", explanation.Signature, explanation.Line))
	}

	if len(explanation.Matches) == 0 {
		builder.WriteString("No signature matches.\n")
		return builder.String()
	}

	builder.WriteString(fmt.Sprintf("\nMatching lines (%d):\n", len(explanation.Matches)))
	width := len(fmt.Sprintf("%d", explanation.Matches[len(explanation.Matches)-1].LineNumber))
	for _, match := range explanation.Matches {
		builder.WriteString(fmt.Sprintf("%*d│ %s    [%s]\n",
			width, match.LineNumber, match.LineText, strings.Join(match.Signatures, ", ")))
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
