package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/useclient-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the useclient_files tool.
type FilesArgs struct {
	Pattern      string `json:"pattern,omitempty" jsonschema:"Glob pattern over relative paths (e.g. app/**/*.tsx). Defaults to all files"`
	FindingsOnly bool   `json:"findingsOnly,omitempty" jsonschema:"If true return only files that need the use client directive"`
	NameOnly     bool   `json:"nameOnly,omitempty" jsonschema:"If true return only file paths without details"`
	MaxResults   int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler holds the dependencies for the files tool.
type FilesHandler struct {
	FileIndex *index.FileIndex
	Logger    *slog.Logger
}

// Handle processes a useclient_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	results, err := h.FileIndex.SearchByGlob(args.Pattern, args.MaxResults, args.FindingsOnly)
	if err != nil {
		h.Logger.Error("useclient_files failed", "pattern", args.Pattern, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("useclient_files",
		"pattern", args.Pattern,
		"findingsOnly", args.FindingsOnly,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	return textResult(FormatFileResults(results, args.NameOnly)), nil, nil
}
