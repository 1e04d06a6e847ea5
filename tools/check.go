package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lexandro/useclient-mcp/classify"
	"github.com/lexandro/useclient-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CheckArgs defines the input parameters for the useclient_check tool.
type CheckArgs struct {
	FilePath string `json:"filePath,omitempty" jsonschema:"Path of the file to check, relative to the project root"`
	Content  string `json:"content,omitempty" jsonschema:"Source text to check instead of a file"`
}

// CheckHandler holds the dependencies for the check tool.
type CheckHandler struct {
	Classifier   *classify.Classifier
	ContentIndex *index.ContentIndex
	RootDir      string
	Logger       *slog.Logger
}

// Handle processes a useclient_check request. Indexed content is used when
// available; otherwise the file is read from disk.
func (h *CheckHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args CheckArgs) (*mcp.CallToolResult, any, error) {
	if args.FilePath == "" && args.Content == "" {
		h.Logger.Warn("useclient_check called without filePath or content")
		return errorResult("Error: filePath or content parameter is required"), nil, nil
	}

	label := "<content>"
	content := args.Content
	if args.FilePath != "" {
		label = filepath.ToSlash(args.FilePath)
		var err error
		content, err = h.loadContent(args.FilePath)
		if err != nil {
			h.Logger.Info("useclient_check unreadable file", "filePath", args.FilePath, "error", err)
			return errorResult(fmt.Sprintf("Cannot read %s: %v", label, err)), nil, nil
		}
	}

	explanation := h.Classifier.Explain(content)
	h.Logger.Info("useclient_check",
		"filePath", label,
		"verdict", explanation.Verdict,
		"matchingLines", len(explanation.Matches),
	)

	return textResult(FormatExplanation(label, h.Classifier.Marker(), explanation)), nil, nil
}

func (h *CheckHandler) loadContent(filePath string) (string, error) {
	if h.ContentIndex != nil {
		if content, ok := h.ContentIndex.GetFileContent(filePath); ok {
			return content, nil
		}
	}

	path := filePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.RootDir, filepath.FromSlash(filePath))
	}
	if rel, err := filepath.Rel(h.RootDir, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path is outside the project root")
	}

	content, _, err := h.Classifier.ReadFile(path)
	return content, err
}
