package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexandro/useclient-mcp/report"
	"github.com/lexandro/useclient-mcp/scan"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ScanArgs defines the input parameters for the useclient_scan tool.
type ScanArgs struct {
	Format string `json:"format,omitempty" jsonschema:"Report format: text (default) or json"`
}

// ScanFunc rescans the project and refreshes the live index.
// It is provided by the main package.
type ScanFunc func(ctx context.Context) (*scan.Report, error)

// ScanHandler holds the dependencies for the scan tool.
type ScanHandler struct {
	DoScan ScanFunc
	Logger *slog.Logger
}

// Handle processes a useclient_scan request.
func (h *ScanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ScanArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("useclient_scan started", "format", args.Format)

	r, err := h.DoScan(ctx)
	if err != nil {
		h.Logger.Error("useclient_scan failed", "error", err)
		return errorResult(fmt.Sprintf("Scan error: %v", err)), nil, nil
	}

	var builder strings.Builder
	if err := report.Write(&builder, args.Format, r); err != nil {
		h.Logger.Warn("useclient_scan bad format", "format", args.Format, "error", err)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	h.Logger.Info("useclient_scan complete",
		"scanned", r.Scanned,
		"findings", len(r.Findings),
		"errors", len(r.Errors),
		"elapsed", r.Duration,
	)
	return textResult(builder.String()), nil, nil
}
