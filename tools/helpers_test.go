package tools

import (
	"io"
	"log/slog"
	"testing"

	"github.com/lexandro/useclient-mcp/classify"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClassifier(t *testing.T) *classify.Classifier {
	t.Helper()
	c, err := classify.New(classify.Options{
		Marker:       classify.DefaultMarker,
		MarkerWindow: classify.DefaultMarkerWindow,
		Signatures:   classify.DefaultSignatures,
	})
	if err != nil {
		t.Fatalf("failed to create classifier: %v", err)
	}
	return c
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("expected a result with content")
	}
	return result.Content[0].(*mcp.TextContent).Text
}
