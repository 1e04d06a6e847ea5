package server

import (
	"github.com/lexandro/useclient-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Name and Version identify the MCP server implementation.
const (
	Name    = "useclient-mcp"
	Version = "0.1.0"
)

// Handlers groups the tool handlers exposed by the server.
type Handlers struct {
	Scan   *tools.ScanHandler
	Files  *tools.FilesHandler
	Check  *tools.CheckHandler
	Search *tools.SearchHandler
	Status *tools.StatusHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(handlers Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    Name,
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server keeps a live classification of every React component file in the project and reports which ones need the "use client" directive.

- Use useclient_files with findingsOnly to list files that use client-only APIs (hooks, event handlers, createContext) without the directive
- Use useclient_check to see why a single file was flagged, with every matching line
- Use useclient_search to find usages of a client-only API across the scanned sources
- Use useclient_scan to force a full rescan and get the plain report
- The classification updates automatically when files change (via filesystem watcher)`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "useclient_scan",
		Description: `Rescan the whole project and return the report of files needing 'use client'.

The text format prints a header followed by one absolute path per finding.
The json format also lists the matched signature, its line, and unreadable files.`,
	}, handlers.Scan.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "useclient_files",
		Description: `List scanned component files by glob pattern with their verdict.

Pattern examples:
  - "app/**/*.tsx" - TSX files under app/
  - "**/components/**" - anything in a components directory
  - "" - every scanned file

Set findingsOnly to list only files that need the directive.`,
	}, handlers.Files.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "useclient_check",
		Description: `Classify one file (filePath relative to the project root) or inline source (content). Shows whether the marker was found in the leading window, the first matching signature, and every line that matches a client-only signature.`,
	}, handlers.Check.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "useclient_search",
		Description: `Search scanned component sources using full-text indexed search.

Query formats:
  - Plain text: word-level matching (e.g., "useEffect")
  - "quoted text": exact phrase matching (e.g., "\"use client\"")
  - /regex/: regular expression matching against single words, case-insensitive (e.g., "/on[A-Z]\w+/")

Filtering:
  - fileGlob: glob pattern over relative paths (e.g., "app/**/*.tsx")
  - findingsOnly: only files that need the directive`,
	}, handlers.Search.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "useclient_status",
		Description: "Show scan status: file counts per verdict, read errors, languages, memory usage, and uptime.",
	}, handlers.Status.Handle)

	return mcpServer
}
