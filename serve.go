package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/lexandro/useclient-mcp/scan"
	"github.com/lexandro/useclient-mcp/server"
	"github.com/lexandro/useclient-mcp/tools"
	"github.com/lexandro/useclient-mcp/watcher"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [root]",
		Short: "Run an MCP server on stdio with a live classification of the project",
		Long: `Scan the project, keep the classification current with a file watcher, and
serve the useclient_* tools over MCP on stdio. Logs go to
<root>/useclient-mcp.log unless --log-file is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}
}

func runServe(cmd *cobra.Command, args []string, opts *globalOptions) error {
	startTime := time.Now()

	cfg, err := loadConfig(cmd, args, opts)
	if err != nil {
		return err
	}

	logFile := opts.logFile
	if logFile == "" {
		logFile = defaultServeLogFile(cfg.Root)
	}
	level := opts.logLevel
	if !cmd.Flags().Changed("log-level") {
		level = "info"
	}
	logger := setupLogger(level, logFile, cmd.ErrOrStderr())

	logger.Info("starting useclient-mcp",
		"root", cfg.Root,
		"configFile", cfg.ConfigFile,
		"workers", cfg.Workers,
		"gitignore", cfg.Gitignore,
		"syncInterval", cfg.SyncInterval,
	)

	ws, err := newWorkspace(cfg, logger)
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initial, err := ws.performIndexing(ctx)
	if err != nil {
		return err
	}
	logger.Info("initial scan complete",
		"files", initial.Scanned,
		"findings", len(initial.Findings),
		"errors", len(initial.Errors),
		"duration", time.Since(startTime),
	)

	fileWatcher, err := watcher.NewWatcher(cfg.Root, ws.matcher, logger)
	if err != nil {
		logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
	} else {
		go fileWatcher.Start()
		go ws.handleWatcherEvents(fileWatcher)
		defer fileWatcher.Close()
	}

	if cfg.SyncInterval > 0 {
		go ws.runPeriodicSync(cfg.SyncInterval, ctx.Done())
	}

	mcpServer := server.Setup(server.Handlers{
		Scan: &tools.ScanHandler{
			DoScan: func(ctx context.Context) (*scan.Report, error) {
				return ws.rescan(ctx)
			},
			Logger: logger,
		},
		Files: &tools.FilesHandler{FileIndex: ws.fileIndex, Logger: logger},
		Check: &tools.CheckHandler{
			Classifier:   ws.classifier,
			ContentIndex: ws.contentIndex,
			RootDir:      cfg.Root,
			Logger:       logger,
		},
		Search: &tools.SearchHandler{ContentIndex: ws.contentIndex, Logger: logger},
		Status: &tools.StatusHandler{
			FileIndex:    ws.fileIndex,
			ContentIndex: ws.contentIndex,
			Classifier:   ws.classifier,
			Matcher:      ws.matcher,
			StartTime:    startTime,
			Logger:       logger,
		},
	})

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		logger.Error("MCP server error", "error", err)
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}
