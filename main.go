package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexandro/useclient-mcp/config"
	"github.com/lexandro/useclient-mcp/ignore"
	"github.com/lexandro/useclient-mcp/register"
	"github.com/lexandro/useclient-mcp/report"
	"github.com/lexandro/useclient-mcp/scan"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	logLevel   string
	logFile    string
	configFile string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "useclient-mcp [root]",
		Short: "Find React components that need the 'use client' directive",
		Long: `Scan a project for component files that use client-only APIs (React hooks,
DOM event handlers, createContext) but do not start with the 'use client'
directive.

Without a subcommand the project is scanned once and the report is written to
standard output.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	persistent.StringVar(&opts.logFile, "log-file", "", "Log file path (default: stderr)")
	persistent.StringVar(&opts.configFile, "config", "", "Config file (default: <root>/"+config.FileName+" if present)")
	config.RegisterFlags(persistent)

	rootCmd.AddCommand(
		newScanCommand(opts),
		newServeCommand(opts),
		newRegisterCommand(),
	)
	return rootCmd
}

func newScanCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [root]",
		Short: "Scan a project once and print the files needing 'use client'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, opts)
		},
	}
}

func newRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "register project|user [directory] [-- server-args...]",
		Short: "Register this binary as an MCP server",
		Long: `Write an MCP server entry that runs "serve" into <directory>/.mcp.json
(project scope) or ~/.claude.json (user scope). Arguments after -- are passed
to the server.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverName := register.DeriveServerName(os.Args[0])
			options, err := register.ParseArgs(serverName, args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}
			configPath, err := register.Run(options)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %q in %s\n", serverName, configPath)
			return nil
		},
	}
}

// loadConfig resolves the configuration for a command taking an optional root argument.
func loadConfig(cmd *cobra.Command, args []string, opts *globalOptions) (*config.Config, error) {
	root := ""
	if len(args) > 0 {
		root = args[0]
	}
	return config.Load(config.LoadOptions{
		Root:       root,
		ConfigFile: opts.configFile,
		Flags:      cmd.Flags(),
	})
}

func runScan(cmd *cobra.Command, args []string, opts *globalOptions) error {
	logger := setupLogger(opts.logLevel, opts.logFile, cmd.ErrOrStderr())

	cfg, err := loadConfig(cmd, args, opts)
	if err != nil {
		return err
	}
	classifier, err := cfg.NewClassifier()
	if err != nil {
		return err
	}
	logger.Debug("scan configuration",
		"root", cfg.Root,
		"configFile", cfg.ConfigFile,
		"extensions", cfg.Extensions,
		"exclusions", cfg.Exclusions,
		"signatures", len(cfg.AllSignatures()),
	)

	scanner := &scan.Scanner{
		RootDir:    cfg.Root,
		Filter:     ignore.NewMatcher(cfg.MatcherOptions()),
		Classifier: classifier,
		Workers:    cfg.Workers,
		Logger:     logger,
	}
	r, err := scanner.Run(cmd.Context())
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), cfg.Format, r)
}

// setupLogger creates an slog.Logger writing to logFile, or to fallback when
// no file is given or it cannot be opened. Logs never go to stdout.
func setupLogger(level string, logFile string, fallback io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	writer := fallback
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(fallback, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}

// defaultServeLogFile is where serve mode logs when --log-file is not given,
// since stdio carries the MCP protocol.
func defaultServeLogFile(rootDir string) string {
	return filepath.Join(rootDir, "useclient-mcp.log")
}
