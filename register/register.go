// Package register writes an MCP server entry for this binary into a client
// configuration file.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnknownScope is returned for a scope other than "project" or "user".
var ErrUnknownScope = errors.New(`unknown scope (must be "project" or "user")`)

// Scopes accepted by Run.
const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

type mcpServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Options describes one registration.
type Options struct {
	ServerName string
	Scope      string
	Directory  string   // project scope only; defaults to "."
	ServerArgs []string // appended after the serve subcommand
	BinaryPath string   // defaults to the running executable
}

// ParseArgs builds Options from "register" positional arguments. dashAt is the
// index of the first argument after "--", or -1 when there is none; anything
// from there on is forwarded to the server.
func ParseArgs(serverName string, args []string, dashAt int) (Options, error) {
	positional := args
	var forwarded []string
	if dashAt >= 0 && dashAt <= len(args) {
		positional = args[:dashAt]
		forwarded = args[dashAt:]
	}
	if len(positional) == 0 {
		return Options{}, fmt.Errorf("missing scope: %w", ErrUnknownScope)
	}

	options := Options{
		ServerName: serverName,
		Scope:      positional[0],
		Directory:  ".",
		ServerArgs: forwarded,
	}
	switch options.Scope {
	case ScopeProject:
		if len(positional) > 2 {
			return Options{}, fmt.Errorf("project scope takes at most one directory, got %d", len(positional)-1)
		}
		if len(positional) == 2 {
			options.Directory = positional[1]
		}
	case ScopeUser:
		if len(positional) > 1 {
			return Options{}, fmt.Errorf("user scope takes no directory")
		}
	default:
		return Options{}, fmt.Errorf("%q: %w", options.Scope, ErrUnknownScope)
	}
	return options, nil
}

// Run writes the server entry and returns the path of the file it updated.
func Run(options Options) (string, error) {
	if options.Scope != ScopeProject && options.Scope != ScopeUser {
		return "", fmt.Errorf("%q: %w", options.Scope, ErrUnknownScope)
	}

	binaryPath := options.BinaryPath
	if binaryPath == "" {
		var err error
		binaryPath, err = detectBinaryPath()
		if err != nil {
			return "", fmt.Errorf("detecting binary path: %w", err)
		}
	}

	configPath, err := resolveConfigPath(options.Scope, options.Directory)
	if err != nil {
		return "", fmt.Errorf("resolving config path: %w", err)
	}

	entry := buildEntry(binaryPath, options.ServerArgs)
	if err := writeConfig(configPath, options.ServerName, entry); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return configPath, nil
}

// DeriveServerName extracts a server name from a binary path by stripping .exe and -mcp suffixes.
func DeriveServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	name = strings.TrimSuffix(name, "-mcp")
	return name
}

func detectBinaryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

func resolveConfigPath(scope string, directory string) (string, error) {
	if scope == ScopeProject {
		if directory == "" {
			directory = "."
		}
		absDir, err := filepath.Abs(directory)
		if err != nil {
			return "", fmt.Errorf("resolving directory %s: %w", directory, err)
		}
		return filepath.Join(absDir, ".mcp.json"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude.json"), nil
}

// buildEntry launches the binary in serve mode with any forwarded arguments.
func buildEntry(binaryPath string, serverArgs []string) mcpServerEntry {
	args := append([]string{"serve"}, serverArgs...)
	if runtime.GOOS == "windows" {
		return mcpServerEntry{
			Command: "cmd",
			Args:    append([]string{"/C", binaryPath}, args...),
		}
	}
	return mcpServerEntry{
		Command: binaryPath,
		Args:    args,
	}
}

func writeConfig(configPath string, serverName string, entry mcpServerEntry) error {
	config := map[string]interface{}{
		"mcpServers": map[string]interface{}{},
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
	}

	servers, ok := config["mcpServers"]
	if !ok {
		servers = map[string]interface{}{}
		config["mcpServers"] = servers
	}

	serversMap, ok := servers.(map[string]interface{})
	if !ok {
		return fmt.Errorf("mcpServers in %s is not an object", configPath)
	}
	serversMap[serverName] = entry

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	output = append(output, '\n')

	// Write to a temp file in the same directory, then rename.
	configDir := filepath.Dir(configPath)
	tmpFile, err := os.CreateTemp(configDir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", configDir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(output); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, configPath, err)
	}

	return nil
}
