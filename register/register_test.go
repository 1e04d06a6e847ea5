package register

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func Test_DeriveServerName(t *testing.T) {
	tests := []struct {
		name       string
		binaryPath string
		want       string
	}{
		{"strip -mcp suffix", "rest-api-mcp", "rest-api"},
		{"strip .exe and -mcp", "rest-api-mcp.exe", "rest-api"},
		{"no -mcp suffix passthrough", "myserver", "myserver"},
		{"only .exe suffix", "myserver.exe", "myserver"},
		{"useclient-mcp", "useclient-mcp", "useclient"},
		{"useclient-mcp.exe", "useclient-mcp.exe", "useclient"},
		{"full path stripped to base", "/usr/local/bin/rest-api-mcp", "rest-api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveServerName(tt.binaryPath)
			if got != tt.want {
				t.Errorf("DeriveServerName(%q) = %q, want %q", tt.binaryPath, got, tt.want)
			}
		})
	}
}

func Test_ParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		dashAt   int
		wantErr  bool
		wantOpts Options
	}{
		{"project default dir", []string{"project"}, -1, false, Options{Scope: "project", Directory: "."}},
		{"project with dir", []string{"project", "web"}, -1, false, Options{Scope: "project", Directory: "web"}},
		{"project with forwarded args", []string{"project", "web", "--gitignore", "--workers=2"}, 2, false,
			Options{Scope: "project", Directory: "web", ServerArgs: []string{"--gitignore", "--workers=2"}}},
		{"user with forwarded args", []string{"user", "--sync-interval=30"}, 1, false,
			Options{Scope: "user", Directory: ".", ServerArgs: []string{"--sync-interval=30"}}},
		{"no scope", nil, -1, true, Options{}},
		{"unknown scope", []string{"global"}, -1, true, Options{}},
		{"user with directory", []string{"user", "web"}, -1, true, Options{}},
		{"project with two dirs", []string{"project", "a", "b"}, -1, true, Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs("useclient", tt.args, tt.dashAt)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseArgs(%v) expected error, got %+v", tt.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs(%v) error: %v", tt.args, err)
			}
			if got.ServerName != "useclient" || got.Scope != tt.wantOpts.Scope || got.Directory != tt.wantOpts.Directory {
				t.Errorf("ParseArgs(%v) = %+v, want %+v", tt.args, got, tt.wantOpts)
			}
			if !sliceEqual(got.ServerArgs, tt.wantOpts.ServerArgs) {
				t.Errorf("ParseArgs(%v) server args = %v, want %v", tt.args, got.ServerArgs, tt.wantOpts.ServerArgs)
			}
		})
	}
}

func Test_ParseArgs_UnknownScopeIsSentinel(t *testing.T) {
	_, err := ParseArgs("useclient", []string{"global"}, -1)
	if !errors.Is(err, ErrUnknownScope) {
		t.Errorf("expected ErrUnknownScope, got %v", err)
	}
}

func Test_Run_ProjectScope(t *testing.T) {
	dir := t.TempDir()

	configPath, err := Run(Options{
		ServerName: "useclient",
		Scope:      ScopeProject,
		Directory:  dir,
		ServerArgs: []string{"--gitignore"},
		BinaryPath: "/usr/local/bin/useclient-mcp",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if configPath != filepath.Join(dir, ".mcp.json") {
		t.Errorf("configPath = %q, want %q", configPath, filepath.Join(dir, ".mcp.json"))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	var config struct {
		MCPServers map[string]mcpServerEntry `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parsing config: %v", err)
	}
	entry, ok := config.MCPServers["useclient"]
	if !ok {
		t.Fatal("useclient entry not found")
	}
	if runtime.GOOS != "windows" && !sliceEqual(entry.Args, []string{"serve", "--gitignore"}) {
		t.Errorf("args = %v, want [serve --gitignore]", entry.Args)
	}
}

func Test_Run_UnknownScope(t *testing.T) {
	if _, err := Run(Options{ServerName: "useclient", Scope: "global"}); !errors.Is(err, ErrUnknownScope) {
		t.Errorf("expected ErrUnknownScope, got %v", err)
	}
}

func Test_writeConfig_CreatesNewFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	entry := mcpServerEntry{Command: "/usr/bin/myserver", Args: []string{"serve", "--gitignore"}}
	if err := writeConfig(configPath, "myserver", entry); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}

	var config map[string]interface{}
	if err := json.Unmarshal(data, &config); err != nil {
		t.Fatalf("parsing config: %v", err)
	}

	servers, ok := config["mcpServers"].(map[string]interface{})
	if !ok {
		t.Fatal("mcpServers not found or not an object")
	}

	serverEntry, ok := servers["myserver"].(map[string]interface{})
	if !ok {
		t.Fatal("myserver entry not found or not an object")
	}

	if serverEntry["command"] != "/usr/bin/myserver" {
		t.Errorf("command = %v, want /usr/bin/myserver", serverEntry["command"])
	}
}

func Test_writeConfig_UpdatesExistingEntry(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	// Write initial config with two entries
	initial := map[string]interface{}{
		"mcpServers": map[string]interface{}{
			"other-server": map[string]interface{}{
				"command": "/usr/bin/other",
			},
			"myserver": map[string]interface{}{
				"command": "/old/path",
			},
		},
	}
	initialData, _ := json.MarshalIndent(initial, "", "  ")
	os.WriteFile(configPath, initialData, 0644)

	// Update myserver entry
	entry := mcpServerEntry{Command: "/new/path", Args: []string{"--flag"}}
	if err := writeConfig(configPath, "myserver", entry); err != nil {
		t.Fatalf("writeConfig() error: %v", err)
	}

	data, _ := os.ReadFile(configPath)
	var config map[string]interface{}
	json.Unmarshal(data, &config)

	servers := config["mcpServers"].(map[string]interface{})

	// Other entry preserved
	otherEntry := servers["other-server"].(map[string]interface{})
	if otherEntry["command"] != "/usr/bin/other" {
		t.Errorf("other-server command changed unexpectedly: %v", otherEntry["command"])
	}

	// Updated entry
	myEntry := servers["myserver"].(map[string]interface{})
	if myEntry["command"] != "/new/path" {
		t.Errorf("myserver command = %v, want /new/path", myEntry["command"])
	}
}

func Test_writeConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".mcp.json")

	os.WriteFile(configPath, []byte("not valid json{{{"), 0644)

	entry := mcpServerEntry{Command: "/usr/bin/myserver"}
	err := writeConfig(configPath, "myserver", entry)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func Test_buildEntry(t *testing.T) {
	binaryPath := "/usr/local/bin/useclient-mcp"
	serverArgs := []string{"--workers", "4"}

	entry := buildEntry(binaryPath, serverArgs)

	if runtime.GOOS == "windows" {
		if entry.Command != "cmd" {
			t.Errorf("command = %q, want \"cmd\"", entry.Command)
		}
		if !sliceEqual(entry.Args, []string{"/C", binaryPath, "serve", "--workers", "4"}) {
			t.Errorf("args = %v, want [/C %s serve --workers 4]", entry.Args, binaryPath)
		}
	} else {
		if entry.Command != binaryPath {
			t.Errorf("command = %q, want %q", entry.Command, binaryPath)
		}
		if !sliceEqual(entry.Args, []string{"serve", "--workers", "4"}) {
			t.Errorf("args = %v, want [serve --workers 4]", entry.Args)
		}
	}
}

func Test_buildEntry_NoArgs(t *testing.T) {
	binaryPath := "/usr/local/bin/useclient-mcp"

	entry := buildEntry(binaryPath, nil)

	if runtime.GOOS == "windows" {
		if len(entry.Args) != 3 || entry.Args[0] != "/C" || entry.Args[1] != binaryPath || entry.Args[2] != "serve" {
			t.Errorf("args = %v, want [/C %s serve]", entry.Args, binaryPath)
		}
	} else if !sliceEqual(entry.Args, []string{"serve"}) {
		t.Errorf("args = %v, want [serve]", entry.Args)
	}
}

func Test_resolveConfigPath_Project(t *testing.T) {
	got, err := resolveConfigPath("project", ".")
	if err != nil {
		t.Fatalf("resolveConfigPath() error: %v", err)
	}

	absDir, _ := filepath.Abs(".")
	want := filepath.Join(absDir, ".mcp.json")
	if got != want {
		t.Errorf("resolveConfigPath(project, .) = %q, want %q", got, want)
	}
}

func Test_resolveConfigPath_User(t *testing.T) {
	got, err := resolveConfigPath("user", "")
	if err != nil {
		t.Fatalf("resolveConfigPath() error: %v", err)
	}

	homeDir, _ := os.UserHomeDir()
	want := filepath.Join(homeDir, ".claude.json")
	if got != want {
		t.Errorf("resolveConfigPath(user, ) = %q, want %q", got, want)
	}
}

func sliceEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
