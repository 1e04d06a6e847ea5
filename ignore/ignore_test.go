package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func Test_Matcher_DefaultExclusions_NodeModules(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if !matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "node_modules")) {
		t.Error("expected node_modules directory to be skipped")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "node_modules", "react", "index.js")) {
		t.Error("expected files under node_modules to be ignored")
	}
}

func Test_Matcher_DefaultExclusions_NextBuildOutput(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if !matcher.ShouldIgnoreDir(filepath.Join(tmpDir, ".next", "server")) {
		t.Error("expected .next build output to be skipped")
	}
}

func Test_Matcher_Exclusions_AreSubstrings(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	// ".next" is a substring of "app.nextgen", so the directory is pruned.
	if !matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "app.nextgen")) {
		t.Error("expected substring match to prune app.nextgen")
	}
	if !matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "packages", "ui", "node_modules_cache")) {
		t.Error("expected substring match to prune node_modules_cache")
	}
	if matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "app", "components")) {
		t.Error("expected app/components to be traversed")
	}
}

func Test_Matcher_RootIsNeverSkipped(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "node_modules")
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if matcher.ShouldIgnoreDir(tmpDir) {
		t.Error("expected root directory to never be skipped")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "page.tsx")) {
		t.Error("expected exclusion terms in the root path itself to be ignored")
	}
}

func Test_Matcher_ExtensionFilter(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	tests := []struct {
		name   string
		ignore bool
	}{
		{"page.tsx", false},
		{"util.ts", false},
		{"Button.jsx", false},
		{"index.js", false},
		{"notes.md", true},
		{"styles.css", true},
		{"Page.TSX", true},
		{"data.json", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.ShouldIgnore(filepath.Join(tmpDir, "app", tt.name))
			if got != tt.ignore {
				t.Errorf("ShouldIgnore(%s) = %v, want %v", tt.name, got, tt.ignore)
			}
		})
	}
}

func Test_Matcher_CustomExtensionsAndExclusions(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{
		RootDir:    tmpDir,
		Extensions: []string{".vue"},
		Exclusions: []string{"dist"},
	})

	if matcher.ShouldIgnore(filepath.Join(tmpDir, "src", "App.vue")) {
		t.Error("expected .vue to be a candidate with custom extensions")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "src", "main.ts")) {
		t.Error("expected .ts to be filtered with custom extensions")
	}
	if matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "node_modules")) {
		t.Error("expected node_modules to be traversed when exclusions are overridden")
	}
	if !matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "dist")) {
		t.Error("expected dist to be pruned")
	}
}

func Test_Matcher_EmptyExclusionsDisablePruning(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir, Exclusions: []string{}})

	if matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "node_modules")) {
		t.Error("expected empty exclusion set to traverse node_modules")
	}
}

func Test_Matcher_ExcludeGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{
		RootDir:      tmpDir,
		ExcludeGlobs: []string{"**/*.test.tsx", "storybook/**"},
	})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "app", "page.test.tsx")) {
		t.Error("expected **/*.test.tsx to be excluded")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "storybook", "Button.stories.tsx")) {
		t.Error("expected storybook/** to be excluded")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "app", "page.tsx")) {
		t.Error("expected app/page.tsx to be a candidate")
	}
}

func Test_Matcher_GitignoreDisabledByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("generated/\n"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, "generated"), 0755)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir})

	if matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "generated")) {
		t.Error("expected .gitignore to be ignored unless enabled")
	}
}

func Test_Matcher_GitignoreIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("*.gen.ts\ngenerated/\n"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, "generated"), 0755)

	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir, UseGitignore: true})

	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "api.gen.ts")) {
		t.Error("expected .gitignore pattern to ignore *.gen.ts")
	}
	if !matcher.ShouldIgnoreDir(filepath.Join(tmpDir, "generated")) {
		t.Error("expected .gitignore pattern to skip generated/")
	}
	if !matcher.ShouldIgnore(filepath.Join(tmpDir, "generated", "client.ts")) {
		t.Error("expected files under generated/ to be ignored")
	}
	if matcher.ShouldIgnore(filepath.Join(tmpDir, "app", "page.tsx")) {
		t.Error("expected app/page.tsx to be a candidate")
	}
}

func Test_Matcher_Reload(t *testing.T) {
	tmpDir := t.TempDir()
	matcher := NewMatcher(MatcherOptions{RootDir: tmpDir, UseGitignore: true})

	target := filepath.Join(tmpDir, "legacy.ts")
	if matcher.ShouldIgnore(target) {
		t.Fatal("expected legacy.ts to be a candidate before .gitignore exists")
	}

	os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte("legacy.ts\n"), 0644)
	matcher.Reload()

	if !matcher.ShouldIgnore(target) {
		t.Error("expected legacy.ts to be ignored after reload")
	}
}

func Test_ValidateGlobs(t *testing.T) {
	if bad, ok := ValidateGlobs([]string{"**/*.ts", "src/*"}); !ok {
		t.Errorf("expected valid patterns, got bad %q", bad)
	}
	if bad, ok := ValidateGlobs([]string{"src/[a-"}); ok || bad != "src/[a-" {
		t.Errorf("expected src/[a- to be reported invalid, got %q %v", bad, ok)
	}
}
