package language

import (
	"path/filepath"
	"strings"
)

// ExtensionToLanguage maps component source extensions (without dot) to language names.
var ExtensionToLanguage = map[string]string{
	"js":     "JavaScript",
	"mjs":    "JavaScript",
	"cjs":    "JavaScript",
	"jsx":    "JavaScript (JSX)",
	"ts":     "TypeScript",
	"mts":    "TypeScript",
	"cts":    "TypeScript",
	"tsx":    "TypeScript (JSX)",
	"vue":    "Vue",
	"svelte": "Svelte",
	"mdx":    "MDX",
}

// DetectLanguage returns the language for a file path based on its extension.
// Returns "Unknown" if the extension is not recognized.
func DetectLanguage(filePath string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if lang, ok := ExtensionToLanguage[ext]; ok {
		return lang
	}
	return "Unknown"
}

