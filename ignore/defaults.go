package ignore

// DefaultExclusions are directory path substrings that prune traversal:
// the package dependency cache and the framework build output.
var DefaultExclusions = []string{
	"node_modules",
	".next",
}

// DefaultExtensions are the component source suffixes inspected by default.
var DefaultExtensions = []string{
	".tsx",
	".ts",
	".jsx",
	".js",
}
