// Package config resolves scan settings.
//
// Settings are layered, lowest precedence first:
//  1. built-in defaults
//  2. .useclient.yaml in the scan root (or the file given by --config)
//  3. USECLIENT_* environment variables
//  4. command-line flags
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lexandro/useclient-mcp/classify"
	"github.com/lexandro/useclient-mcp/ignore"
	"github.com/lexandro/useclient-mcp/report"
	"github.com/lexandro/useclient-mcp/scan"
)

// ErrInvalidRoot is returned when the scan root is missing or not a directory.
var ErrInvalidRoot = errors.New("invalid root directory")

// FileName is the config file looked up in the scan root.
const FileName = ".useclient.yaml"

// EnvPrefix prefixes environment variable overrides, e.g. USECLIENT_MARKER.
const EnvPrefix = "USECLIENT"

// Config holds every recognized option.
type Config struct {
	Root            string   `mapstructure:"root"`
	Extensions      []string `mapstructure:"extensions"`
	Exclusions      []string `mapstructure:"exclusions"`
	ExcludeGlobs    []string `mapstructure:"exclude_globs"`
	Marker          string   `mapstructure:"marker"`
	MarkerWindow    int      `mapstructure:"marker_window"`
	Signatures      []string `mapstructure:"signatures"`
	ExtraSignatures []string `mapstructure:"extra_signatures"`
	Gitignore       bool     `mapstructure:"gitignore"`
	MaxFileSize     int64    `mapstructure:"max_file_size"`
	Workers         int      `mapstructure:"workers"`
	Format          string   `mapstructure:"format"`
	SyncInterval    int      `mapstructure:"sync_interval"`

	// ConfigFile is the file that was read, empty if none.
	ConfigFile string `mapstructure:"-"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"ext":             "extensions",
	"exclude":         "exclusions",
	"exclude-glob":    "exclude_globs",
	"marker":          "marker",
	"marker-window":   "marker_window",
	"signature":       "signatures",
	"extra-signature": "extra_signatures",
	"gitignore":       "gitignore",
	"max-file-size":   "max_file_size",
	"workers":         "workers",
	"format":          "format",
	"sync-interval":   "sync_interval",
}

// RegisterFlags adds the scan option flags to a flag set. Defaults are not
// set on the flags themselves so that unset flags fall through to the config
// file and environment.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringSlice("ext", nil, "Candidate file extensions (default .tsx,.ts,.jsx,.js)")
	flags.StringSlice("exclude", nil, "Directory path substrings to prune (default node_modules,.next)")
	flags.StringSlice("exclude-glob", nil, "Extra doublestar glob to exclude (repeatable)")
	flags.String("marker", "", "Directive token that marks a client component (default \"use client\")")
	flags.Int("marker-window", 0, "Leading characters searched for the marker (default 500)")
	flags.StringSlice("signature", nil, "Replace the client-only signature set (regular expressions, repeatable)")
	flags.StringSlice("extra-signature", nil, "Append to the client-only signature set (repeatable)")
	flags.Bool("gitignore", false, "Also skip paths matched by the root .gitignore")
	flags.Int64("max-file-size", 0, "Skip files larger than this many bytes as read errors (0 = no limit)")
	flags.Int("workers", 0, "Number of classification workers (default 8)")
	flags.String("format", "", "Report format: text|json (default text)")
	flags.Int("sync-interval", 0, "Seconds between index consistency checks in serve mode (0 disables)")
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	Root       string         // scan root; empty means $USECLIENT_ROOT, then the working directory
	ConfigFile string         // explicit config file; empty means <root>/.useclient.yaml if present
	Flags      *pflag.FlagSet // flags registered with RegisterFlags; may be nil
}

// Load resolves and validates the configuration.
func Load(options LoadOptions) (*Config, error) {
	root, err := resolveRoot(options.Root)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if options.ConfigFile != "" {
		v.SetConfigFile(options.ConfigFile)
	} else {
		v.SetConfigFile(filepath.Join(root, FileName))
	}
	v.SetConfigType("yaml")

	if options.Flags != nil {
		for flagName, key := range flagKeys {
			if f := options.Flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", flagName, err)
				}
			}
		}
	}

	configFile := ""
	if err := v.ReadInConfig(); err != nil {
		// The implicit root config file is optional; an explicit one is not.
		if options.ConfigFile != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		configFile = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Root = root
	cfg.ConfigFile = configFile

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// resolveRoot makes root absolute and checks that it is an existing directory.
func resolveRoot(root string) (string, error) {
	if root == "" {
		root = os.Getenv(EnvPrefix + "_ROOT")
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, absRoot, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, absRoot)
	}
	return absRoot, nil
}

// Validate checks for configuration errors that must stop the run before traversal.
func (c *Config) Validate() error {
	if c.Marker == "" {
		return fmt.Errorf("marker must not be empty")
	}
	if c.MarkerWindow <= 0 {
		return fmt.Errorf("marker_window must be positive, got %d", c.MarkerWindow)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	if len(c.AllSignatures()) == 0 {
		return fmt.Errorf("signature set must not be empty")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.SyncInterval < 0 {
		return fmt.Errorf("sync_interval must not be negative, got %d", c.SyncInterval)
	}
	if bad, ok := ignore.ValidateGlobs(c.ExcludeGlobs); !ok {
		return fmt.Errorf("invalid exclude glob %q", bad)
	}
	switch strings.ToLower(c.Format) {
	case report.FormatText, report.FormatJSON:
	default:
		return fmt.Errorf("format must be one of %s, got %q", strings.Join(report.Formats, ", "), c.Format)
	}
	if _, err := c.NewClassifier(); err != nil {
		return err
	}
	return nil
}

// AllSignatures returns the signature set followed by any extra signatures.
func (c *Config) AllSignatures() []string {
	all := make([]string, 0, len(c.Signatures)+len(c.ExtraSignatures))
	all = append(all, c.Signatures...)
	all = append(all, c.ExtraSignatures...)
	return all
}

// NewClassifier compiles the classifier described by the config.
func (c *Config) NewClassifier() (*classify.Classifier, error) {
	return classify.New(classify.Options{
		Marker:       c.Marker,
		MarkerWindow: c.MarkerWindow,
		Signatures:   c.AllSignatures(),
		MaxFileSize:  c.MaxFileSize,
	})
}

// MatcherOptions maps the config onto ignore matcher options. Defaults are
// already applied, so an empty exclusion list here disables exclusions.
func (c *Config) MatcherOptions() ignore.MatcherOptions {
	exclusions := c.Exclusions
	if exclusions == nil {
		exclusions = []string{}
	}
	return ignore.MatcherOptions{
		RootDir:      c.Root,
		Exclusions:   exclusions,
		Extensions:   c.Extensions,
		ExcludeGlobs: c.ExcludeGlobs,
		UseGitignore: c.Gitignore,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("extensions", ignore.DefaultExtensions)
	v.SetDefault("exclusions", ignore.DefaultExclusions)
	v.SetDefault("exclude_globs", []string{})
	v.SetDefault("marker", classify.DefaultMarker)
	v.SetDefault("marker_window", classify.DefaultMarkerWindow)
	v.SetDefault("signatures", classify.DefaultSignatures)
	v.SetDefault("extra_signatures", []string{})
	v.SetDefault("gitignore", false)
	v.SetDefault("max_file_size", classify.DefaultMaxFileSize)
	v.SetDefault("workers", scan.DefaultWorkers)
	v.SetDefault("format", report.FormatText)
	v.SetDefault("sync_interval", 0)
}
