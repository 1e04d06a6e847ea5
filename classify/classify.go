// Package classify decides whether a component source file needs the
// "use client" directive.
//
// The check is textual: the marker is searched for in a fixed-size leading
// window of the file, and signatures are matched anywhere in the content,
// including comments and string literals.
package classify

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/lexandro/useclient-mcp/language"
)

// ErrFileTooLarge is returned when a candidate exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// Verdict is the terminal state of a single file's classification.
type Verdict int

const (
	// Clean means no signature matched.
	Clean Verdict = iota
	// Marked means the marker was found in the leading window.
	Marked
	// NeedsMarker means a signature matched and the marker is missing.
	NeedsMarker
)

func (v Verdict) String() string {
	switch v {
	case Clean:
		return "clean"
	case Marked:
		return "marked"
	case NeedsMarker:
		return "needs-marker"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Result is the outcome of classifying one file's content.
type Result struct {
	Verdict   Verdict
	Signature string // first signature that matched, empty unless NeedsMarker
	Line      int    // 1-based line of the first match, 0 unless NeedsMarker
}

// NeedsMarker reports whether the result is a finding.
func (r Result) NeedsMarker() bool {
	return r.Verdict == NeedsMarker
}

// Options configures a Classifier.
type Options struct {
	Marker       string
	MarkerWindow int // in characters
	Signatures   []string
	MaxFileSize  int64 // bytes; 0 means no limit
}

type signature struct {
	source string
	re     *regexp.Regexp
}

// Classifier applies the marker and signature checks. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	marker      string
	window      int
	signatures  []signature
	maxFileSize int64
}

// New compiles the signature set and returns a Classifier.
func New(options Options) (*Classifier, error) {
	if options.Marker == "" {
		return nil, fmt.Errorf("marker must not be empty")
	}
	if options.MaxFileSize < 0 {
		return nil, fmt.Errorf("max file size must not be negative, got %d", options.MaxFileSize)
	}
	if options.MarkerWindow <= 0 {
		return nil, fmt.Errorf("marker window must be positive, got %d", options.MarkerWindow)
	}
	if len(options.Signatures) == 0 {
		return nil, fmt.Errorf("signature set must not be empty")
	}

	c := &Classifier{
		marker:      options.Marker,
		window:      options.MarkerWindow,
		signatures:  make([]signature, 0, len(options.Signatures)),
		maxFileSize: options.MaxFileSize,
	}

	for _, source := range options.Signatures {
		if source == "" {
			return nil, fmt.Errorf("empty signature in signature set")
		}
		re, err := regexp.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("compiling signature %q: %w", source, err)
		}
		c.signatures = append(c.signatures, signature{source: source, re: re})
	}
	return c, nil
}

// Marker returns the marker token searched for.
func (c *Classifier) Marker() string {
	return c.marker
}

// MarkerWindow returns the leading window size in characters.
func (c *Classifier) MarkerWindow() int {
	return c.window
}

// Signatures returns the signature sources in evaluation order.
func (c *Classifier) Signatures() []string {
	sources := make([]string, len(c.signatures))
	for i, sig := range c.signatures {
		sources[i] = sig.source
	}
	return sources
}

// Classify runs the marker check and, if it fails, the signature check.
func (c *Classifier) Classify(content string) Result {
	if c.HasMarker(content) {
		return Result{Verdict: Marked}
	}
	source, offset, ok := c.firstSignature(content)
	if !ok {
		return Result{Verdict: Clean}
	}
	return Result{
		Verdict:   NeedsMarker,
		Signature: source,
		Line:      lineAt(content, offset),
	}
}

// HasMarker reports whether the marker occurs within the leading window.
// A marker that straddles the window boundary is not recognized.
func (c *Classifier) HasMarker(content string) bool {
	return strings.Contains(leadingWindow(content, c.window), c.marker)
}

// firstSignature returns the first signature, in set order, that matches
// anywhere in content along with the byte offset of its leftmost match.
func (c *Classifier) firstSignature(content string) (string, int, bool) {
	for _, sig := range c.signatures {
		loc := sig.re.FindStringIndex(content)
		if loc != nil {
			return sig.source, loc[0], true
		}
	}
	return "", 0, false
}

// ReadFile opens path and returns its decoded text along with its file info.
func (c *Classifier) ReadFile(path string) (string, fs.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", nil, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", path)
	}
	if c.maxFileSize > 0 && info.Size() > c.maxFileSize {
		return "", nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, info.Size(), c.maxFileSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("reading: %w", err)
	}
	content, err := language.DecodeText(data)
	if err != nil {
		return "", nil, err
	}
	return content, info, nil
}

// leadingWindow returns the first n characters (runes) of content, or all of it if shorter.
func leadingWindow(content string, n int) string {
	count := 0
	for i := range content {
		if count == n {
			return content[:i]
		}
		count++
	}
	return content
}

// lineAt returns the 1-based line number containing byte offset.
func lineAt(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}
