package index

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/useclient-mcp/classify"
)

// ContentIndex provides full-text search over scanned component sources using
// an in-memory Bleve index. Each document also carries the file's verdict so
// searches can be narrowed to findings.
type ContentIndex struct {
	mu    sync.RWMutex
	index bleve.Index
	// fileContents stores raw content for line-level result extraction
	fileContents map[string]string // key: relative path, value: file content
}

// NewContentIndex creates a new in-memory Bleve content index.
func NewContentIndex() (*ContentIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}

	return &ContentIndex{
		index:        bleveIndex,
		fileContents: make(map[string]string),
	}, nil
}

// bleveDocument is the document structure stored in Bleve.
type bleveDocument struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	Language string `json:"language"`
	Verdict  string `json:"verdict"`
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Store = false // content is kept in fileContents
	contentFieldMapping.IncludeInAll = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	pathFieldMapping := bleve.NewTextFieldMapping()
	pathFieldMapping.Store = true
	pathFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathFieldMapping)

	langFieldMapping := bleve.NewKeywordFieldMapping()
	langFieldMapping.Store = true
	langFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("language", langFieldMapping)

	verdictFieldMapping := bleve.NewKeywordFieldMapping()
	verdictFieldMapping.Store = true
	verdictFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt("verdict", verdictFieldMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexFile adds or updates a file's content and verdict.
func (ci *ContentIndex) IndexFile(relativePath string, content string, language string, verdict classify.Verdict) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	doc := bleveDocument{
		Content:  content,
		Path:     relativePath,
		Language: language,
		Verdict:  verdict.String(),
	}

	ci.fileContents[relativePath] = content

	if err := ci.index.Index(relativePath, doc); err != nil {
		return fmt.Errorf("indexing file %s: %w", relativePath, err)
	}
	return nil
}

// RemoveFile removes a file from the search index.
func (ci *ContentIndex) RemoveFile(relativePath string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	delete(ci.fileContents, relativePath)
	if err := ci.index.Delete(relativePath); err != nil {
		return fmt.Errorf("removing file %s from index: %w", relativePath, err)
	}
	return nil
}

// ContentSearchResult holds the matching lines of one file.
type ContentSearchResult struct {
	RelativePath string
	Matches      []LineMatch
}

// LineMatch represents a single line match within a file.
type LineMatch struct {
	LineNumber    int
	LineText      string
	ContextBefore []string
	ContextAfter  []string
}

// SearchOptions configures a content search.
type SearchOptions struct {
	Query        string
	FileGlob     string // doublestar pattern over relative paths
	FindingsOnly bool   // restrict to files that need the marker
	MaxResults   int
	ContextLines int
}

// Search performs a full-text search across all indexed files.
// Query format:
//   - Plain text: match query (word-level matching)
//   - "quoted text": phrase query (exact phrase match)
//   - /regex/: regexp query
func (ci *ContentIndex) Search(options SearchOptions) ([]ContentSearchResult, int, error) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	if options.ContextLines < 0 {
		options.ContextLines = 0
	}
	fileGlob := strings.ReplaceAll(options.FileGlob, "\\", "/")
	if fileGlob != "" && !doublestar.ValidatePattern(fileGlob) {
		return nil, 0, fmt.Errorf("invalid glob pattern: %s", fileGlob)
	}

	lineMatcher, err := buildLineMatcher(options.Query)
	if err != nil {
		return nil, 0, err
	}

	bleveQuery := buildQuery(options.Query)
	if options.FindingsOnly {
		verdictQuery := bleve.NewTermQuery(classify.NeedsMarker.String())
		verdictQuery.SetField("verdict")
		bleveQuery = bleve.NewConjunctionQuery(bleveQuery, verdictQuery)
	}

	searchRequest := bleve.NewSearchRequest(bleveQuery)
	searchRequest.Size = options.MaxResults * 5 // over-fetch: hits are filtered by glob and grouped by file
	searchRequest.Fields = []string{"path", "language", "verdict"}

	searchResults, err := ci.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	var results []ContentSearchResult
	totalMatches := 0

	for _, hit := range searchResults.Hits {
		relativePath := hit.ID
		content, ok := ci.fileContents[relativePath]
		if !ok {
			continue
		}
		if fileGlob != "" {
			if matched, err := doublestar.Match(fileGlob, relativePath); err != nil || !matched {
				continue
			}
		}

		lineMatches := findMatchingLines(content, lineMatcher, options.ContextLines)
		if len(lineMatches) == 0 {
			continue
		}

		totalMatches += len(lineMatches)
		results = append(results, ContentSearchResult{RelativePath: relativePath, Matches: lineMatches})

		if len(results) >= options.MaxResults {
			break
		}
	}

	return results, totalMatches, nil
}

// buildQuery parses the query string into a Bleve query.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if pattern, ok := regexBody(queryString); ok {
		return bleve.NewRegexpQuery(lowerRegexLiterals(pattern))
	}
	if phrase, ok := phraseBody(queryString); ok {
		return bleve.NewMatchPhraseQuery(phrase)
	}
	return bleve.NewMatchQuery(queryString)
}

// buildLineMatcher returns a predicate used to pick matching lines out of a hit.
// Plain and phrase queries match case-insensitively as substrings.
func buildLineMatcher(queryString string) (func(string) bool, error) {
	queryString = strings.TrimSpace(queryString)

	if pattern, ok := regexBody(queryString); ok {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
		}
		return re.MatchString, nil
	}

	term := queryString
	if phrase, ok := phraseBody(queryString); ok {
		term = phrase
	}
	termLower := strings.ToLower(term)
	return func(line string) bool {
		return strings.Contains(strings.ToLower(line), termLower)
	}, nil
}

// lowerRegexLiterals lowercases a pattern so it can match the analyzer's
// lowercased terms. Escape sequences keep their case: \W and \w differ, as do
// the names inside \p{...}.
func lowerRegexLiterals(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch != '\\' || i+1 == len(pattern) {
			r, size := utf8.DecodeRuneInString(pattern[i:])
			b.WriteRune(unicode.ToLower(r))
			i += size - 1
			continue
		}

		next, size := utf8.DecodeRuneInString(pattern[i+1:])
		b.WriteByte(ch)
		b.WriteString(pattern[i+1 : i+1+size])
		i += size
		if next != 'p' && next != 'P' || i+1 == len(pattern) {
			continue
		}
		if pattern[i+1] != '{' {
			b.WriteByte(pattern[i+1])
			i++
			continue
		}
		end := strings.IndexByte(pattern[i+1:], '}')
		if end < 0 {
			continue
		}
		b.WriteString(pattern[i+1 : i+2+end])
		i += end + 1
	}
	return b.String()
}

func regexBody(queryString string) (string, bool) {
	if len(queryString) > 2 && strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") {
		return queryString[1 : len(queryString)-1], true
	}
	return "", false
}

func phraseBody(queryString string) (string, bool) {
	if len(queryString) > 2 && strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") {
		return queryString[1 : len(queryString)-1], true
	}
	return "", false
}

// findMatchingLines returns LineMatch entries with context for each matching line.
func findMatchingLines(content string, matches func(string) bool, contextLines int) []LineMatch {
	lines := strings.Split(content, "\n")

	var result []LineMatch
	for lineIdx, line := range lines {
		if !matches(line) {
			continue
		}

		match := LineMatch{
			LineNumber: lineIdx + 1,
			LineText:   line,
		}
		if contextLines > 0 {
			start := max(lineIdx-contextLines, 0)
			match.ContextBefore = append(match.ContextBefore, lines[start:lineIdx]...)

			end := min(lineIdx+contextLines+1, len(lines))
			match.ContextAfter = append(match.ContextAfter, lines[lineIdx+1:end]...)
		}
		result = append(result, match)
	}
	return result
}

// DocumentCount returns the number of documents in the Bleve index.
func (ci *ContentIndex) DocumentCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	count, _ := ci.index.DocCount()
	return count
}

// GetFileContent returns the raw content of an indexed file.
func (ci *ContentIndex) GetFileContent(relativePath string) (string, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()

	content, ok := ci.fileContents[strings.ReplaceAll(relativePath, "\\", "/")]
	return content, ok
}

// Close closes the Bleve index.
func (ci *ContentIndex) Close() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.index.Close()
}

// Clear removes all documents and recreates the index.
func (ci *ContentIndex) Clear() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.index.Close(); err != nil {
		return fmt.Errorf("closing old index: %w", err)
	}

	newIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating new index: %w", err)
	}

	ci.index = newIndex
	ci.fileContents = make(map[string]string)
	return nil
}
