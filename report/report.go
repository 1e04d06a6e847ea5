// Package report renders scan results for standard output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lexandro/useclient-mcp/scan"
)

// Header is always printed first in the text format, even with no findings.
const Header = "Files needing 'use client':"

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Formats lists the accepted values for the format option.
var Formats = []string{FormatText, FormatJSON}

// Write renders the report in the given format.
func Write(w io.Writer, format string, r *scan.Report) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown output format %q (must be one of %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteText writes the header followed by one finding path per line.
// Read errors are not part of this output.
func WriteText(w io.Writer, r *scan.Report) error {
	var builder strings.Builder
	builder.WriteString(Header)
	builder.WriteString("\n")
	for _, finding := range r.Findings {
		builder.WriteString(finding.Path)
		builder.WriteString("\n")
	}
	_, err := io.WriteString(w, builder.String())
	return err
}

type jsonFinding struct {
	Path         string `json:"path"`
	RelativePath string `json:"relativePath"`
	Signature    string `json:"signature"`
	Line         int    `json:"line"`
}

type jsonError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type jsonReport struct {
	Root     string        `json:"root"`
	Findings []jsonFinding `json:"findings"`
	Errors   []jsonError   `json:"errors"`
	Scanned  int           `json:"scanned"`
}

// WriteJSON writes the report as an indented JSON document.
func WriteJSON(w io.Writer, r *scan.Report) error {
	doc := jsonReport{
		Root:     r.Root,
		Findings: make([]jsonFinding, 0, len(r.Findings)),
		Errors:   make([]jsonError, 0, len(r.Errors)),
		Scanned:  r.Scanned,
	}
	for _, f := range r.Findings {
		doc.Findings = append(doc.Findings, jsonFinding{
			Path:         f.Path,
			RelativePath: f.RelativePath,
			Signature:    f.Signature,
			Line:         f.Line,
		})
	}
	for _, e := range r.Errors {
		doc.Errors = append(doc.Errors, jsonError{Path: e.Path, Error: e.Err.Error()})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
