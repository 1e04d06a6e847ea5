package classify

import "strings"

// LineMatch is a line containing at least one signature match.
type LineMatch struct {
	LineNumber int
	LineText   string
	Signatures []string // every signature that matched this line, in set order
}

// Explanation describes why a file received its verdict.
type Explanation struct {
	Result
	MarkerFound bool
	Matches     []LineMatch
}

// Explain classifies content and collects every line that matches a signature.
// Matches are collected even for marked files so callers can show what the
// marker is covering.
func (c *Classifier) Explain(content string) Explanation {
	explanation := Explanation{
		Result:      c.Classify(content),
		MarkerFound: c.HasMarker(content),
	}

	for lineIdx, line := range strings.Split(content, "\n") {
		var matched []string
		for _, sig := range c.signatures {
			if sig.re.MatchString(line) {
				matched = append(matched, sig.source)
			}
		}
		if len(matched) == 0 {
			continue
		}
		explanation.Matches = append(explanation.Matches, LineMatch{
			LineNumber: lineIdx + 1,
			LineText:   line,
			Signatures: matched,
		})
	}
	return explanation
}
