package language

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrNotText is returned when file content cannot be decoded as UTF-8 source text.
var ErrNotText = errors.New("content is not UTF-8 text")

// DecodeText converts raw file bytes into source text. NUL bytes are valid
// UTF-8 and are kept; only malformed sequences are rejected.
func DecodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid UTF-8 sequence", ErrNotText)
	}
	return string(data), nil
}
