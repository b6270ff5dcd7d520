package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"terroir/internal/domain"
	"terroir/internal/sanitizer"
)

// ParseError is returned when sanitized text still cannot be decoded. It
// carries the decoder's own message plus advisory hints.
type ParseError struct {
	Err    error
	Line   int
	Column int
	Hints  []string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d, column %d)", e.Line, e.Column)
	}
	if len(e.Hints) > 0 {
		b.WriteString("; hints: ")
		b.WriteString(strings.Join(e.Hints, "; "))
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the decoder error.
func (e *ParseError) Unwrap() []error {
	return []error{domain.ErrUnparseableInput, e.Err}
}

// Parse decodes text into generic values (maps, slices, strings, float64, bool, nil).
func Parse(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, newParseError(text, err)
	}
	if dec.More() {
		pe := &ParseError{Err: errors.New("unexpected content after top-level value"), Hints: sanitizer.Hints(text)}
		pe.Line, pe.Column = position(text, dec.InputOffset())
		return nil, pe
	}
	return v, nil
}

func newParseError(text string, err error) *ParseError {
	pe := &ParseError{Err: err, Hints: sanitizer.Hints(text)}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		pe.Line, pe.Column = position(text, syn.Offset)
	} else if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		pe.Line, pe.Column = position(text, int64(len(text)))
	}
	return pe
}

// position converts a byte offset into 1-based line and column numbers.
func position(text string, offset int64) (int, int) {
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	prefix := text[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := len([]rune(prefix[strings.LastIndexByte(prefix, '\n')+1:]))
	if col == 0 {
		col = 1
	}
	return line, col
}

// Marshal renders a value as indented JSON without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
