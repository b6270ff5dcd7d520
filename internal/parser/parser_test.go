package parser_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/domain"
	"terroir/internal/parser"
)

func TestParse_Valid(t *testing.T) {
	v, err := parser.Parse(`{"a": [1, "x", null, true]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{float64(1), "x", nil, true}}, v)
}

func TestParse_SyntaxErrorCarriesPositionAndHints(t *testing.T) {
	_, err := parser.Parse("{\n  \"a\": (\"x\"\n}")
	require.Error(t, err)

	var pe *parser.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Hints, "unmatched parenthesis: 1 opening vs 0 closing")
	assert.True(t, errors.Is(err, domain.ErrUnparseableInput))

	var syn *json.SyntaxError
	assert.True(t, errors.As(err, &syn))
	assert.Contains(t, err.Error(), "hints: unmatched parenthesis")
}

func TestParse_TruncatedInput(t *testing.T) {
	_, err := parser.Parse(`{"a": [1, 2`)
	require.Error(t, err)

	var pe *parser.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Line)
	assert.Contains(t, pe.Hints, "unbalanced braces: 1 opening vs 0 closing")
}

func TestParse_TrailingContent(t *testing.T) {
	_, err := parser.Parse(`{"a": 1} {"b": 2}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnparseableInput))
	assert.Contains(t, err.Error(), "unexpected content after top-level value")
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	out, err := parser.Marshal(map[string]any{"url": "https://example.org/?a=1&b=<2>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"url\": \"https://example.org/?a=1&b=<2>\"\n}", string(out))
}
