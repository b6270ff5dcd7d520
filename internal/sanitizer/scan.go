package sanitizer

import (
	"strings"
	"unicode"
)

var literalTokens = []struct {
	from string
	to   string
}{
	{"None", "null"},
	{"True", "true"},
	{"False", "false"},
}

// RewriteLiteralTokens rewrites the bare words None, True and False to null,
// true and false. Text inside quoted spans and comment lines is left alone.
func RewriteLiteralTokens(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	var open rune // opening delimiter of the current quoted span, 0 outside
	lineStart := true
	for i := 0; i < len(rs); i++ {
		r := rs[i]

		if open == 0 && lineStart && isCommentLine(rs, i) {
			end := i
			for end < len(rs) && rs[end] != '\n' {
				end++
			}
			b.WriteString(string(rs[i:end]))
			i = end - 1
			continue
		}
		lineStart = r == '\n'

		if open == 0 {
			if to, n, ok := literalAt(rs, i); ok {
				b.WriteString(to)
				i += n - 1
				continue
			}
		}

		if !escapedAt(rs, i) {
			switch {
			case open != 0:
				if closes(open, r) {
					open = 0
				}
			case r == '"' || r == '“' || r == '”' || r == '\'' || r == '‘':
				open = r
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ConvertSingleQuotes rewrites 'text' literals found outside double-quoted
// strings as "text", escaping any double quote they contain. An unterminated
// single quote leaves the rest of the text untouched.
func ConvertSingleQuotes(text string) string {
	if !strings.Contains(text, "'") {
		return text
	}
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + 8)

	var open rune
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if open != 0 {
			if !escapedAt(rs, i) && closes(open, r) {
				open = 0
			}
			b.WriteRune(r)
			continue
		}
		switch r {
		case '"', '“', '”':
			open = r
			b.WriteRune(r)
		case '\'':
			end := closingSingleQuote(rs, i+1)
			if end < 0 {
				b.WriteString(string(rs[i:]))
				return b.String()
			}
			b.WriteByte('"')
			writeSingleQuotedContent(&b, rs[i+1:end])
			b.WriteByte('"')
			i = end
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func closingSingleQuote(rs []rune, from int) int {
	for j := from; j < len(rs); j++ {
		if rs[j] == '\'' && !escapedAt(rs, j) {
			return j
		}
		if rs[j] == '\n' {
			return -1
		}
	}
	return -1
}

func writeSingleQuotedContent(b *strings.Builder, content []rune) {
	for i := 0; i < len(content); i++ {
		r := content[i]
		switch {
		case r == '\\' && i+1 < len(content) && content[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case r == '\\' && i+1 < len(content):
			b.WriteRune(r)
			b.WriteRune(content[i+1])
			i++
		case r == '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
}

// NormalizeSmartQuotes replaces typographic quotes with plain ones. Smart
// quotes used as delimiters become ", smart double quotes inside a string
// become \" and smart single quotes inside a string become '.
func NormalizeSmartQuotes(text string) string {
	if !strings.ContainsAny(text, "“”‘’") {
		return text
	}
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	var open rune
	for i, r := range rs {
		if open == 0 {
			switch r {
			case '"':
				open = '"'
				b.WriteRune(r)
			case '“', '”':
				open = '“'
				b.WriteByte('"')
			case '‘', '’':
				open = '‘'
				b.WriteByte('"')
			default:
				b.WriteRune(r)
			}
			continue
		}

		if escapedAt(rs, i) {
			switch r {
			case '“', '”':
				b.WriteByte('"')
			case '‘', '’':
				b.WriteByte('\'')
			default:
				b.WriteRune(r)
			}
			continue
		}

		switch open {
		case '"':
			switch r {
			case '"':
				open = 0
				b.WriteRune(r)
			case '“', '”':
				b.WriteString(`\"`)
			case '‘', '’':
				b.WriteByte('\'')
			default:
				b.WriteRune(r)
			}
		case '“':
			switch r {
			case '”', '“':
				open = 0
				b.WriteByte('"')
			case '"':
				b.WriteString(`\"`)
			case '‘', '’':
				b.WriteByte('\'')
			default:
				b.WriteRune(r)
			}
		case '‘':
			switch r {
			case '’':
				open = 0
				b.WriteByte('"')
			case '‘':
				b.WriteByte('\'')
			case '"', '“', '”':
				b.WriteString(`\"`)
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// FixEscapes drops a backslash that precedes a character JSON cannot escape
// and collapses doubled backslash runs to a single escaped backslash.
func FixEscapes(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(rs); {
		if rs[i] != '\\' {
			b.WriteRune(rs[i])
			i++
			continue
		}
		j := i
		for j < len(rs) && rs[j] == '\\' {
			j++
		}
		n := j - i
		if n >= 2 {
			b.WriteString(`\\`)
		}
		if n%2 == 1 && validEscapeAt(rs, j) {
			b.WriteByte('\\')
		}
		i = j
	}
	return b.String()
}

func validEscapeAt(rs []rune, i int) bool {
	if i >= len(rs) {
		return false
	}
	switch rs[i] {
	case '"', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if i+4 >= len(rs) {
			return false
		}
		for _, h := range rs[i+1 : i+5] {
			if !isHex(h) {
				return false
			}
		}
		return true
	}
	return false
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// escapedAt reports whether rs[i] is preceded by an odd run of backslashes.
func escapedAt(rs []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && rs[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// closes reports whether r terminates a span opened by open.
func closes(open, r rune) bool {
	switch open {
	case '"':
		return r == '"'
	case '“', '”':
		return r == '”' || r == '“'
	case '\'':
		return r == '\''
	case '‘':
		return r == '’'
	}
	return false
}

func isCommentLine(rs []rune, i int) bool {
	for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t') {
		i++
	}
	if i < len(rs) && rs[i] == '#' {
		return true
	}
	return i+1 < len(rs) && rs[i] == '/' && rs[i+1] == '/'
}

func literalAt(rs []rune, i int) (string, int, bool) {
	if i > 0 && isWordRune(rs[i-1]) {
		return "", 0, false
	}
	for _, tok := range literalTokens {
		n := len(tok.from)
		if i+n > len(rs) || string(rs[i:i+n]) != tok.from {
			continue
		}
		if i+n < len(rs) && isWordRune(rs[i+n]) {
			continue
		}
		return tok.to, n, true
	}
	return "", 0, false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
