package sanitizer

import (
	"regexp"
	"strings"
)

const quotedLiteral = `"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`

var (
	commentLineRe  = regexp.MustCompile(`(?m)^[ \t]*(?://|#).*(?:\r?\n|$)`)
	parenScalarRe  = regexp.MustCompile(`([:\[,]\s*)\(\s*((?:` + quotedLiteral + `)(?:\s*(?:` + quotedLiteral + `))*)\s*\)`)
	splitLiteralRe = regexp.MustCompile(`"((?:[^"\\\n]|\\.)*)"[ \t]*\r?\n\s*"((?:[^"\\\n]|\\.)*)"`)
	blankLinesRe   = regexp.MustCompile(`\n(?:[ \t]*\n){3,}`)
	codeFenceRe    = regexp.MustCompile("(?s)```[A-Za-z]*[ \t]*\r?\n(.*?)```")
)

// splitLiteralRounds bounds how many times split fragments are merged.
const splitLiteralRounds = 3

// StripCommentLines removes whole lines whose first non-blank characters are // or #.
func StripCommentLines(text string) string {
	return commentLineRe.ReplaceAllString(text, "")
}

// UnwrapParenthesizedScalars turns `: ("text")` into `: "text"`. Parenthesized
// runs of several literals are unwrapped as well so that later passes can merge them.
func UnwrapParenthesizedScalars(text string) string {
	if !strings.Contains(text, "(") {
		return text
	}
	return parenScalarRe.ReplaceAllString(text, "${1}${2}")
}

// MergeSplitLiterals joins "a"<newline>"b" into "a b".
func MergeSplitLiterals(text string) string {
	for range splitLiteralRounds {
		text = splitLiteralRe.ReplaceAllString(text, `"${1} ${2}"`)
	}
	return text
}

// RemoveTrailingSeparators drops a comma directly before } or ]. Commas inside
// quoted spans are kept.
func RemoveTrailingSeparators(text string) string {
	if !strings.Contains(text, ",") {
		return text
	}
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	var open rune
	for i, r := range rs {
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
		case ',':
			if closesContainer(rs, i+1) {
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// closesContainer reports whether the first non-blank rune at or after i is } or ].
func closesContainer(rs []rune, i int) bool {
	for ; i < len(rs); i++ {
		switch rs[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']':
			return true
		}
		return false
	}
	return false
}

// CollapseBlankLines reduces three or more consecutive blank lines to one.
func CollapseBlankLines(text string) string {
	return blankLinesRe.ReplaceAllString(text, "\n\n")
}

// ExtractPayload pulls the structured payload out of an assistant answer: the
// content of the first fenced code block, or the span from the first opening
// brace to the last closing brace when prose surrounds it. The boolean reports
// whether anything was removed.
func ExtractPayload(text string) (string, bool) {
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' {
		return text, false
	}
	start := strings.IndexByte(trimmed, '{')
	end := strings.LastIndexByte(trimmed, '}')
	if start < 0 || end < start {
		return text, false
	}
	return trimmed[start : end+1], true
}
