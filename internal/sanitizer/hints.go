package sanitizer

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	strayCommentRe   = regexp.MustCompile(`(?:^|[\s,{\[:])(?://|/\*|#)`)
	strayTrailingRe  = regexp.MustCompile(`,\s*(?:[}\]]|,|$)`)
	bareParenValueRe = regexp.MustCompile(`[:\[,]\s*\(`)
)

// Hints inspects text that failed to decode and returns advisory hints about
// the likely cause. Quoted content is ignored.
func Hints(text string) []string {
	skel := skeleton(text)
	var hints []string

	if o, c := strings.Count(skel, "("), strings.Count(skel, ")"); o != c {
		hints = append(hints, fmt.Sprintf("unmatched parenthesis: %d opening vs %d closing", o, c))
	} else if bareParenValueRe.MatchString(skel) {
		hints = append(hints, "parenthesized value that could not be unwrapped")
	}
	if strayCommentRe.MatchString(skel) {
		hints = append(hints, "stray comment marker outside a string")
	}
	if strayTrailingRe.MatchString(skel) {
		hints = append(hints, "stray trailing separator")
	}
	if o, c := strings.Count(skel, "{"), strings.Count(skel, "}"); o != c {
		hints = append(hints, fmt.Sprintf("unbalanced braces: %d opening vs %d closing", o, c))
	}
	if o, c := strings.Count(skel, "["), strings.Count(skel, "]"); o != c {
		hints = append(hints, fmt.Sprintf("unbalanced brackets: %d opening vs %d closing", o, c))
	}
	return hints
}

// skeleton blanks the content of double-quoted strings.
func skeleton(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	for i, r := range rs {
		if inString {
			if r == '"' && !escapedAt(rs, i) {
				inString = false
				b.WriteRune(r)
			}
			continue
		}
		if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}
