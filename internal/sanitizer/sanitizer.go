// Package sanitizer repairs near-valid structured text produced by research
// assistants so that it can be decoded as JSON.
//
// Sanitize never fails: malformations it does not recognize are passed through
// untouched and surface later as parse errors. Every pass is a no-op on clean
// text, which makes Sanitize idempotent.
package sanitizer

// Step records one corrective pass that changed the text.
type Step struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type pass struct {
	name        string
	description string
	apply       func(string) string
}

var passes = []pass{
	{"literal_tokens", "rewrote None/True/False outside strings", RewriteLiteralTokens},
	{"comment_lines", "removed comment lines", StripCommentLines},
	{"parenthesized_scalars", "unwrapped parenthesized string values", UnwrapParenthesizedScalars},
	{"single_quotes", "converted single-quoted strings to double quotes", ConvertSingleQuotes},
	{"split_literals", "merged string literals split across lines", MergeSplitLiterals},
	{"smart_quotes", "normalized typographic quotes", NormalizeSmartQuotes},
	{"trailing_separators", "removed trailing commas before closing brackets", RemoveTrailingSeparators},
	{"invalid_escapes", "removed invalid escape sequences", FixEscapes},
	{"blank_lines", "collapsed runs of blank lines", CollapseBlankLines},
}

// Sanitize runs the token scan followed by the eight corrective passes.
func Sanitize(raw string) string {
	out, _ := SanitizeWithReport(raw)
	return out
}

// SanitizeWithReport is Sanitize that also returns the passes which changed the text, in order.
func SanitizeWithReport(raw string) (string, []Step) {
	text := raw
	var steps []Step
	for _, p := range passes {
		next := p.apply(text)
		if next != text {
			steps = append(steps, Step{Name: p.name, Description: p.description})
		}
		text = next
	}
	return text, steps
}
