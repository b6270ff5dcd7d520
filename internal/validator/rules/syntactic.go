package rules

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"terroir/internal/dossier"
)

// SyntacticRules checks the shape of each dimension, source and fable.
func SyntacticRules() []*BuiltinRule {
	return []*BuiltinRule{
		{key: "syn.dimension.shape", name: "Dimension Shape", level: LevelSyntactic, sev: SeverityError, fn: checkDimensionShape},
		{key: "syn.sources.required", name: "Sources Required", level: LevelSyntactic, sev: SeverityError, fn: checkSourcesPresent},
		{key: "syn.source.title", name: "Source Title", level: LevelSyntactic, sev: SeverityError, fn: checkSourceTitle},
		{key: "syn.source.kind", name: "Source Kind", level: LevelSyntactic, sev: SeverityError, fn: checkSourceKind},
		{key: "syn.source.reliability", name: "Source Reliability Range", level: LevelSyntactic, sev: SeverityError, fn: checkSourceReliability},
		{key: "syn.source.url", name: "Source URL", level: LevelSyntactic, sev: SeverityWarning, fn: checkSourceURL},
		{key: "syn.fable.title", name: "Fable Title", level: LevelSyntactic, sev: SeverityError, fn: checkFableTitle},
		{key: "syn.fable.content", name: "Fable Content", level: LevelSyntactic, sev: SeverityError, fn: checkFableContent},
	}
}

func checkDimensionShape(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for _, key := range sortedDimensionKeys(doc) {
		dim := doc.Dimensions[key]
		var problems []string
		if n := runeLen(dim.Description); n < dossier.MinDescriptionLen {
			problems = append(problems, fmt.Sprintf("description has %d characters, at least %d required", n, dossier.MinDescriptionLen))
		}
		if len(dim.Data) == 0 {
			problems = append(problems, "data is empty")
		}
		if len(problems) > 0 {
			out = append(out, Finding{
				FieldPath: "dimensions." + string(key),
				Message:   fmt.Sprintf("dimension %q: %s", key, strings.Join(problems, " and ")),
			})
		}
	}
	return out
}

func checkSourcesPresent(doc *dossier.ImportDocument, _ Options) []Finding {
	if len(doc.Sources) > 0 {
		return nil
	}
	return []Finding{{FieldPath: "sources", Message: "at least one source is required"}}
}

func checkSourceTitle(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, s := range doc.Sources {
		if runeLen(s.Title) < dossier.MinTitleLen {
			out = append(out, Finding{
				FieldPath: fmt.Sprintf("sources[%d].title", i),
				Message:   fmt.Sprintf("source %d: title must have at least %d characters", i+1, dossier.MinTitleLen),
			})
		}
	}
	return out
}

func checkSourceKind(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, s := range doc.Sources {
		path := fmt.Sprintf("sources[%d].kind", i)
		switch {
		case s.Kind == "":
			out = append(out, Finding{FieldPath: path, Message: fmt.Sprintf("source %d: kind is missing", i+1)})
		case !s.Kind.Valid():
			out = append(out, Finding{FieldPath: path, Message: fmt.Sprintf("source %d: kind %q is not recognized", i+1, s.Kind)})
		}
	}
	return out
}

func checkSourceReliability(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, s := range doc.Sources {
		r := s.Reliability
		if math.IsNaN(r) || r < dossier.MinReliability || r > dossier.MaxReliability {
			out = append(out, Finding{
				FieldPath: fmt.Sprintf("sources[%d].reliability", i),
				Message:   fmt.Sprintf("source %d: reliability %v is outside %v-%v", i+1, r, dossier.MinReliability, dossier.MaxReliability),
			})
		}
	}
	return out
}

func checkSourceURL(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, s := range doc.Sources {
		if strings.TrimSpace(s.URL) == "" {
			continue
		}
		u, err := url.Parse(s.URL)
		if err == nil && u.Scheme != "" && u.Host != "" {
			continue
		}
		out = append(out, Finding{
			FieldPath: fmt.Sprintf("sources[%d].url", i),
			Message:   fmt.Sprintf("source %d: url %q is not a valid absolute URL", i+1, s.URL),
		})
	}
	return out
}

func checkFableTitle(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, f := range doc.Fables {
		if runeLen(f.Title) < dossier.MinTitleLen {
			out = append(out, Finding{
				FieldPath: fmt.Sprintf("fables[%d].title", i),
				Message:   fmt.Sprintf("fable %d: title must have at least %d characters", i+1, dossier.MinTitleLen),
			})
		}
	}
	return out
}

func checkFableContent(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, f := range doc.Fables {
		if n := runeLen(f.MainContent); n < dossier.MinMainContentLen {
			out = append(out, Finding{
				FieldPath: fmt.Sprintf("fables[%d].mainContent", i),
				Message:   fmt.Sprintf("fable %d: main content has %d characters, at least %d required", i+1, n, dossier.MinMainContentLen),
			})
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

func sortedDimensionKeys(doc *dossier.ImportDocument) []dossier.DomainKey {
	keys := make([]dossier.DomainKey, 0, len(doc.Dimensions))
	for k := range doc.Dimensions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
