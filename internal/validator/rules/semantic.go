package rules

import (
	"fmt"
	"strings"

	"terroir/internal/dossier"
)

// sourceRefKeys are the data fields a dimension uses to cite document sources.
var sourceRefKeys = []string{"sources", "sourceRefs", "references"}

const coverageListLimit = 3

// SemanticRules cross-checks references inside the document.
func SemanticRules() []*BuiltinRule {
	return []*BuiltinRule{
		{key: "sem.fable.dimension_ref", name: "Fable Dimension Reference", level: LevelSemantic, sev: SeverityWarning, fn: checkFableDimensionRefs},
		{key: "sem.dimension.source_refs", name: "Dimension Source References", level: LevelSemantic, sev: SeverityWarning, fn: checkDimensionSourceRefs},
		{key: "sem.coverage", name: "Canonical Domain Coverage", level: LevelSemantic, sev: SeverityWarning, fn: checkCoverage},
	}
}

func checkFableDimensionRefs(doc *dossier.ImportDocument, _ Options) []Finding {
	var out []Finding
	for i, f := range doc.Fables {
		if f.DimensionRef == "" {
			continue
		}
		if _, ok := doc.Dimensions[f.DimensionRef]; ok {
			continue
		}
		out = append(out, Finding{
			FieldPath: fmt.Sprintf("fables[%d].dimensionRef", i),
			Message:   fmt.Sprintf("fable %d: dimensionRef %q does not match any dimension", i+1, f.DimensionRef),
		})
	}
	return out
}

func checkDimensionSourceRefs(doc *dossier.ImportDocument, _ Options) []Finding {
	titles := make(map[string]bool, len(doc.Sources))
	for _, s := range doc.Sources {
		titles[foldTitle(s.Title)] = true
	}

	var out []Finding
	for _, key := range sortedDimensionKeys(doc) {
		data := doc.Dimensions[key].Data
		var unknown []string
		for _, field := range sourceRefKeys {
			for _, ref := range referencedTitles(data[field]) {
				if !titles[foldTitle(ref)] {
					unknown = append(unknown, ref)
				}
			}
		}
		if len(unknown) > 0 {
			out = append(out, Finding{
				FieldPath: "dimensions." + string(key),
				Message:   fmt.Sprintf("dimension %q references unknown sources: %s", key, strings.Join(unknown, ", ")),
			})
		}
	}
	return out
}

// referencedTitles extracts cited titles from a string, a list of strings or
// a list of objects carrying a title.
func referencedTitles(v any) []string {
	switch t := v.(type) {
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			switch it := item.(type) {
			case string:
				out = append(out, it)
			case map[string]any:
				if title, ok := it["title"].(string); ok {
					out = append(out, title)
				}
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}

func foldTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func checkCoverage(doc *dossier.ImportDocument, _ Options) []Finding {
	missing := dossier.MissingCanonicalDomains(doc)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, k := range missing {
		names[i] = string(k)
	}
	var msg string
	if len(missing) > 4 {
		msg = fmt.Sprintf("%d canonical domains missing: %s…", len(missing), strings.Join(names[:coverageListLimit], ", "))
	} else {
		msg = fmt.Sprintf("canonical domains missing: %s", strings.Join(names, ", "))
	}
	return []Finding{{FieldPath: "dimensions", Message: msg}}
}
