package rules

import (
	"fmt"
	"strings"

	"terroir/internal/dossier"
)

const (
	strictMinDomains = 4
	strictMinSources = 3
	strictMinFables  = 1
)

// ContextualRules apply only when target identifiers are supplied.
func ContextualRules() []*BuiltinRule {
	return []*BuiltinRule{
		{key: "ctx.targets", name: "Target Identifiers", level: LevelContextual, sev: SeverityError, fn: checkTargets},
		{key: "ctx.strict.domains", name: "Strict Domain Count", level: LevelContextual, sev: SeverityError, fn: strictMinimum(
			"domains", strictMinDomains, func(d *dossier.ImportDocument) int { return len(dossier.PresentCanonicalDomains(d)) })},
		{key: "ctx.strict.sources", name: "Strict Source Count", level: LevelContextual, sev: SeverityError, fn: strictMinimum(
			"sources", strictMinSources, func(d *dossier.ImportDocument) int { return len(d.Sources) })},
		{key: "ctx.strict.fables", name: "Strict Fable Count", level: LevelContextual, sev: SeverityError, fn: strictMinimum(
			"fables", strictMinFables, func(d *dossier.ImportDocument) int { return len(d.Fables) })},
	}
}

func checkTargets(_ *dossier.ImportDocument, opts Options) []Finding {
	t := opts.Targets
	if t == nil {
		return nil
	}
	var out []Finding
	if strings.TrimSpace(t.TerritoryID) == "" {
		out = append(out, Finding{FieldPath: "targets.territoryId", Message: "territory identifier is empty"})
	}
	if strings.TrimSpace(t.DossierID) == "" {
		out = append(out, Finding{FieldPath: "targets.dossierId", Message: "dossier identifier is empty"})
	}
	return out
}

func strictMinimum(what string, minimum int, count func(*dossier.ImportDocument) int) func(*dossier.ImportDocument, Options) []Finding {
	return func(doc *dossier.ImportDocument, opts Options) []Finding {
		if opts.Targets == nil || !opts.Strict {
			return nil
		}
		n := count(doc)
		if n >= minimum {
			return nil
		}
		return []Finding{{
			FieldPath: what,
			Message:   fmt.Sprintf("strict mode requires at least %d %s, found %d", minimum, what, n),
		}}
	}
}
