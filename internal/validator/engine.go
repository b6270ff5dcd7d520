package validator

import (
	"terroir/internal/dossier"
	"terroir/internal/validator/rules"
)

// Engine runs the three validation levels and the two scores over a document.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	if registry == nil {
		registry = NewBuiltinRegistry()
	}
	return &Engine{registry: registry}
}

var builtin = NewBuiltinRegistry()

// Syntactic checks dimension, source and fable shapes with the built-in rules.
func Syntactic(doc *dossier.ImportDocument) Diagnostics {
	return runLevel(builtin, rules.LevelSyntactic, orEmpty(doc), Options{})
}

// Semantic cross-checks references with the built-in rules.
func Semantic(doc *dossier.ImportDocument) Diagnostics {
	return runLevel(builtin, rules.LevelSemantic, orEmpty(doc), Options{})
}

// Contextual checks target identifiers and, in strict mode, minimum counts.
// It reports nothing when opts carries no targets.
func Contextual(doc *dossier.ImportDocument, opts Options) Diagnostics {
	if opts.Targets == nil {
		return Diagnostics{}
	}
	return runLevel(builtin, rules.LevelContextual, orEmpty(doc), opts)
}

// Validate runs every level, merges their diagnostics once and scores the document.
// It always returns a complete result; a nil document is validated as an empty one.
func (e *Engine) Validate(doc *dossier.ImportDocument, opts Options) *Result {
	doc = orEmpty(doc)

	levels := []Diagnostics{
		runLevel(e.registry, rules.LevelSyntactic, doc, opts),
		runLevel(e.registry, rules.LevelSemantic, doc, opts),
	}
	if opts.Targets != nil {
		levels = append(levels, runLevel(e.registry, rules.LevelContextual, doc, opts))
	}

	res := &Result{Errors: []string{}, Warnings: []string{}, Findings: []Finding{}}
	for _, d := range levels {
		res.Errors = append(res.Errors, d.Errors...)
		res.Warnings = append(res.Warnings, d.Warnings...)
		res.Findings = append(res.Findings, d.Findings...)
	}
	res.Valid = len(res.Errors) == 0
	res.CompletenessScore = CompletenessScore(doc)
	res.QualityScore = QualityScore(doc, len(res.Errors), len(res.Warnings))
	res.FieldStatuses = ComputeFieldStatuses(res.Findings)
	return res
}

// Rules lists the registered rules in registration order.
func (e *Engine) Rules() []RuleInfo {
	all := e.registry.All()
	out := make([]RuleInfo, 0, len(all))
	for _, v := range all {
		out = append(out, RuleInfo{Key: v.RuleKey(), Name: v.RuleName(), Level: v.Level(), Severity: v.Severity()})
	}
	return out
}

func runLevel(reg *Registry, level rules.Level, doc *dossier.ImportDocument, opts Options) Diagnostics {
	var d Diagnostics
	for _, v := range reg.ByLevel(level) {
		for _, f := range v.Check(doc, opts) {
			d.add(v, f)
		}
	}
	return d
}

func orEmpty(doc *dossier.ImportDocument) *dossier.ImportDocument {
	if doc == nil {
		return dossier.New()
	}
	return doc
}
