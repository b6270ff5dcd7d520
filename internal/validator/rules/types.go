package rules

import (
	"terroir/internal/dossier"
)

// Level groups rules by what they look at.
type Level string

const (
	LevelSyntactic  Level = "syntactic"
	LevelSemantic   Level = "semantic"
	LevelContextual Level = "contextual"
)

// Severity decides whether a failed rule blocks a commit.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Options carries the caller-supplied context of a validation run.
type Options struct {
	Targets *dossier.Targets
	Strict  bool
}

// Finding is one failed check. Rules only report failures.
type Finding struct {
	FieldPath string
	Message   string
}

// BuiltinRule wraps a check function and its metadata for the registry.
type BuiltinRule struct {
	key   string
	name  string
	level Level
	sev   Severity
	fn    func(*dossier.ImportDocument, Options) []Finding
}

func (b *BuiltinRule) Check(doc *dossier.ImportDocument, opts Options) []Finding {
	return b.fn(doc, opts)
}
func (b *BuiltinRule) RuleKey() string    { return b.key }
func (b *BuiltinRule) RuleName() string   { return b.name }
func (b *BuiltinRule) Level() Level       { return b.level }
func (b *BuiltinRule) Severity() Severity { return b.sev }

// All returns every built-in rule, syntactic first, then semantic, then contextual.
func All() []*BuiltinRule {
	syn := SyntacticRules()
	sem := SemanticRules()
	ctx := ContextualRules()
	all := make([]*BuiltinRule, 0, len(syn)+len(sem)+len(ctx))
	all = append(all, syn...)
	all = append(all, sem...)
	return append(all, ctx...)
}
