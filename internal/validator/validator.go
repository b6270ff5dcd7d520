package validator

import (
	"terroir/internal/dossier"
	"terroir/internal/validator/rules"
)

// Options is re-exported so callers need not import the rules package.
type Options = rules.Options

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Check(doc *dossier.ImportDocument, opts rules.Options) []rules.Finding
	RuleKey() string
	RuleName() string
	Level() rules.Level
	Severity() rules.Severity
}

// Finding is a failed check annotated with its rule's metadata.
type Finding struct {
	RuleKey   string         `json:"ruleKey" yaml:"ruleKey"`
	RuleName  string         `json:"ruleName" yaml:"ruleName"`
	Level     rules.Level    `json:"level" yaml:"level"`
	Severity  rules.Severity `json:"severity" yaml:"severity"`
	FieldPath string         `json:"fieldPath" yaml:"fieldPath"`
	Message   string         `json:"message" yaml:"message"`
}

// Diagnostics is the output of one validation level.
type Diagnostics struct {
	Errors   []string
	Warnings []string
	Findings []Finding
}

func (d *Diagnostics) add(v Validator, f rules.Finding) {
	d.Findings = append(d.Findings, Finding{
		RuleKey:   v.RuleKey(),
		RuleName:  v.RuleName(),
		Level:     v.Level(),
		Severity:  v.Severity(),
		FieldPath: f.FieldPath,
		Message:   f.Message,
	})
	if v.Severity() == rules.SeverityError {
		d.Errors = append(d.Errors, f.Message)
	} else {
		d.Warnings = append(d.Warnings, f.Message)
	}
}

// Result is the complete outcome of validating a document.
type Result struct {
	Valid             bool                    `json:"valid" yaml:"valid"`
	Errors            []string                `json:"errors" yaml:"errors"`
	Warnings          []string                `json:"warnings" yaml:"warnings"`
	CompletenessScore int                     `json:"completenessScore" yaml:"completenessScore"`
	QualityScore      int                     `json:"qualityScore" yaml:"qualityScore"`
	Findings          []Finding               `json:"findings" yaml:"findings"`
	FieldStatuses     map[string]*FieldStatus `json:"fieldStatuses" yaml:"fieldStatuses"`
}

// RuleInfo describes a registered rule.
type RuleInfo struct {
	Key      string         `json:"key" yaml:"key"`
	Name     string         `json:"name" yaml:"name"`
	Level    rules.Level    `json:"level" yaml:"level"`
	Severity rules.Severity `json:"severity" yaml:"severity"`
}
