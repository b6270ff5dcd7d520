package validator

import (
	"terroir/internal/validator/rules"
)

// FieldStatusValue is the state shown next to a field in a preview.
type FieldStatusValue string

const (
	FieldStatusInvalid FieldStatusValue = "invalid"
	FieldStatusUnsure  FieldStatusValue = "unsure"
)

// FieldStatus represents the computed validation state for a single field path.
type FieldStatus struct {
	Status   FieldStatusValue `json:"status" yaml:"status"`
	Messages []string         `json:"messages" yaml:"messages"`
}

// ComputeFieldStatuses groups findings by field path. A path with any error
// is invalid; a path with only warnings is unsure. Paths without findings are absent.
func ComputeFieldStatuses(findings []Finding) map[string]*FieldStatus {
	statuses := make(map[string]*FieldStatus)
	for _, f := range findings {
		fs, ok := statuses[f.FieldPath]
		if !ok {
			fs = &FieldStatus{Status: FieldStatusUnsure}
			statuses[f.FieldPath] = fs
		}
		if f.Severity == rules.SeverityError {
			fs.Status = FieldStatusInvalid
		}
		fs.Messages = append(fs.Messages, f.Message)
	}
	return statuses
}
