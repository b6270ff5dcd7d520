package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"terroir/internal/importer"
)

// BOM is written first so spreadsheet tools detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns is the header row of the diagnostics CSV.
var columns = []string{
	"Kind",
	"Rule",
	"Severity",
	"Field",
	"Message",
}

// Row kinds, one per line of the diagnostics CSV.
const (
	KindSummary    = "summary"
	KindSanitizer  = "sanitizer"
	KindCorrection = "correction"
	KindWarning    = "normalizer_warning"
	KindFinding    = "finding"
)

// WriteCSV writes one row per diagnostic: summary scores first, then sanitizer
// steps, normalizer corrections and warnings, then validation findings.
func WriteCSV(w io.Writer, pv *importer.Preview) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range rows(pv) {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rows(pv *importer.Preview) [][]string {
	var out [][]string
	if v := pv.Validation; v != nil {
		out = append(out,
			[]string{KindSummary, "", "", "valid", formatBool(v.Valid)},
			[]string{KindSummary, "", "", "completenessScore", strconv.Itoa(v.CompletenessScore)},
			[]string{KindSummary, "", "", "qualityScore", strconv.Itoa(v.QualityScore)},
		)
	}
	for _, s := range pv.Sanitized.Steps {
		out = append(out, []string{KindSanitizer, s.Name, "", "", s.Description})
	}
	for _, c := range pv.Corrections {
		out = append(out, []string{KindCorrection, "", "", "", c})
	}
	for _, wn := range pv.Warnings {
		out = append(out, []string{KindWarning, "", "warning", "", wn})
	}
	if v := pv.Validation; v != nil {
		for _, f := range v.Findings {
			out = append(out, []string{KindFinding, f.RuleKey, string(f.Severity), f.FieldPath, f.Message})
		}
	}
	return out
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
