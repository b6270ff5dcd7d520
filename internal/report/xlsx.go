package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"terroir/internal/dossier"
	"terroir/internal/importer"
)

const (
	sheetSummary     = "Summary"
	sheetDiagnostics = "Diagnostics"
	sheetDomains     = "Domains"
	sheetSources     = "Sources"
)

// WriteXLSX writes a workbook with a summary sheet, the diagnostics rows of
// WriteCSV, one row per domain and one row per source.
func WriteXLSX(w io.Writer, pv *importer.Preview) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{sheetDiagnostics, sheetDomains, sheetSources} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating style: %w", err)
	}

	summary := [][]any{{"Field", "Value"}}
	if v := pv.Validation; v != nil {
		summary = append(summary,
			[]any{"Valid", formatBool(v.Valid)},
			[]any{"Completeness score", v.CompletenessScore},
			[]any{"Quality score", v.QualityScore},
			[]any{"Errors", len(v.Errors)},
			[]any{"Warnings", len(v.Warnings)},
		)
	}
	summary = append(summary,
		[]any{"Corrections", len(pv.Corrections)},
		[]any{"Sanitizer steps", len(pv.Sanitized.Steps)},
		[]any{"Payload extracted", formatBool(pv.Sanitized.Extracted)},
	)

	diagnostics := [][]any{toAny(columns)}
	for _, r := range rows(pv) {
		diagnostics = append(diagnostics, toAny(r))
	}

	domains := [][]any{{"Domain", "Label", "Canonical", "Data keys", "Description"}}
	sources := [][]any{{"Title", "Kind", "Reliability", "URL", "Author", "Published"}}
	if doc := pv.Document; doc != nil {
		keys := make([]string, 0, len(doc.Dimensions))
		for k := range doc.Dimensions {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := dossier.DomainKey(k)
			d := doc.Dimensions[key]
			domains = append(domains, []any{k, dossier.DomainLabel(key), formatBool(dossier.IsCanonical(key)), len(d.Data), d.Description})
		}
		for _, s := range doc.Sources {
			sources = append(sources, []any{s.Title, string(s.Kind), s.Reliability, s.URL, s.Author, s.PublishedDate})
		}
	}

	for sheet, data := range map[string][][]any{
		sheetSummary:     summary,
		sheetDiagnostics: diagnostics,
		sheetDomains:     domains,
		sheetSources:     sources,
	} {
		if err := writeRows(f, sheet, data, bold); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheetSummary, "A", "A", 22)
	_ = f.SetColWidth(sheetDiagnostics, "A", "D", 20)
	_ = f.SetColWidth(sheetDiagnostics, "E", "E", 80)
	_ = f.SetColWidth(sheetDomains, "A", "B", 26)
	_ = f.SetColWidth(sheetDomains, "E", "E", 60)
	_ = f.SetColWidth(sheetSources, "A", "A", 40)
	_ = f.SetColWidth(sheetSources, "D", "D", 48)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, data [][]any, headerStyle int) error {
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(data) > 0 && len(data[0]) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(data[0]), 1)
		_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
	}
	return nil
}

func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
