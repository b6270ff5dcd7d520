// Package report renders import previews for people and spreadsheets.
package report

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"terroir/internal/domain"
	"terroir/internal/importer"
	"terroir/internal/parser"
)

// ParseFormat validates a requested output format. Empty means JSON.
func ParseFormat(s string) (domain.ReportFormat, error) {
	f := domain.ReportFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return domain.ReportFormatJSON, nil
	}
	if _, ok := domain.ReportContentTypes[f]; !ok {
		return "", fmt.Errorf("unsupported report format %q; allowed: json, yaml, csv, xlsx", s)
	}
	return f, nil
}

// Render writes pv to w in the given format.
func Render(w io.Writer, format domain.ReportFormat, pv *importer.Preview) error {
	switch format {
	case domain.ReportFormatJSON, "":
		b, err := parser.Marshal(pv)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	case domain.ReportFormatYAML:
		return WriteYAML(w, pv)
	case domain.ReportFormatCSV:
		return WriteCSV(w, pv)
	case domain.ReportFormatXLSX:
		return WriteXLSX(w, pv)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename makes a territory or dossier name safe for Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "dossier"
	}
	return s
}

// BuildFilename returns {name}_preview_{YYYY-MM-DD}.{format}.
func BuildFilename(name string, format domain.ReportFormat, now time.Time) string {
	return fmt.Sprintf("%s_preview_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), format)
}
