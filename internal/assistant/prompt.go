package assistant

import (
	"fmt"
	"strings"

	"terroir/internal/dossier"
)

// BuildDossierPrompt returns the instruction asking an assistant to draft a
// dossier for one territory in the import format.
func BuildDossierPrompt(territory, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a field researcher preparing a territorial dossier for %q.\n\n", territory)
	b.WriteString("Return a single JSON object with three keys:\n")
	b.WriteString("- \"dimensions\": an object keyed by domain, each value {\"description\": string, \"data\": object}\n")
	b.WriteString("- \"sources\": an array of {\"title\", \"url\", \"kind\", \"author\", \"publishedDate\", \"reliability\" (0-100)}\n")
	kinds := make([]string, len(dossier.ValidSourceKinds))
	for i, k := range dossier.ValidSourceKinds {
		kinds[i] = string(k)
	}
	fmt.Fprintf(&b, "  where kind is one of: %s\n", strings.Join(kinds, ", "))
	b.WriteString("- \"fables\": an array of {\"title\", \"mainContent\", \"dimensionRef\", \"tags\"}\n\n")
	b.WriteString("Use exactly these domain keys:\n")
	for _, k := range dossier.CanonicalDomains() {
		fmt.Fprintf(&b, "- %s (%s)\n", k, dossier.DomainLabel(k))
	}
	b.WriteString("\nCite only sources you can name precisely. Keep every description at least one full sentence.\n")
	if n := strings.TrimSpace(notes); n != "" {
		b.WriteString("\nResearcher notes:\n")
		b.WriteString(n)
		b.WriteString("\n")
	}
	return b.String()
}
