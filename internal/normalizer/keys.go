package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"terroir/internal/dossier"
)

// ResolutionKind tells how a dimension key was resolved.
type ResolutionKind int

const (
	Unmapped ResolutionKind = iota
	Exact
	Legacy
	Split
	Fuzzy
)

func (k ResolutionKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Legacy:
		return "legacy"
	case Split:
		return "split"
	case Fuzzy:
		return "fuzzy"
	}
	return "unmapped"
}

// SplitRule describes a legacy domain that covers two canonical domains.
// Keys listed in SecondaryKeys go to Secondary, every other key to Primary.
type SplitRule struct {
	Primary       dossier.DomainKey
	Secondary     dossier.DomainKey
	SecondaryKeys []string
}

func (s *SplitRule) claims(key string) bool {
	f := foldKey(key)
	for _, k := range s.SecondaryKeys {
		if f == k {
			return true
		}
	}
	return false
}

// Resolution is the outcome of resolving one dimension key.
type Resolution struct {
	Kind   ResolutionKind
	Target dossier.DomainKey
	Split  *SplitRule
}

const (
	fuzzyPrefixLen     = 6
	fuzzyMinKeyLen     = 4
	fuzzyMinSimilarity = 0.7
)

// tableEntry is a tagged variant: exactly one of single or split is set.
type tableEntry struct {
	single dossier.DomainKey
	split  *SplitRule
}

var leversAndActivities = &SplitRule{
	Primary:   dossier.DomainAgroecologicalLevers,
	Secondary: dossier.DomainNewActivities,
	SecondaryKeys: []string{
		"activities", "activites", "newactivities", "nouvellesactivites",
		"jobs", "emplois", "economy", "economie", "tourism", "tourisme",
		"crafts", "artisanat", "services", "commerce", "enterprises", "entreprises",
	},
}

var legacyNames = []struct {
	names []string
	entry tableEntry
}{
	{[]string{"hydrologie", "hydro", "eau", "water", "waterresources", "ressourceseneau"},
		tableEntry{single: dossier.DomainHydrology}},
	{[]string{"especes", "especescaracteristiques", "species", "faune", "fauneflore", "fauna", "flora", "biodiversite", "biodiversity"},
		tableEntry{single: dossier.DomainCharacteristicSpecies}},
	{[]string{"vocabulaire", "vocabulairelocal", "lexique", "glossaire", "glossary", "toponymie"},
		tableEntry{single: dossier.DomainLocalVocabulary}},
	{[]string{"empreintehumaine", "empreinte", "anthropisation", "humanimpact"},
		tableEntry{single: dossier.DomainHumanFootprint}},
	{[]string{"projection", "projectionlongterme", "prospective", "futur", "future"},
		tableEntry{single: dossier.DomainLongRangeProjection}},
	{[]string{"leviers", "leviersagroecologiques", "agroecologie", "agroecology"},
		tableEntry{single: dossier.DomainAgroecologicalLevers}},
	{[]string{"nouvellesactivites", "activites"},
		tableEntry{single: dossier.DomainNewActivities}},
	{[]string{"technodiversite", "techniques", "technologies"},
		tableEntry{single: dossier.DomainTechnoDiversity}},
	{[]string{"leversandactivities", "leviersetactivites", "leviersactivites", "transition"},
		tableEntry{split: leversAndActivities}},
}

// legacyTable is keyed by folded key.
var legacyTable = func() map[string]tableEntry {
	m := make(map[string]tableEntry)
	for _, group := range legacyNames {
		for _, n := range group.names {
			m[n] = group.entry
		}
	}
	return m
}()

var foldedCanonical = func() map[string]dossier.DomainKey {
	m := make(map[string]dossier.DomainKey)
	for _, k := range dossier.CanonicalDomains() {
		m[foldKey(string(k))] = k
	}
	return m
}()

// ResolveKey maps a dimension key to its canonical domain(s): exact names
// first, then the legacy table, then fuzzy matching over the canonical set.
func ResolveKey(key string) Resolution {
	if dossier.IsCanonical(dossier.DomainKey(key)) {
		return Resolution{Kind: Exact, Target: dossier.DomainKey(key)}
	}
	f := foldKey(key)
	if e, ok := legacyTable[f]; ok {
		if e.split != nil {
			return Resolution{Kind: Split, Split: e.split}
		}
		return Resolution{Kind: Legacy, Target: e.single}
	}
	if k, ok := foldedCanonical[f]; ok {
		return Resolution{Kind: Legacy, Target: k}
	}
	if k, ok := fuzzyMatch(f); ok {
		return Resolution{Kind: Fuzzy, Target: k}
	}
	return Resolution{Kind: Unmapped, Target: dossier.DomainKey(key)}
}

func fuzzyMatch(folded string) (dossier.DomainKey, bool) {
	if folded == "" {
		return "", false
	}
	for _, c := range dossier.CanonicalDomains() {
		fc := foldKey(string(c))
		if prefixContained(folded, fc) || Similarity(folded, fc) > fuzzyMinSimilarity {
			return c, true
		}
	}
	return "", false
}

// prefixContained reports whether the first characters of either string
// appear inside the other. Keys shorter than fuzzyMinKeyLen never match this way.
func prefixContained(a, b string) bool {
	if len([]rune(a)) < fuzzyMinKeyLen || len([]rune(b)) < fuzzyMinKeyLen {
		return false
	}
	return strings.Contains(b, runePrefix(a, fuzzyPrefixLen)) || strings.Contains(a, runePrefix(b, fuzzyPrefixLen))
}

// Similarity is the share of positions holding the same character in both
// strings, relative to the longer one.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 0
	}
	same := 0
	for i := 0; i < min(len(ra), len(rb)); i++ {
		if ra[i] == rb[i] {
			same++
		}
	}
	return float64(same) / float64(longest)
}

func runePrefix(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}

// foldKey lower-cases, strips accents and drops everything but letters and digits.
func foldKey(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// foldWords lower-cases, strips accents and collapses separators to single spaces.
func foldWords(s string) string {
	var b strings.Builder
	space := false
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(unicode.ToLower(r))
		default:
			space = true
		}
	}
	return b.String()
}
