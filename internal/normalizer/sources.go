package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"terroir/internal/dossier"
)

var markdownLinkRe = regexp.MustCompile(`^\s*\[([^\]]*)\]\(\s*([^)\s]+)\s*\)\s*$`)

// reliabilityWords maps folded qualitative ratings to the midpoint of their band.
var reliabilityWords = map[string]float64{
	"tres haute":  95,
	"tres elevee": 95,
	"very high":   95,
	"haute":       85,
	"elevee":      85,
	"high":        85,
	"moyenne":     70,
	"medium":      70,
	"moderate":    70,
	"faible":      45,
	"low":         45,
	"tres faible": 20,
	"very low":    20,
}

var kindSynonyms = map[string]dossier.SourceKind{
	"website":         dossier.SourceKindWeb,
	"site":            dossier.SourceKindWeb,
	"site web":        dossier.SourceKindWeb,
	"internet":        dossier.SourceKindWeb,
	"online":          dossier.SourceKindWeb,
	"dataset":         dossier.SourceKindDatabase,
	"data":            dossier.SourceKindDatabase,
	"base de donnees": dossier.SourceKindDatabase,
	"docs":            dossier.SourceKindDocumentation,
	"document":        dossier.SourceKindDocumentation,
	"report":          dossier.SourceKindDocumentation,
	"rapport":         dossier.SourceKindDocumentation,
	"book":            dossier.SourceKindDocumentation,
	"livre":           dossier.SourceKindDocumentation,
	"article":         dossier.SourceKindScientific,
	"paper":           dossier.SourceKindScientific,
	"study":           dossier.SourceKindScientific,
	"etude":           dossier.SourceKindScientific,
	"scientifique":    dossier.SourceKindScientific,
	"academic":        dossier.SourceKindScientific,
	"government":      dossier.SourceKindInstitutional,
	"official":        dossier.SourceKindInstitutional,
	"institutionnel":  dossier.SourceKindInstitutional,
	"institution":     dossier.SourceKindInstitutional,
	"oral":            dossier.SourceKindLocal,
	"interview":       dossier.SourceKindLocal,
	"temoignage":      dossier.SourceKindLocal,
	"locale":          dossier.SourceKindLocal,
	"press":           dossier.SourceKindMedia,
	"presse":          dossier.SourceKindMedia,
	"news":            dossier.SourceKindMedia,
	"journal":         dossier.SourceKindMedia,
	"video":           dossier.SourceKindMedia,
}

var sourceAliases = map[string]string{
	"name":            "title",
	"titre":           "title",
	"link":            "url",
	"href":            "url",
	"lien":            "url",
	"type":            "kind",
	"category":        "kind",
	"auteur":          "author",
	"date":            "publishedDate",
	"publicationDate": "publishedDate",
	"accessDate":      "accessedDate",
	"consultedDate":   "accessedDate",
	"fiabilite":       "reliability",
	"confidence":      "reliability",
	"refs":            "references",
}

var sourceFields = map[string]bool{
	"title": true, "url": true, "kind": true, "author": true, "publishedDate": true,
	"accessedDate": true, "reliability": true, "references": true,
}

func (r *run) sources(value any) {
	var items []any
	switch v := value.(type) {
	case nil:
		return
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
		r.correct("wrapped a single source object into a list")
	default:
		r.correct("dropped %q: expected a list, got %s", "sources", describe(v))
		return
	}

	for i, item := range items {
		pos := i + 1
		var m map[string]any
		switch v := item.(type) {
		case map[string]any:
			m = v
		case string:
			m = map[string]any{"title": v}
			r.correct("source %d: converted plain text into a source with that title", pos)
		default:
			r.correct("source %d: dropped entry of type %s", pos, describe(v))
			continue
		}
		src, corrections := normalizeSource(pos, m, r.now)
		r.corrections = append(r.corrections, corrections...)
		r.doc.Sources = append(r.doc.Sources, src)
	}
}

// NormalizeSource normalizes one raw source object; pos is its 1-based position
// and appears in every returned correction.
func (n *Normalizer) NormalizeSource(pos int, raw map[string]any) (dossier.SourceData, []string) {
	return normalizeSource(pos, raw, n.now())
}

func normalizeSource(pos int, raw map[string]any, now time.Time) (dossier.SourceData, []string) {
	var corrections []string
	correct := func(format string, args ...any) {
		corrections = append(corrections, fmt.Sprintf("source %d: ", pos)+fmt.Sprintf(format, args...))
	}

	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	for _, alias := range sortedKeys(sourceAliases) {
		v, ok := m[alias]
		if !ok {
			continue
		}
		target := sourceAliases[alias]
		delete(m, alias)
		if _, taken := m[target]; taken {
			correct("dropped %q, %q already set", alias, target)
			continue
		}
		m[target] = v
		correct("renamed %q to %q", alias, target)
	}

	var src dossier.SourceData
	src.Title = textField(m, "title", correct)
	src.URL = textField(m, "url", correct)
	src.Author = textField(m, "author", correct)
	src.PublishedDate = textField(m, "publishedDate", correct)
	src.AccessedDate = textField(m, "accessedDate", correct)
	src.References = m["references"]

	if label, target, ok := markdownLink(src.URL); ok {
		src.URL = target
		correct("converted Markdown link to its target %q", target)
		if strings.TrimSpace(src.Title) == "" && label != "" {
			src.Title = label
			correct("used the link label %q as title", label)
		}
	}
	if label, target, ok := markdownLink(src.Title); ok {
		src.Title = label
		correct("replaced Markdown link title with its label %q", label)
		if src.URL == "" {
			src.URL = target
			correct("used the title link target %q as url", target)
		}
	}

	src.Kind = normalizeKind(textField(m, "kind", correct), src.URL, correct)
	src.Reliability = normalizeReliability(m["reliability"], correct)

	if strings.TrimSpace(src.AccessedDate) == "" {
		src.AccessedDate = now.Format(time.DateOnly)
		correct("set accessedDate to %s", src.AccessedDate)
	}

	var unknown []string
	for k := range m {
		if !sourceFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		correct("dropped unknown fields %s", strings.Join(unknown, ", "))
	}
	return src, corrections
}

func defaultKind(url string) dossier.SourceKind {
	if strings.TrimSpace(url) != "" {
		return dossier.SourceKindWeb
	}
	return dossier.SourceKindDocumentation
}

func normalizeKind(raw, url string, correct func(string, ...any)) dossier.SourceKind {
	if raw == "" {
		k := defaultKind(url)
		correct("defaulted kind to %q", k)
		return k
	}
	if dossier.SourceKind(raw).Valid() {
		return dossier.SourceKind(raw)
	}
	folded := foldWords(raw)
	if dossier.SourceKind(folded).Valid() {
		correct("normalized kind %q to %q", raw, folded)
		return dossier.SourceKind(folded)
	}
	if k, ok := kindSynonyms[folded]; ok {
		correct("mapped kind %q to %q", raw, k)
		return k
	}
	k := defaultKind(url)
	correct("replaced unknown kind %q with %q", raw, k)
	return k
}

func normalizeReliability(raw any, correct func(string, ...any)) float64 {
	switch v := raw.(type) {
	case nil:
		correct("defaulted reliability to %v", dossier.DefaultReliability)
		return dossier.DefaultReliability
	case float64:
		if math.IsNaN(v) {
			correct("defaulted reliability to %v", dossier.DefaultReliability)
			return dossier.DefaultReliability
		}
		c := clamp(v, dossier.MinReliability, dossier.MaxReliability)
		if c != v {
			correct("clamped reliability %v to %v", v, c)
		}
		return c
	case string:
		if score, ok := reliabilityWords[foldWords(v)]; ok {
			correct("mapped reliability %q to %v", v, score)
			return score
		}
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%"))
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) {
			c := clamp(f, dossier.MinReliability, dossier.MaxReliability)
			correct("converted reliability %q to %v", v, c)
			return c
		}
		correct("unrecognized reliability %q, defaulted to %v", v, dossier.DefaultReliability)
		return dossier.DefaultReliability
	default:
		correct("unrecognized reliability %v, defaulted to %v", v, dossier.DefaultReliability)
		return dossier.DefaultReliability
	}
}

// textField reads a string field, converting scalars to text.
func textField(m map[string]any, key string, correct func(string, ...any)) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		correct("converted %s %v to text", key, v)
		return s
	default:
		correct("converted %s to text", key)
		return fmt.Sprint(v)
	}
}

func markdownLink(s string) (label, target string, ok bool) {
	m := markdownLinkRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
