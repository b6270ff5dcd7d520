package normalizer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"terroir/internal/dossier"
)

var fableAliases = map[string]string{
	"name":      "title",
	"titre":     "title",
	"content":   "mainContent",
	"text":      "mainContent",
	"body":      "mainContent",
	"contenu":   "mainContent",
	"dimension": "dimensionRef",
	"domain":    "dimensionRef",
}

var fableFields = map[string]bool{
	"title": true, "mainContent": true, "order": true, "dimensionRef": true,
	"variations": true, "tags": true, "inspirationSources": true,
}

func (r *run) fables(value any) {
	var items []any
	switch v := value.(type) {
	case nil:
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
		r.correct("wrapped a single fable object into a list")
	default:
		r.correct("dropped %q: expected a list, got %s", "fables", describe(v))
	}
	items = append(items, r.hoisted...)

	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			r.correct("fable %d: dropped entry of type %s", i+1, describe(item))
			continue
		}
		r.doc.Fables = append(r.doc.Fables, r.fable(i+1, m))
	}
}

func (r *run) fable(pos int, raw map[string]any) dossier.FableData {
	correct := func(format string, args ...any) {
		r.correct("fable %d: "+format, append([]any{pos}, args...)...)
	}

	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	for _, alias := range sortedKeys(fableAliases) {
		v, ok := m[alias]
		if !ok {
			continue
		}
		target := fableAliases[alias]
		delete(m, alias)
		if _, taken := m[target]; taken {
			correct("dropped %q, %q already set", alias, target)
			continue
		}
		m[target] = v
		correct("renamed %q to %q", alias, target)
	}

	f := dossier.FableData{
		Title:              textField(m, "title", correct),
		MainContent:        textField(m, "mainContent", correct),
		InspirationSources: m["inspirationSources"],
	}
	f.Order = fableOrder(m["order"], correct)
	f.DimensionRef = fableDimensionRef(textField(m, "dimensionRef", correct), correct)

	switch v := m["variations"].(type) {
	case nil:
	case map[string]any:
		if len(v) > 0 {
			f.Variations = v
		}
	default:
		f.Variations = wrapValue(v)
		correct("wrapped non-object variations")
	}

	f.Tags = fableTags(m["tags"], correct)

	var unknown []string
	for k := range m {
		if !fableFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		correct("dropped unknown fields %s", strings.Join(unknown, ", "))
	}
	return f
}

func fableOrder(raw any, correct func(string, ...any)) *int {
	switch v := raw.(type) {
	case nil:
		return nil
	case float64:
		o := int(math.Round(v))
		if float64(o) != v {
			correct("rounded order %v to %d", v, o)
		}
		return &o
	case string:
		if o, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			correct("converted order %q to %d", v, o)
			return &o
		}
	}
	correct("dropped unusable order %v", raw)
	return nil
}

func fableDimensionRef(ref string, correct func(string, ...any)) dossier.DomainKey {
	if ref == "" {
		return ""
	}
	res := ResolveKey(ref)
	switch res.Kind {
	case Legacy, Fuzzy:
		correct("pointed dimensionRef %q to %q", ref, res.Target)
		return res.Target
	case Split:
		correct("pointed dimensionRef %q to %q", ref, res.Split.Primary)
		return res.Split.Primary
	}
	return res.Target
}

func fableTags(raw any, correct func(string, ...any)) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		var tags []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		correct("split tag text into %d tags", len(tags))
		return tags
	case []any:
		tags := make([]string, 0, len(v))
		converted := false
		for _, t := range v {
			s, ok := t.(string)
			if !ok {
				s = fmt.Sprint(t)
				converted = true
			}
			tags = append(tags, s)
		}
		if converted {
			correct("converted non-text tags to text")
		}
		if len(tags) == 0 {
			return nil
		}
		return tags
	}
	correct("dropped unusable tags")
	return nil
}
