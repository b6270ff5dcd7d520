// Package normalizer reshapes a decoded, loosely structured dossier into the
// canonical ImportDocument. Every rewrite is reported as a correction and every
// suspicious but acceptable trait as a warning.
package normalizer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"terroir/internal/domain"
	"terroir/internal/dossier"
)

const (
	containerKey       = "dimensions"
	legacyContainerKey = "domains"

	defaultAIModel = "unspecified"

	minExpectedDomains = 3
	minExpectedSources = 2
	lowReliability     = 50.0
)

// Validation levels recorded under metadata.validationLevel when the input
// does not set one.
const (
	LevelStandard = "standard"
	LevelStrict   = "strict"
)

// Result is the canonical document with its audit trail.
type Result struct {
	Document    *dossier.ImportDocument
	Corrections []string
	Warnings    []string
}

// Normalizer is stateless apart from its clock.
type Normalizer struct {
	now func() time.Time
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock overrides the clock used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, o := range opts {
		o(n)
	}
	return n
}

// run holds the state of a single Normalize call.
type run struct {
	now         time.Time
	level       string
	doc         *dossier.ImportDocument
	hoisted     []any
	corrections []string
	warnings    []string
}

func (r *run) correct(format string, args ...any) {
	r.corrections = append(r.corrections, fmt.Sprintf(format, args...))
}

func (r *run) warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Normalize builds the canonical document. It fails only when parsed is not an
// object holding a dimensions container (or its legacy alias).
func (n *Normalizer) Normalize(parsed any) (*Result, error) {
	return n.NormalizeAtLevel(parsed, LevelStandard)
}

// NormalizeAtLevel is Normalize with the validation level to record in
// metadata. An empty level means LevelStandard.
func (n *Normalizer) NormalizeAtLevel(parsed any, level string) (*Result, error) {
	root, ok := parsed.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("normalizer: root is %s, not an object: %w", describe(parsed), domain.ErrNoDimensions)
	}
	if level == "" {
		level = LevelStandard
	}

	r := &run{now: n.now(), level: level, doc: dossier.New()}

	usedKey := containerKey
	container, ok := root[containerKey].(map[string]any)
	if !ok {
		container, ok = root[legacyContainerKey].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("normalizer: neither %q nor %q holds an object: %w", containerKey, legacyContainerKey, domain.ErrNoDimensions)
		}
		usedKey = legacyContainerKey
		r.correct("renamed legacy container %q to %q", legacyContainerKey, containerKey)
	}

	r.dimensions(container)
	r.fables(root["fables"])
	r.sources(root["sources"])
	r.metadata(root, usedKey)
	r.detectAnomalies()

	return &Result{Document: r.doc, Corrections: r.corrections, Warnings: r.warnings}, nil
}

func (r *run) dimensions(container map[string]any) {
	for _, key := range orderedKeys(container) {
		value := container[key]
		if key == "fables" {
			r.hoistFables(value)
			continue
		}

		res := ResolveKey(key)
		switch res.Kind {
		case Exact, Unmapped:
			r.putDimension(res.Target, r.reshape(res.Target, value))
		case Legacy:
			r.correct("mapped dimension %q to %q", key, res.Target)
			r.putDimension(res.Target, r.reshape(res.Target, value))
		case Fuzzy:
			r.correct("mapped dimension %q to %q (approximate match)", key, res.Target)
			r.putDimension(res.Target, r.reshape(res.Target, value))
		case Split:
			r.split(key, value, res.Split)
		}
	}
}

// orderedKeys lists canonical keys first, then every other key, each group sorted.
func orderedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := dossier.IsCanonical(dossier.DomainKey(keys[i])), dossier.IsCanonical(dossier.DomainKey(keys[j]))
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (r *run) hoistFables(value any) {
	switch v := value.(type) {
	case []any:
		r.hoisted = append(r.hoisted, v...)
		r.correct("moved %d fables found inside %q to the document root", len(v), containerKey)
	case map[string]any:
		r.hoisted = append(r.hoisted, v)
		r.correct("moved 1 fable found inside %q to the document root", containerKey)
	default:
		r.correct("dropped non-list %q entry found inside %q", "fables", containerKey)
	}
}

// reshape turns one raw domain value into {description, data}.
func (r *run) reshape(key dossier.DomainKey, value any) dossier.DimensionData {
	m, ok := value.(map[string]any)
	if !ok {
		r.correct("dimension %q: wrapped non-object value as data and synthesized a description", key)
		return dossier.DimensionData{Description: templateDescription(key), Data: wrapValue(value)}
	}

	rawDesc, hasDesc := m["description"]
	rawData, hasData := m["data"]

	switch {
	case hasDesc && hasData:
		data := r.dataMap(key, rawData)
		if extra := extraFields(m); len(extra) > 0 {
			mergeMissing(data, extra)
			r.correct("dimension %q: moved fields %s into data", key, quoteKeys(extra))
		}
		return dossier.DimensionData{Description: r.descriptionString(key, rawDesc), Data: data}

	case !hasDesc && !hasData:
		r.correct("dimension %q: synthesized a description and used the whole value as data", key)
		return dossier.DimensionData{Description: templateDescription(key), Data: copyMap(m)}

	case hasDesc:
		data := extraFields(m)
		r.correct("dimension %q: used the fields beside the description as data", key)
		return dossier.DimensionData{Description: r.descriptionString(key, rawDesc), Data: data}

	default:
		data := defaultShape(key)
		mergeOver(data, r.dataMap(key, rawData))
		mergeMissing(data, extraFields(m))
		r.correct("dimension %q: synthesized a description and completed data with the default fields", key)
		return dossier.DimensionData{Description: templateDescription(key), Data: data}
	}
}

func (r *run) dataMap(key dossier.DomainKey, raw any) map[string]any {
	if m, ok := raw.(map[string]any); ok {
		return copyMap(m)
	}
	r.correct("dimension %q: wrapped non-object data", key)
	return wrapValue(raw)
}

func (r *run) descriptionString(key dossier.DomainKey, raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		r.correct("dimension %q: converted description to text", key)
		return fmt.Sprint(v)
	}
}

// putDimension stores dim under key, merging into an existing entry without overwriting.
func (r *run) putDimension(key dossier.DomainKey, dim dossier.DimensionData) {
	existing, ok := r.doc.Dimensions[key]
	if !ok {
		r.doc.Dimensions[key] = dim
		return
	}
	if strings.TrimSpace(existing.Description) == "" {
		existing.Description = dim.Description
	}
	if existing.Data == nil {
		existing.Data = make(map[string]any)
	}
	mergeMissing(existing.Data, dim.Data)
	r.doc.Dimensions[key] = existing
	r.correct("merged duplicate data into dimension %q", key)
}

// split partitions a legacy combined domain between its two canonical targets.
func (r *run) split(key string, value any, rule *SplitRule) {
	m, ok := value.(map[string]any)
	if !ok {
		r.correct("mapped dimension %q to %q", key, rule.Primary)
		r.putDimension(rule.Primary, r.reshape(rule.Primary, value))
		return
	}

	desc, _ := m["description"].(string)
	fields := extraFields(m)
	if data, ok := m["data"].(map[string]any); ok {
		merged := copyMap(data)
		mergeMissing(merged, fields)
		fields = merged
	}

	primary, secondary := make(map[string]any), make(map[string]any)
	for k, v := range fields {
		if rule.claims(k) {
			secondary[k] = v
		} else {
			primary[k] = v
		}
	}

	for _, part := range []struct {
		target dossier.DomainKey
		data   map[string]any
	}{{rule.Primary, primary}, {rule.Secondary, secondary}} {
		if len(part.data) == 0 {
			continue
		}
		d := desc
		if strings.TrimSpace(d) == "" {
			d = templateDescription(part.target)
		}
		r.putDimension(part.target, dossier.DimensionData{Description: d, Data: part.data})
	}
	r.correct("split legacy dimension %q into %q (%d fields) and %q (%d fields)",
		key, rule.Primary, len(primary), rule.Secondary, len(secondary))
}

func (r *run) metadata(root map[string]any, usedContainer string) {
	md := make(map[string]any)
	switch v := root["metadata"].(type) {
	case map[string]any:
		for k, val := range v {
			md[k] = val
		}
	case nil:
	default:
		md["value"] = v
		r.correct("wrapped non-object metadata under %q", "metadata.value")
	}

	known := map[string]bool{usedContainer: true, "fables": true, "sources": true, "metadata": true}
	extras := make([]string, 0)
	for k := range root {
		if !known[k] {
			extras = append(extras, k)
		}
	}
	sort.Strings(extras)
	for _, k := range extras {
		if _, taken := md[k]; taken {
			r.correct("dropped unknown top-level field %q already present in metadata", k)
			continue
		}
		md[k] = root[k]
		r.correct("moved unknown top-level field %q into metadata", k)
	}

	defaults := []struct {
		key   string
		value string
	}{
		{"sourcingDate", r.now.Format(time.DateOnly)},
		{"importDate", r.now.UTC().Format(time.RFC3339)},
		{"aiModel", defaultAIModel},
		{"validationLevel", r.level},
	}
	for _, d := range defaults {
		if !isBlank(md[d.key]) {
			continue
		}
		md[d.key] = d.value
		r.correct("metadata: set %s to %q", d.key, d.value)
	}
	r.doc.Metadata = md
}

func (r *run) detectAnomalies() {
	doc := r.doc
	if n := len(dossier.PresentCanonicalDomains(doc)); n < minExpectedDomains {
		r.warn("only %d of %d canonical domains present", n, len(dossier.CanonicalDomains()))
	}
	if n := len(doc.Sources); n < minExpectedSources {
		r.warn("only %d source(s) provided, at least %d expected", n, minExpectedSources)
	}
	if len(doc.Fables) == 0 {
		r.warn("no fables provided")
	}
	low := 0
	for _, s := range doc.Sources {
		if s.Reliability < lowReliability {
			low++
		}
	}
	if low > 0 {
		r.warn("%d source(s) have a reliability below %.0f", low, lowReliability)
	}
}

func extraFields(m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		if k != "description" && k != "data" {
			out[k] = v
		}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// mergeMissing copies keys from src that dst does not have yet.
func mergeMissing(dst, src map[string]any) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}

// mergeOver copies every key from src into dst.
func mergeOver(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}

func wrapValue(v any) map[string]any {
	switch v.(type) {
	case []any:
		return map[string]any{"items": v}
	case nil:
		return map[string]any{}
	default:
		return map[string]any{"content": v}
	}
}

func quoteKeys(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, strconv.Quote(k))
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

func isBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	}
	return false
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "a list"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
