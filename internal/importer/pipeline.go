// Package importer chains the sanitizer, parser, normalizer and validator into
// a single preview operation.
package importer

import (
	"fmt"
	"strings"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/normalizer"
	"terroir/internal/parser"
	"terroir/internal/sanitizer"
	"terroir/internal/validator"
)

// Preview is everything an operator needs to decide whether to commit.
type Preview struct {
	Document    *dossier.ImportDocument `json:"document" yaml:"document"`
	Corrections []string                `json:"corrections" yaml:"corrections"`
	Warnings    []string                `json:"warnings" yaml:"warnings"`
	Validation  *validator.Result       `json:"validation" yaml:"validation"`
	Sanitized   Sanitized               `json:"sanitized" yaml:"sanitized"`
}

// Sanitized describes what happened to the raw text before decoding.
type Sanitized struct {
	Extracted bool             `json:"extracted" yaml:"extracted"`
	Steps     []sanitizer.Step `json:"steps" yaml:"steps"`
}

// Pipeline runs raw assistant output through every stage. It is safe for
// concurrent use.
type Pipeline struct {
	normalizer    *normalizer.Normalizer
	engine        *validator.Engine
	cache         *memo
	maxInputBytes int64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalizer.Normalizer) Option {
	return func(p *Pipeline) { p.normalizer = n }
}

// WithEngine replaces the default validation engine.
func WithEngine(e *validator.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// WithCache memoizes up to size previews keyed by input and options.
// A size of zero or less disables the cache.
func WithCache(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.cache = newMemo(size)
		}
	}
}

// WithMaxInputBytes rejects raw input longer than limit bytes. Zero means no limit.
func WithMaxInputBytes(limit int64) Option {
	return func(p *Pipeline) { p.maxInputBytes = limit }
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer: normalizer.New(),
		engine:     validator.NewEngine(nil),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Preview runs the full pipeline. It fails on empty or oversized input, on text
// that stays undecodable after sanitizing (*parser.ParseError) and on a
// document without a dimensions container. Everything else, including an
// invalid document, is reported inside the Preview.
func (p *Pipeline) Preview(raw string, opts validator.Options) (*Preview, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrEmptyInput
	}
	if p.maxInputBytes > 0 && int64(len(raw)) > p.maxInputBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", domain.ErrInputTooLarge, len(raw), p.maxInputBytes)
	}

	var key string
	if p.cache != nil {
		key = cacheKey(raw, opts)
		if hit, ok := p.cache.get(key); ok {
			return hit, nil
		}
	}

	payload, extracted := sanitizer.ExtractPayload(raw)
	text, steps := sanitizer.SanitizeWithReport(payload)

	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}

	level := normalizer.LevelStandard
	if opts.Strict {
		level = normalizer.LevelStrict
	}
	norm, err := p.normalizer.NormalizeAtLevel(parsed, level)
	if err != nil {
		return nil, fmt.Errorf("normalizing document: %w", err)
	}

	corrections := make([]string, 0, len(steps)+len(norm.Corrections)+1)
	if extracted {
		corrections = append(corrections, "extracted the payload from surrounding text")
	}
	for _, st := range steps {
		corrections = append(corrections, "sanitizer: "+st.Description)
	}
	corrections = append(corrections, norm.Corrections...)

	out := &Preview{
		Document:    norm.Document,
		Corrections: corrections,
		Warnings:    nonNil(norm.Warnings),
		Validation:  p.engine.Validate(norm.Document, opts),
		Sanitized:   Sanitized{Extracted: extracted, Steps: steps},
	}
	if out.Sanitized.Steps == nil {
		out.Sanitized.Steps = []sanitizer.Step{}
	}

	if p.cache != nil {
		p.cache.put(key, out)
		return out.Clone(), nil
	}
	return out, nil
}

// CachedPreviews reports how many previews are memoized.
func (p *Pipeline) CachedPreviews() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.count()
}

// Rules lists the validation rules the pipeline applies.
func (p *Pipeline) Rules() []validator.RuleInfo {
	return p.engine.Rules()
}

// Clone returns a deep copy of the preview.
func (pv *Preview) Clone() *Preview {
	if pv == nil {
		return nil
	}
	out := &Preview{
		Document:    pv.Document.Clone(),
		Corrections: append([]string{}, pv.Corrections...),
		Warnings:    append([]string{}, pv.Warnings...),
		Validation:  cloneResult(pv.Validation),
		Sanitized: Sanitized{
			Extracted: pv.Sanitized.Extracted,
			Steps:     append([]sanitizer.Step{}, pv.Sanitized.Steps...),
		},
	}
	return out
}

func cloneResult(r *validator.Result) *validator.Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Errors = append([]string{}, r.Errors...)
	out.Warnings = append([]string{}, r.Warnings...)
	out.Findings = append([]validator.Finding{}, r.Findings...)
	out.FieldStatuses = make(map[string]*validator.FieldStatus, len(r.FieldStatuses))
	for k, v := range r.FieldStatuses {
		fs := *v
		fs.Messages = append([]string{}, v.Messages...)
		out.FieldStatuses[k] = &fs
	}
	return &out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
