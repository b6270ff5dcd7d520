package dossier

import (
	"encoding/json"
)

// DomainKey names one of the canonical thematic domains of a territory dossier.
type DomainKey string

const (
	DomainHydrology             DomainKey = "hydrology"
	DomainCharacteristicSpecies DomainKey = "characteristicSpecies"
	DomainLocalVocabulary       DomainKey = "localVocabulary"
	DomainHumanFootprint        DomainKey = "humanFootprint"
	DomainLongRangeProjection   DomainKey = "longRangeProjection"
	DomainAgroecologicalLevers  DomainKey = "agroecologicalLevers"
	DomainNewActivities         DomainKey = "newActivities"
	DomainTechnoDiversity       DomainKey = "technoDiversity"
)

var canonicalDomains = []DomainKey{
	DomainHydrology,
	DomainCharacteristicSpecies,
	DomainLocalVocabulary,
	DomainHumanFootprint,
	DomainLongRangeProjection,
	DomainAgroecologicalLevers,
	DomainNewActivities,
	DomainTechnoDiversity,
}

var domainLabels = map[DomainKey]string{
	DomainHydrology:             "hydrology",
	DomainCharacteristicSpecies: "characteristic species",
	DomainLocalVocabulary:       "local vocabulary",
	DomainHumanFootprint:        "human footprint",
	DomainLongRangeProjection:   "long-range projection",
	DomainAgroecologicalLevers:  "agroecological levers",
	DomainNewActivities:         "new activities",
	DomainTechnoDiversity:       "techno-diversity",
}

// CanonicalDomains returns the canonical domains in their fixed order.
// The returned slice is a copy.
func CanonicalDomains() []DomainKey {
	out := make([]DomainKey, len(canonicalDomains))
	copy(out, canonicalDomains)
	return out
}

// IsCanonical reports whether k is one of the canonical domains.
func IsCanonical(k DomainKey) bool {
	_, ok := domainLabels[k]
	return ok
}

// DomainLabel returns the human-readable label of a domain key, or the key itself.
func DomainLabel(k DomainKey) string {
	if l, ok := domainLabels[k]; ok {
		return l
	}
	return string(k)
}

// Size limits enforced by the validator.
const (
	MinDescriptionLen = 10
	MinTitleLen       = 5
	MinMainContentLen = 50

	MinReliability     = 0.0
	MaxReliability     = 100.0
	DefaultReliability = 70.0
)

// SourceKind classifies a bibliographic source.
type SourceKind string

const (
	SourceKindWeb           SourceKind = "web"
	SourceKindDatabase      SourceKind = "database"
	SourceKindDocumentation SourceKind = "documentation"
	SourceKindScientific    SourceKind = "scientific"
	SourceKindInstitutional SourceKind = "institutional"
	SourceKindLocal         SourceKind = "local"
	SourceKindMedia         SourceKind = "media"
)

// ValidSourceKinds lists every accepted source kind.
var ValidSourceKinds = []SourceKind{
	SourceKindWeb,
	SourceKindDatabase,
	SourceKindDocumentation,
	SourceKindScientific,
	SourceKindInstitutional,
	SourceKindLocal,
	SourceKindMedia,
}

// Valid reports whether k is an accepted source kind.
func (k SourceKind) Valid() bool {
	for _, v := range ValidSourceKinds {
		if k == v {
			return true
		}
	}
	return false
}

// ImportDocument is the canonical dossier produced by the import pipeline.
type ImportDocument struct {
	Dimensions map[DomainKey]DimensionData `json:"dimensions"`
	Fables     []FableData                 `json:"fables"`
	Sources    []SourceData                `json:"sources"`
	Metadata   map[string]any              `json:"metadata"`
}

// DimensionData holds one thematic domain.
type DimensionData struct {
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

// SourceData is a bibliographic reference backing the dossier.
type SourceData struct {
	Title         string     `json:"title"`
	URL           string     `json:"url,omitempty"`
	Kind          SourceKind `json:"kind"`
	Author        string     `json:"author,omitempty"`
	PublishedDate string     `json:"publishedDate,omitempty"`
	AccessedDate  string     `json:"accessedDate,omitempty"`
	Reliability   float64    `json:"reliability"`
	References    any        `json:"references,omitempty"`
}

// FableData is a short narrative optionally attached to one domain.
type FableData struct {
	Title              string         `json:"title"`
	MainContent        string         `json:"mainContent"`
	Order              *int           `json:"order,omitempty"`
	DimensionRef       DomainKey      `json:"dimensionRef,omitempty"`
	Variations         map[string]any `json:"variations,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	InspirationSources any            `json:"inspirationSources,omitempty"`
}

// Targets identifies where a committed dossier belongs.
type Targets struct {
	TerritoryID string `json:"territoryId"`
	DossierID   string `json:"dossierId"`
}

// New returns an empty document with every collection initialized.
func New() *ImportDocument {
	return &ImportDocument{
		Dimensions: make(map[DomainKey]DimensionData),
		Fables:     []FableData{},
		Sources:    []SourceData{},
		Metadata:   make(map[string]any),
	}
}

// Clone returns a deep copy of the document.
func (d *ImportDocument) Clone() *ImportDocument {
	if d == nil {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		// Documents only ever hold JSON-decoded values, so this cannot happen in practice.
		return d
	}
	out := New()
	if err := json.Unmarshal(raw, out); err != nil {
		return d
	}
	return out
}

// PresentCanonicalDomains returns the canonical domains present in the document, in fixed order.
func PresentCanonicalDomains(d *ImportDocument) []DomainKey {
	if d == nil {
		return nil
	}
	var out []DomainKey
	for _, k := range canonicalDomains {
		if _, ok := d.Dimensions[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// MissingCanonicalDomains returns the canonical domains absent from the document, in fixed order.
func MissingCanonicalDomains(d *ImportDocument) []DomainKey {
	var out []DomainKey
	for _, k := range canonicalDomains {
		if d == nil {
			out = append(out, k)
			continue
		}
		if _, ok := d.Dimensions[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
