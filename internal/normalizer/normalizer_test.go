package normalizer_test

import (
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/normalizer"
	"terroir/internal/parser"
	"terroir/internal/sanitizer"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newNormalizer() *normalizer.Normalizer {
	return normalizer.New(normalizer.WithClock(func() time.Time { return fixedNow }))
}

func normalizeText(t *testing.T, text string) *normalizer.Result {
	t.Helper()
	parsed, err := parser.Parse(sanitizer.Sanitize(text))
	require.NoError(t, err)
	res, err := newNormalizer().Normalize(parsed)
	require.NoError(t, err)
	return res
}

func dataKeys(d dossier.DimensionData) []string {
	keys := make([]string, 0, len(d.Data))
	for k := range d.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

func TestNormalize_MissingContainerIsHardFailure(t *testing.T) {
	n := newNormalizer()

	_, err := n.Normalize(map[string]any{"sources": []any{}})
	assert.True(t, errors.Is(err, domain.ErrNoDimensions))

	_, err = n.Normalize([]any{map[string]any{"dimensions": map[string]any{}}})
	assert.True(t, errors.Is(err, domain.ErrNoDimensions))

	_, err = n.Normalize(map[string]any{"dimensions": "not an object"})
	assert.True(t, errors.Is(err, domain.ErrNoDimensions))
}

func TestNormalize_LegacyContainerAlias(t *testing.T) {
	res := normalizeText(t, `{"domains": {"hydrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}}}}`)
	assert.Contains(t, res.Corrections, `renamed legacy container "domains" to "dimensions"`)
	assert.Contains(t, res.Document.Dimensions, dossier.DomainHydrology)
	assert.NotContains(t, res.Document.Metadata, "domains")
}

func TestResolveKey(t *testing.T) {
	tests := []struct {
		key    string
		kind   normalizer.ResolutionKind
		target dossier.DomainKey
	}{
		{"hydrology", normalizer.Exact, dossier.DomainHydrology},
		{"Hydrology", normalizer.Legacy, dossier.DomainHydrology},
		{"human_footprint", normalizer.Legacy, dossier.DomainHumanFootprint},
		{"hydrologie", normalizer.Legacy, dossier.DomainHydrology},
		{"Espèces", normalizer.Legacy, dossier.DomainCharacteristicSpecies},
		{"nouvelles-activités", normalizer.Legacy, dossier.DomainNewActivities},
		{"hxdrology", normalizer.Fuzzy, dossier.DomainHydrology},
		{"footprints", normalizer.Fuzzy, dossier.DomainHumanFootprint},
		{"techno", normalizer.Fuzzy, dossier.DomainTechnoDiversity},
		{"hxdxoxogy", normalizer.Unmapped, "hxdxoxogy"},
		{"misc", normalizer.Unmapped, "misc"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			res := normalizer.ResolveKey(tt.key)
			assert.Equal(t, tt.kind, res.Kind)
			assert.Equal(t, tt.target, res.Target)
		})
	}

	split := normalizer.ResolveKey("leviersEtActivites")
	require.Equal(t, normalizer.Split, split.Kind)
	assert.Equal(t, dossier.DomainAgroecologicalLevers, split.Split.Primary)
	assert.Equal(t, dossier.DomainNewActivities, split.Split.Secondary)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 8.0/9.0, normalizer.Similarity("hydrology", "hxdrology"), 1e-9)
	assert.InDelta(t, 6.0/9.0, normalizer.Similarity("hydrology", "hxdxoxogy"), 1e-9)
	assert.InDelta(t, 0.7, normalizer.Similarity("abcdefghij", "abcdefgxyz"), 1e-9)
	assert.Equal(t, 0.0, normalizer.Similarity("", ""))
}

func TestNormalize_FuzzyMappingBoundary(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {
		"hxdrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}},
		"hxdxoxogy": {"description": "Something else entirely", "data": {"x": 1}}
	}}`)

	assert.Contains(t, res.Document.Dimensions, dossier.DomainHydrology)
	assert.Contains(t, res.Corrections, `mapped dimension "hxdrology" to "hydrology" (approximate match)`)

	assert.Contains(t, res.Document.Dimensions, dossier.DomainKey("hxdxoxogy"))
	for _, c := range res.Corrections {
		assert.NotContains(t, c, "hxdxoxogy")
	}
}

func TestNormalize_SplitDimensionLaw(t *testing.T) {
	original := map[string]any{
		"practices":  []any{"hedgerows"},
		"composting": "communal",
		"tourism":    "slow tourism trails",
		"crafts":     []any{"basketry"},
		"jobs":       3.0,
	}
	res, err := newNormalizer().Normalize(map[string]any{
		"dimensions": map[string]any{"leviersEtActivites": original},
	})
	require.NoError(t, err)

	dims := res.Document.Dimensions
	require.Len(t, dims, 2)
	levers, ok := dims[dossier.DomainAgroecologicalLevers]
	require.True(t, ok)
	activities, ok := dims[dossier.DomainNewActivities]
	require.True(t, ok)
	assert.NotContains(t, dims, dossier.DomainKey("leviersEtActivites"))

	assert.Equal(t, []string{"composting", "practices"}, dataKeys(levers))
	assert.Equal(t, []string{"crafts", "jobs", "tourism"}, dataKeys(activities))

	union := append(dataKeys(levers), dataKeys(activities)...)
	sort.Strings(union)
	want := make([]string, 0, len(original))
	for k := range original {
		want = append(want, k)
	}
	sort.Strings(want)
	assert.Equal(t, want, union)

	assert.Contains(t, res.Corrections,
		`split legacy dimension "leviersEtActivites" into "agroecologicalLevers" (2 fields) and "newActivities" (3 fields)`)
}

func TestNormalize_SplitWithOneSidedKeysKeepsOnlyPopulatedTarget(t *testing.T) {
	original := map[string]any{
		"practices":  []any{"hedgerows"},
		"composting": "communal",
	}
	res, err := newNormalizer().Normalize(map[string]any{
		"dimensions": map[string]any{"leviersEtActivites": original},
	})
	require.NoError(t, err)

	dims := res.Document.Dimensions
	require.Len(t, dims, 1)
	assert.Equal(t, []string{"composting", "practices"}, dataKeys(dims[dossier.DomainAgroecologicalLevers]))
	assert.NotContains(t, dims, dossier.DomainNewActivities)
	assert.Contains(t, res.Corrections,
		`split legacy dimension "leviersEtActivites" into "agroecologicalLevers" (2 fields) and "newActivities" (0 fields)`)
}

func TestNormalize_SplitKeepsProvidedDescription(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {"transition": {
		"description": "Transition of the valley economy",
		"data": {"agroforestry": true, "activities": ["cider house"]}
	}}}`)
	dims := res.Document.Dimensions
	assert.Equal(t, "Transition of the valley economy", dims[dossier.DomainAgroecologicalLevers].Description)
	assert.Equal(t, "Transition of the valley economy", dims[dossier.DomainNewActivities].Description)
	assert.Equal(t, []string{"agroforestry"}, dataKeys(dims[dossier.DomainAgroecologicalLevers]))
	assert.Equal(t, []string{"activities"}, dataKeys(dims[dossier.DomainNewActivities]))
}

func TestNormalize_StructuralReshape(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {
		"hydrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}},
		"localVocabulary": {"terms": ["bocage"]},
		"humanFootprint": {"description": "Old mills along the river", "mills": 12},
		"characteristicSpecies": {"data": {"fauna": ["lynx"]}},
		"technoDiversity": "dry stone walls"
	}}`)
	dims := res.Document.Dimensions

	t.Run("both_present_unchanged", func(t *testing.T) {
		assert.Equal(t, "Rivers and springs", dims[dossier.DomainHydrology].Description)
		assert.Equal(t, []string{"rivers"}, dataKeys(dims[dossier.DomainHydrology]))
		for _, c := range res.Corrections {
			assert.NotContains(t, c, `"hydrology"`)
		}
	})
	t.Run("neither_present", func(t *testing.T) {
		d := dims[dossier.DomainLocalVocabulary]
		assert.GreaterOrEqual(t, len(d.Description), dossier.MinDescriptionLen)
		assert.Equal(t, []string{"terms"}, dataKeys(d))
	})
	t.Run("description_without_data", func(t *testing.T) {
		d := dims[dossier.DomainHumanFootprint]
		assert.Equal(t, "Old mills along the river", d.Description)
		assert.Equal(t, map[string]any{"mills": 12.0}, d.Data)
	})
	t.Run("data_without_description_gets_default_shape", func(t *testing.T) {
		d := dims[dossier.DomainCharacteristicSpecies]
		assert.Equal(t, []any{"lynx"}, d.Data["fauna"])
		assert.Equal(t, []any{}, d.Data["flora"])
		assert.NotEmpty(t, d.Description)
	})
	t.Run("scalar_value_wrapped", func(t *testing.T) {
		d := dims[dossier.DomainTechnoDiversity]
		assert.Equal(t, map[string]any{"content": "dry stone walls"}, d.Data)
	})
}

func TestNormalize_DuplicateTargetsMergeWithoutOverwriting(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {
		"hydrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}},
		"hydrologie": {"description": "Autre description", "data": {"rivers": ["Cher"], "lakes": 2}}
	}}`)
	d := res.Document.Dimensions[dossier.DomainHydrology]
	assert.Equal(t, "Rivers and springs", d.Description)
	assert.Equal(t, []any{"Loire"}, d.Data["rivers"])
	assert.Equal(t, 2.0, d.Data["lakes"])
	assert.Contains(t, res.Corrections, `merged duplicate data into dimension "hydrology"`)
}

func TestNormalize_MisplacedFablesHoisted(t *testing.T) {
	res := normalizeText(t, `{
		"dimensions": {
			"hydrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}},
			"fables": [{"title": "The heron", "content": "Once upon a time...", "dimension": "hydrologie"}]
		},
		"fables": [{"title": "The mill", "mainContent": "A miller lived here."}]
	}`)
	require.Len(t, res.Document.Fables, 2)
	assert.Equal(t, "The mill", res.Document.Fables[0].Title)

	heron := res.Document.Fables[1]
	assert.Equal(t, "The heron", heron.Title)
	assert.Equal(t, "Once upon a time...", heron.MainContent)
	assert.Equal(t, dossier.DomainHydrology, heron.DimensionRef)
	assert.NotContains(t, res.Document.Dimensions, dossier.DomainKey("fables"))

	assert.Contains(t, res.Corrections, `moved 1 fables found inside "dimensions" to the document root`)
	assert.Contains(t, res.Corrections, `fable 2: renamed "content" to "mainContent"`)
	assert.Contains(t, res.Corrections, `fable 2: pointed dimensionRef "hydrologie" to "hydrology"`)
}

func TestNormalizeSource_SingleQuotedScenario(t *testing.T) {
	parsed, err := parser.Parse(sanitizer.Sanitize(`{'title': 'Test', 'reliability': 'haute',}`))
	require.NoError(t, err)

	src, corrections := newNormalizer().NormalizeSource(1, parsed.(map[string]any))
	assert.Equal(t, 85.0, src.Reliability)
	assert.Equal(t, dossier.SourceKindDocumentation, src.Kind)
	assert.Equal(t, "Test", src.Title)
	assert.Equal(t, "2026-03-14", src.AccessedDate)
	for _, c := range corrections {
		assert.True(t, strings.HasPrefix(c, "source 1: "), c)
	}
}

func TestNormalize_Sources(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {}, "sources": [
		{"title": "Atlas", "url": "[Atlas des eaux](https://example.org/atlas)", "reliability": 140},
		{"name": "Inventaire faune", "type": "Article", "reliability": "Très faible", "accessedDate": "2025-01-01", "pages": 12},
		{"title": "Field notes", "reliability": "80%", "kind": "web"},
		"Oral history of the village"
	]}`)
	srcs := res.Document.Sources
	require.Len(t, srcs, 4)

	assert.Equal(t, "https://example.org/atlas", srcs[0].URL)
	assert.Equal(t, dossier.SourceKindWeb, srcs[0].Kind)
	assert.Equal(t, 100.0, srcs[0].Reliability)
	assert.Equal(t, "2026-03-14", srcs[0].AccessedDate)

	assert.Equal(t, "Inventaire faune", srcs[1].Title)
	assert.Equal(t, dossier.SourceKindScientific, srcs[1].Kind)
	assert.Equal(t, 20.0, srcs[1].Reliability)
	assert.Equal(t, "2025-01-01", srcs[1].AccessedDate)

	assert.Equal(t, 80.0, srcs[2].Reliability)
	assert.Equal(t, dossier.SourceKindWeb, srcs[2].Kind)

	assert.Equal(t, "Oral history of the village", srcs[3].Title)
	assert.Equal(t, dossier.DefaultReliability, srcs[3].Reliability)
	assert.Equal(t, dossier.SourceKindDocumentation, srcs[3].Kind)

	assert.Contains(t, res.Corrections, `source 1: converted Markdown link to its target "https://example.org/atlas"`)
	assert.Contains(t, res.Corrections, `source 1: clamped reliability 140 to 100`)
	assert.Contains(t, res.Corrections, `source 2: renamed "name" to "title"`)
	assert.Contains(t, res.Corrections, `source 2: mapped reliability "Très faible" to 20`)
	assert.Contains(t, res.Corrections, `source 2: dropped unknown fields pages`)
	assert.Contains(t, res.Corrections, `source 4: converted plain text into a source with that title`)
	assert.Contains(t, res.Warnings, "1 source(s) have a reliability below 50")
}

func TestNormalize_MetadataEnrichment(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {}, "metadata": {"aiModel": "assistant-x"}, "territory": "Val de Loire"}`)
	md := res.Document.Metadata

	assert.Equal(t, "assistant-x", md["aiModel"])
	assert.Equal(t, "2026-03-14", md["sourcingDate"])
	assert.Equal(t, "2026-03-14T09:30:00Z", md["importDate"])
	assert.Equal(t, "standard", md["validationLevel"])
	assert.Equal(t, "Val de Loire", md["territory"])

	assert.Contains(t, res.Corrections, `moved unknown top-level field "territory" into metadata`)
	assert.Contains(t, res.Corrections, `metadata: set sourcingDate to "2026-03-14"`)
	assert.False(t, containsPrefix(res.Corrections, "metadata: set aiModel"))
}

func TestNormalizeAtLevel_RecordsValidationLevel(t *testing.T) {
	n := newNormalizer()
	parsed := map[string]any{"dimensions": map[string]any{}}

	res, err := n.NormalizeAtLevel(parsed, normalizer.LevelStrict)
	require.NoError(t, err)
	assert.Equal(t, "strict", res.Document.Metadata["validationLevel"])
	assert.Contains(t, res.Corrections, `metadata: set validationLevel to "strict"`)

	res, err = n.NormalizeAtLevel(parsed, "")
	require.NoError(t, err)
	assert.Equal(t, "standard", res.Document.Metadata["validationLevel"])

	res, err = n.NormalizeAtLevel(map[string]any{
		"dimensions": map[string]any{},
		"metadata":   map[string]any{"validationLevel": "custom"},
	}, normalizer.LevelStrict)
	require.NoError(t, err)
	assert.Equal(t, "custom", res.Document.Metadata["validationLevel"])
}

func TestNormalize_AnomalyWarnings(t *testing.T) {
	res := normalizeText(t, `{"dimensions": {"hydrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}}}}`)
	assert.Equal(t, []string{
		"only 1 of 8 canonical domains present",
		"only 0 source(s) provided, at least 2 expected",
		"no fables provided",
	}, res.Warnings)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	data := map[string]any{"rivers": []any{"Loire"}}
	input := map[string]any{
		"dimensions": map[string]any{
			"hydrology":  map[string]any{"description": "Rivers and springs", "data": data},
			"hydrologie": map[string]any{"data": map[string]any{"lakes": 2.0}},
		},
	}
	_, err := newNormalizer().Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"rivers": []any{"Loire"}}, data)
}

func TestNormalize_RoundTripIsStable(t *testing.T) {
	messy := "{\n" +
		"  // generated by an assistant\n" +
		"  'domains': {\n" +
		"    'hydrologie': {'description': (\"Rivers and springs of the valley\"), 'data': {'rivers': ['Loire', 'Cher',], 'flood': True}},\n" +
		"    'especes': {'lynx': 'rare', 'heron': 'common'},\n" +
		"    'leviersEtActivites': {'hedgerows': 'yes', 'tourism': None},\n" +
		"    'fables': [{'title': 'The heron king', 'text': 'A heron ruled the marsh for a hundred winters.', 'order': 1}],\n" +
		"  },\n" +
		"  \"sources\": [{\"title\": “Atlas des eaux”, \"reliability\": 'haute', \"link\": \"[atlas](https://example.org/atlas)\"}],\n" +
		"  \"note\": \"first line\"\n" +
		"     \"second line\",\n" +
		"}"

	first := normalizeText(t, messy)
	require.NotEmpty(t, first.Corrections)

	out, err := parser.Marshal(first.Document)
	require.NoError(t, err)

	second := normalizeText(t, string(out))
	assert.Empty(t, second.Corrections)
	if diff := cmp.Diff(first.Document, second.Document); diff != "" {
		t.Errorf("round trip changed the document (-first +second):\n%s", diff)
	}
}

func TestNormalize_EmptyFableCollectionsRoundTrip(t *testing.T) {
	first := normalizeText(t, `{"dimensions": {"hydrology": {"description": "Rivers and springs", "data": {"rivers": ["Loire"]}}},
		"fables": [{"title": "The heron king", "mainContent": "A heron ruled the marsh for a hundred winters and never left it.", "tags": [], "variations": {}}]}`)
	require.Len(t, first.Document.Fables, 1)
	assert.Nil(t, first.Document.Fables[0].Tags)
	assert.Nil(t, first.Document.Fables[0].Variations)

	out, err := parser.Marshal(first.Document)
	require.NoError(t, err)

	second := normalizeText(t, string(out))
	assert.Empty(t, second.Corrections)
	if diff := cmp.Diff(first.Document, second.Document); diff != "" {
		t.Errorf("round trip changed the document (-first +second):\n%s", diff)
	}
}
