package dossier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/dossier"
)

func TestCanonicalDomains_FixedOrder(t *testing.T) {
	got := dossier.CanonicalDomains()
	require.Len(t, got, 8)
	assert.Equal(t, dossier.DomainHydrology, got[0])
	assert.Equal(t, dossier.DomainTechnoDiversity, got[7])

	got[0] = "mutated"
	assert.Equal(t, dossier.DomainHydrology, dossier.CanonicalDomains()[0])
}

func TestSourceKind_Valid(t *testing.T) {
	assert.True(t, dossier.SourceKindScientific.Valid())
	assert.False(t, dossier.SourceKind("blog").Valid())
	assert.False(t, dossier.SourceKind("").Valid())
}

func TestImportDocument_Clone(t *testing.T) {
	order := 2
	doc := dossier.New()
	doc.Dimensions[dossier.DomainHydrology] = dossier.DimensionData{
		Description: "Rivers and springs",
		Data:        map[string]any{"rivers": []any{"Loire"}},
	}
	doc.Fables = append(doc.Fables, dossier.FableData{Title: "The spring", Order: &order})

	clone := doc.Clone()
	clone.Dimensions[dossier.DomainHydrology].Data["rivers"] = "changed"
	*clone.Fables[0].Order = 9

	assert.Equal(t, []any{"Loire"}, doc.Dimensions[dossier.DomainHydrology].Data["rivers"])
	assert.Equal(t, 2, *doc.Fables[0].Order)
}

func TestPresentAndMissingCanonicalDomains(t *testing.T) {
	doc := dossier.New()
	doc.Dimensions[dossier.DomainNewActivities] = dossier.DimensionData{}
	doc.Dimensions["unmapped"] = dossier.DimensionData{}

	assert.Equal(t, []dossier.DomainKey{dossier.DomainNewActivities}, dossier.PresentCanonicalDomains(doc))
	missing := dossier.MissingCanonicalDomains(doc)
	assert.Len(t, missing, 7)
	assert.NotContains(t, missing, dossier.DomainNewActivities)

	assert.Len(t, dossier.MissingCanonicalDomains(nil), 8)
	assert.Nil(t, dossier.PresentCanonicalDomains(nil))
}
