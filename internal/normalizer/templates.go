package normalizer

import (
	"fmt"

	"terroir/internal/dossier"
)

var templateDescriptions = map[dossier.DomainKey]string{
	dossier.DomainHydrology:             "Water in the territory: watercourses, aquifers, wetlands and their uses.",
	dossier.DomainCharacteristicSpecies: "Plant and animal species that characterize the territory.",
	dossier.DomainLocalVocabulary:       "Words, place names and expressions specific to the territory.",
	dossier.DomainHumanFootprint:        "Traces of human activity: land use, built heritage and landscapes.",
	dossier.DomainLongRangeProjection:   "How the territory could evolve over the coming decades.",
	dossier.DomainAgroecologicalLevers:  "Agroecological practices that can strengthen the territory.",
	dossier.DomainNewActivities:         "Emerging economic and social activities in the territory.",
	dossier.DomainTechnoDiversity:       "Local techniques, tools and know-how, old and new.",
}

// defaultShapes lists the fields each canonical domain is expected to carry.
var defaultShapes = map[dossier.DomainKey][]string{
	dossier.DomainHydrology:             {"watercourses", "groundwater", "uses"},
	dossier.DomainCharacteristicSpecies: {"fauna", "flora"},
	dossier.DomainLocalVocabulary:       {"terms"},
	dossier.DomainHumanFootprint:        {"landUse", "heritage"},
	dossier.DomainLongRangeProjection:   {"horizon", "scenarios"},
	dossier.DomainAgroecologicalLevers:  {"practices"},
	dossier.DomainNewActivities:         {"activities"},
	dossier.DomainTechnoDiversity:       {"techniques"},
}

func templateDescription(key dossier.DomainKey) string {
	if d, ok := templateDescriptions[key]; ok {
		return d
	}
	return fmt.Sprintf("Imported data for %q.", string(key))
}

// defaultShape returns a fresh map holding the expected fields of a domain, each empty.
func defaultShape(key dossier.DomainKey) map[string]any {
	out := make(map[string]any)
	for _, f := range defaultShapes[key] {
		out[f] = []any{}
	}
	return out
}
