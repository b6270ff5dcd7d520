package validator

import (
	"math"

	"terroir/internal/dossier"
)

const (
	domainBaseScore    = 50
	domainKeyScore     = 10
	domainMaxKeyScore  = 50
	errorPenalty       = 15
	warningPenalty     = 5
	domainBonus        = 3
	domainMaxBonus     = 20
	fableBonus         = 2
	fableMaxBonus      = 10
	reliabilityDivisor = 10
)

// CompletenessScore measures canonical domain coverage and depth. Each
// canonical domain with data earns 50 plus 10 per top-level data key (up to
// 50 more); the total is averaged over all canonical domains.
func CompletenessScore(doc *dossier.ImportDocument) int {
	if doc == nil {
		return 0
	}
	canonical := dossier.CanonicalDomains()
	sum := 0
	for _, k := range canonical {
		d, ok := doc.Dimensions[k]
		if !ok || len(d.Data) == 0 {
			continue
		}
		sum += domainBaseScore + min(domainMaxKeyScore, domainKeyScore*len(d.Data))
	}
	return int(math.Round(float64(sum) / float64(len(canonical))))
}

// QualityScore combines diagnostic counts with coverage, source reliability
// and narrative richness, clamped to 0-100.
func QualityScore(doc *dossier.ImportDocument, errors, warnings int) int {
	score := 100.0 - float64(errorPenalty*errors) - float64(warningPenalty*warnings)
	if doc != nil {
		score += float64(min(domainMaxBonus, domainBonus*len(dossier.PresentCanonicalDomains(doc))))
		if n := len(doc.Sources); n > 0 {
			total := 0.0
			for _, s := range doc.Sources {
				total += s.Reliability
			}
			score += total / float64(n) / reliabilityDivisor
		}
		score += float64(min(fableMaxBonus, fableBonus*len(doc.Fables)))
	}
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
