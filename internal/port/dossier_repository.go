package port

import (
	"context"

	"terroir/internal/domain"
	"terroir/internal/dossier"
)

// DossierRepository defines the contract for committed dossier persistence.
// Save replaces any dossier already stored under the same targets and bumps its revision.
type DossierRepository interface {
	Save(ctx context.Context, targets dossier.Targets, doc *dossier.ImportDocument, scores domain.Scores) (*domain.DossierRecord, error)
	GetByTargets(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error)
}
