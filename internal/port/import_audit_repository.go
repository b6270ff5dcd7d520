package port

import (
	"context"

	"terroir/internal/domain"
	"terroir/internal/dossier"
)

// ImportAuditRepository defines the contract for import audit log persistence.
type ImportAuditRepository interface {
	Create(ctx context.Context, entry *domain.ImportAuditEntry) error
	ListByTargets(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error)
}
