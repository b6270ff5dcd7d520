package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/port"
)

type importAuditRepo struct {
	db *sqlx.DB
}

// NewImportAuditRepo creates a new PostgreSQL-backed ImportAuditRepository.
func NewImportAuditRepo(db *sqlx.DB) port.ImportAuditRepository {
	return &importAuditRepo{db: db}
}

func (r *importAuditRepo) Create(ctx context.Context, entry *domain.ImportAuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_audit_log (id, territory_id, dossier_id, action, actor, archive_key, summary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.TerritoryID, entry.DossierID, entry.Action, entry.Actor, entry.ArchiveKey, entry.Summary)
	if err != nil {
		return fmt.Errorf("importAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *importAuditRepo) ListByTargets(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM import_audit_log WHERE territory_id = $1 AND dossier_id = $2`,
		targets.TerritoryID, targets.DossierID)
	if err != nil {
		return nil, 0, fmt.Errorf("importAuditRepo.ListByTargets count: %w", err)
	}

	var entries []domain.ImportAuditEntry
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM import_audit_log
		 WHERE territory_id = $1 AND dossier_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		targets.TerritoryID, targets.DossierID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("importAuditRepo.ListByTargets: %w", err)
	}
	return entries, total, nil
}
