package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/port"
)

type importAuditRepo struct {
	db *sqlx.DB
}

// NewImportAuditRepo creates a new SQLite-backed ImportAuditRepository.
func NewImportAuditRepo(db *sqlx.DB) port.ImportAuditRepository {
	return &importAuditRepo{db: db}
}

func (r *importAuditRepo) Create(ctx context.Context, entry *domain.ImportAuditEntry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	summary := []byte(entry.Summary)
	if len(summary) == 0 {
		summary = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_audit_log (id, territory_id, dossier_id, action, actor, archive_key, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.TerritoryID, entry.DossierID, string(entry.Action), entry.Actor, entry.ArchiveKey, summary, createdAt)
	if err != nil {
		return fmt.Errorf("sqlite importAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *importAuditRepo) ListByTargets(ctx context.Context, targets dossier.Targets, offset, limit int) ([]domain.ImportAuditEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM import_audit_log WHERE territory_id = ? AND dossier_id = ?`,
		targets.TerritoryID, targets.DossierID)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite importAuditRepo.ListByTargets count: %w", err)
	}

	var entries []domain.ImportAuditEntry
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM import_audit_log
		 WHERE territory_id = ? AND dossier_id = ?
		 ORDER BY rowid DESC
		 LIMIT ? OFFSET ?`,
		targets.TerritoryID, targets.DossierID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite importAuditRepo.ListByTargets: %w", err)
	}
	return entries, total, nil
}
