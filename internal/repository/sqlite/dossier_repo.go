package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/port"
)

type dossierRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDossierRepo creates a new SQLite-backed DossierRepository.
func NewDossierRepo(db *sqlx.DB) port.DossierRepository {
	return &dossierRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *dossierRepo) Save(ctx context.Context, targets dossier.Targets, doc *dossier.ImportDocument, scores domain.Scores) (*domain.DossierRecord, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("sqlite dossierRepo.Save marshal: %w", err)
	}
	now := r.now()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dossiers (
			id, territory_id, dossier_id, document,
			completeness_score, quality_score, revision, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (territory_id, dossier_id) DO UPDATE SET
			document = excluded.document,
			completeness_score = excluded.completeness_score,
			quality_score = excluded.quality_score,
			revision = dossiers.revision + 1,
			updated_at = excluded.updated_at`,
		uuid.NewString(), targets.TerritoryID, targets.DossierID, body,
		scores.Completeness, scores.Quality, now, now)
	if err != nil {
		return nil, fmt.Errorf("sqlite dossierRepo.Save: %w", err)
	}
	return r.GetByTargets(ctx, targets)
}

func (r *dossierRepo) GetByTargets(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error) {
	var rec domain.DossierRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM dossiers WHERE territory_id = ? AND dossier_id = ?",
		targets.TerritoryID, targets.DossierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite dossierRepo.GetByTargets: %w", err)
	}
	return &rec, nil
}
