package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/port"
)

type dossierRepo struct {
	db *sqlx.DB
}

// NewDossierRepo creates a new PostgreSQL-backed DossierRepository.
func NewDossierRepo(db *sqlx.DB) port.DossierRepository {
	return &dossierRepo{db: db}
}

func (r *dossierRepo) Save(ctx context.Context, targets dossier.Targets, doc *dossier.ImportDocument, scores domain.Scores) (*domain.DossierRecord, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("dossierRepo.Save marshal: %w", err)
	}

	rec := &domain.DossierRecord{
		ID:                uuid.New(),
		TerritoryID:       targets.TerritoryID,
		DossierID:         targets.DossierID,
		Document:          body,
		CompletenessScore: scores.Completeness,
		QualityScore:      scores.Quality,
	}

	query := `
		INSERT INTO dossiers (
			id, territory_id, dossier_id, document,
			completeness_score, quality_score, revision,
			created_at, updated_at
		) VALUES (
			:id, :territory_id, :dossier_id, :document,
			:completeness_score, :quality_score, 1,
			NOW(), NOW()
		)
		ON CONFLICT (territory_id, dossier_id) DO UPDATE SET
			document = EXCLUDED.document,
			completeness_score = EXCLUDED.completeness_score,
			quality_score = EXCLUDED.quality_score,
			revision = dossiers.revision + 1,
			updated_at = NOW()
		RETURNING *`

	rows, err := r.db.NamedQueryContext(ctx, query, rec)
	if err != nil {
		return nil, fmt.Errorf("dossierRepo.Save: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("dossierRepo.Save: %w", err)
		}
		return nil, fmt.Errorf("dossierRepo.Save: no row returned")
	}
	var saved domain.DossierRecord
	if err := rows.StructScan(&saved); err != nil {
		return nil, fmt.Errorf("dossierRepo.Save scan: %w", err)
	}
	return &saved, nil
}

func (r *dossierRepo) GetByTargets(ctx context.Context, targets dossier.Targets) (*domain.DossierRecord, error) {
	var rec domain.DossierRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM dossiers WHERE territory_id = $1 AND dossier_id = $2",
		targets.TerritoryID, targets.DossierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("dossierRepo.GetByTargets: %w", err)
	}
	return &rec, nil
}
