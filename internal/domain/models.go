package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Scores are the two numeric summaries attached to a committed dossier.
type Scores struct {
	Completeness int `json:"completeness"`
	Quality      int `json:"quality"`
}

// DossierRecord is a committed dossier as stored for one territory.
type DossierRecord struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	TerritoryID       string          `db:"territory_id" json:"territory_id"`
	DossierID         string          `db:"dossier_id" json:"dossier_id"`
	Document          json.RawMessage `db:"document" json:"document"`
	CompletenessScore int             `db:"completeness_score" json:"completeness_score"`
	QualityScore      int             `db:"quality_score" json:"quality_score"`
	Revision          int             `db:"revision" json:"revision"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// ImportAuditEntry records one preview, commit or draft attempt.
type ImportAuditEntry struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	TerritoryID string          `db:"territory_id" json:"territory_id"`
	DossierID   string          `db:"dossier_id" json:"dossier_id"`
	Action      ImportAction    `db:"action" json:"action"`
	Actor       string          `db:"actor" json:"actor"`
	ArchiveKey  string          `db:"archive_key" json:"archive_key"`
	Summary     json.RawMessage `db:"summary" json:"summary"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// AuditSummary is the JSON stored in ImportAuditEntry.Summary.
type AuditSummary struct {
	Valid             bool     `json:"valid"`
	Errors            int      `json:"errors"`
	Warnings          int      `json:"warnings"`
	Corrections       int      `json:"corrections"`
	CompletenessScore int      `json:"completeness_score"`
	QualityScore      int      `json:"quality_score"`
	SanitizerSteps    []string `json:"sanitizer_steps"`
}
