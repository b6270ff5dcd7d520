package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/repository/sqlite"
)

func newDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDossierRepo_SaveUpsertsAndBumpsRevision(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewDossierRepo(newDB(t))
	targets := dossier.Targets{TerritoryID: "t-1", DossierID: "d-1"}
	doc := dossier.New()
	doc.Dimensions[dossier.DomainHydrology] = dossier.DimensionData{
		Description: "Rivers and springs",
		Data:        map[string]any{"rivers": []any{"Drôme"}},
	}

	first, err := repo.Save(ctx, targets, doc, domain.Scores{Completeness: 12, Quality: 70})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Revision)
	assert.Equal(t, 12, first.CompletenessScore)

	doc.Sources = append(doc.Sources, dossier.SourceData{Title: "Atlas des eaux", Kind: dossier.SourceKindDocumentation, Reliability: 85})
	second, err := repo.Save(ctx, targets, doc, domain.Scores{Completeness: 12, Quality: 81})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Revision)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 81, second.QualityScore)

	var stored dossier.ImportDocument
	require.NoError(t, json.Unmarshal(second.Document, &stored))
	require.Len(t, stored.Sources, 1)
	assert.Equal(t, "Atlas des eaux", stored.Sources[0].Title)
}

func TestDossierRepo_GetByTargetsNotFound(t *testing.T) {
	_, err := sqlite.NewDossierRepo(newDB(t)).GetByTargets(context.Background(), dossier.Targets{TerritoryID: "x", DossierID: "y"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportAuditRepo_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewImportAuditRepo(newDB(t))
	targets := dossier.Targets{TerritoryID: "t-1", DossierID: "d-1"}
	for _, action := range []domain.ImportAction{domain.ImportActionCommitRefused, domain.ImportActionCommit} {
		require.NoError(t, repo.Create(ctx, &domain.ImportAuditEntry{
			ID:          uuid.New(),
			TerritoryID: targets.TerritoryID,
			DossierID:   targets.DossierID,
			Action:      action,
			Actor:       "cli",
			Summary:     json.RawMessage(`{"valid":true}`),
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.ImportAuditEntry{ID: uuid.New(), TerritoryID: "other", DossierID: "d-1", Action: domain.ImportActionDraft}))

	entries, total, err := repo.ListByTargets(ctx, targets, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ImportActionCommit, entries[0].Action)
	assert.JSONEq(t, `{"valid":true}`, string(entries[0].Summary))

	page, total, err := repo.ListByTargets(ctx, targets, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, domain.ImportActionCommitRefused, page[0].Action)
}
