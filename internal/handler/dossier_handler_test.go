package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/handler"
	"terroir/mocks"
)

func dossierRouter(svc *mocks.MockImportService) *gin.Engine {
	h := handler.NewDossierHandler(svc)
	r := gin.New()
	r.GET("/territories/:territoryId/dossiers/:dossierId", h.Get)
	r.GET("/territories/:territoryId/dossiers/:dossierId/imports", h.History)
	return r
}

func TestDossierHandler_Get(t *testing.T) {
	svc := new(mocks.MockImportService)
	targets := dossier.Targets{TerritoryID: "drome", DossierID: "2026"}
	svc.On("Get", mock.Anything, targets).Return(&domain.DossierRecord{TerritoryID: "drome", Revision: 3}, nil)
	svc.On("Get", mock.Anything, dossier.Targets{TerritoryID: "drome", DossierID: "missing"}).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/territories/drome/dossiers/2026", http.NoBody)
	dossierRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revision":3`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/territories/drome/dossiers/missing", http.NoBody)
	dossierRouter(svc).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDossierHandler_History(t *testing.T) {
	svc := new(mocks.MockImportService)
	targets := dossier.Targets{TerritoryID: "drome", DossierID: "2026"}
	svc.On("History", mock.Anything, targets, 10, 20).
		Return([]domain.ImportAuditEntry{{Action: domain.ImportActionCommit}}, 11, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/territories/drome/dossiers/2026/imports?offset=10&limit=500", http.NoBody)
	dossierRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, &handler.PagMeta{Total: 11, Offset: 10, Limit: 20}, resp.Meta)
	svc.AssertExpectations(t)
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	for _, tt := range []struct {
		name   string
		err    error
		status int
	}{
		{"ready", nil, http.StatusOK},
		{"db_down", errors.New("refused"), http.StatusServiceUnavailable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(stubPinger{err: tt.err})
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)
			h.Readiness(c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
