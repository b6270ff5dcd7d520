package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"terroir/internal/config"
	"terroir/internal/domain"
	"terroir/internal/handler"
	"terroir/internal/metrics"
	"terroir/internal/middleware"
	"terroir/internal/router"
	"terroir/internal/service"
	"terroir/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(svc *mocks.MockImportService) (*gin.Engine, *config.Config) {
	cfg := &config.Config{
		Auth: config.AuthConfig{Secret: "router-secret"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	m := metrics.New(func() int { return 0 })
	r := router.Setup(cfg, m,
		handler.NewImportHandler(svc),
		handler.NewDossierHandler(svc),
		handler.NewHealthHandler(nil),
	)
	return r, cfg
}

func TestRouter_PublicRoutes(t *testing.T) {
	svc := new(mocks.MockImportService)
	svc.On("Sanitize", "x").Return(&service.SanitizeResult{Sanitized: "x"})
	r, _ := setup(svc)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	body, _ := json.Marshal(handler.ImportRequest{Raw: "x"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/imports/sanitize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_CommitRequiresToken(t *testing.T) {
	svc := new(mocks.MockImportService)
	svc.On("Commit", mock.Anything, mock.MatchedBy(func(in *service.CommitInput) bool { return in.Actor == "alice" })).
		Return(nil, domain.ErrTargetsRequired)
	r, cfg := setup(svc)

	body, _ := json.Marshal(handler.ImportRequest{Raw: "x"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/imports/commit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Commit")

	token, err := middleware.IssueToken(cfg.Auth, "alice", time.Minute)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/imports/commit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
