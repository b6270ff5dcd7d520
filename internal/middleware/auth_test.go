package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terroir/internal/config"
	"terroir/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var authCfg = config.AuthConfig{Secret: "test-secret", Issuer: "terroir-test"}

func protectedRouter(cfg config.AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(cfg))
	r.GET("/test", func(c *gin.Context) {
		actor, _ := middleware.GetActor(c)
		c.JSON(http.StatusOK, gin.H{"actor": actor})
	})
	return r
}

func call(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := middleware.IssueToken(authCfg, "alice", time.Hour)
	require.NoError(t, err)

	w := call(protectedRouter(authCfg), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp["actor"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired, err := middleware.IssueToken(authCfg, "alice", -time.Minute)
	require.NoError(t, err)
	otherSecret, err := middleware.IssueToken(config.AuthConfig{Secret: "other", Issuer: authCfg.Issuer}, "alice", time.Hour)
	require.NoError(t, err)
	otherIssuer, err := middleware.IssueToken(config.AuthConfig{Secret: authCfg.Secret, Issuer: "someone-else"}, "alice", time.Hour)
	require.NoError(t, err)
	noSubject, err := middleware.IssueToken(authCfg, "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing_header", "", "missing or invalid authorization header"},
		{"basic_scheme", "Basic abc", "missing or invalid authorization header"},
		{"garbage", "Bearer not-a-jwt", "invalid or expired token"},
		{"expired", "Bearer " + expired, "token expired"},
		{"wrong_secret", "Bearer " + otherSecret, "invalid or expired token"},
		{"wrong_issuer", "Bearer " + otherIssuer, "invalid or expired token"},
		{"no_subject", "Bearer " + noSubject, "invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(protectedRouter(authCfg), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
			assert.Equal(t, tt.msg, resp.Error.Message)
		})
	}
}

func TestGetActor_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := middleware.GetActor(c)
	assert.Error(t, err)
}
