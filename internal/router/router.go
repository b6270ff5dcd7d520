package router

import (
	"github.com/gin-gonic/gin"

	"terroir/internal/config"
	"terroir/internal/handler"
	"terroir/internal/metrics"
	"terroir/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	m *metrics.Metrics,
	importH *handler.ImportHandler,
	dossierH *handler.DossierHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(m))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := r.Group("/api/v1")

	// Dry runs are public
	imports := v1.Group("/imports")
	imports.POST("/sanitize", importH.Sanitize)
	imports.POST("/preview", importH.Preview)

	v1.GET("/validation/rules", importH.Rules)

	territories := v1.Group("/territories/:territoryId/dossiers/:dossierId")
	territories.GET("", dossierH.Get)
	territories.GET("/imports", dossierH.History)

	// Mutating routes require a valid JWT
	protected := v1.Group("/imports")
	protected.Use(middleware.AuthMiddleware(cfg.Auth))
	protected.POST("/commit", importH.Commit)
	protected.POST("/draft", importH.Draft)

	return r
}
