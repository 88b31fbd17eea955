package router

import (
	"github.com/gin-gonic/gin"

	"clauselens/internal/handler"
	"clauselens/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	documentH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	v1.GET("/health/providers", healthH.Providers)

	docs := v1.Group("/documents")
	docs.POST("/analyze", documentH.Analyze)
	docs.GET("", documentH.List)
	docs.GET("/:id", documentH.GetStatus)
	docs.GET("/:id/clauses", documentH.GetClauses)
	docs.GET("/:id/timeline", documentH.GetTimeline)
	docs.DELETE("/:id", documentH.Delete)

	v1.GET("/clauses/:clause_id", documentH.GetClauseDetails)

	return r
}
