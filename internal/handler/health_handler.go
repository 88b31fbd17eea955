package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"clauselens/internal/analysis"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db       *sqlx.DB
	analyzer *analysis.Analyzer
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, analyzer *analysis.Analyzer) *HealthHandler {
	return &HealthHandler{db: db, analyzer: analyzer}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Providers handles GET /api/v1/health/providers. It probes each configured
// reasoning provider with a trivial prompt.
func (h *HealthHandler) Providers(c *gin.Context) {
	statuses := h.analyzer.HealthCheck(c.Request.Context())
	RespondOK(c, statuses)
}
