package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticewala/ingest"
	"noticewala/store"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(coordinator *ingest.Coordinator, st store.Store) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterCrawlRoutes(r, coordinator, st)
	RegisterHealthRoutes(r)
	return r
}

// RegisterHealthRoutes registers the liveness endpoint.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}
