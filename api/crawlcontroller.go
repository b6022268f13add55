// Package api exposes the crawl pipeline over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"noticewala/ingest"
	"noticewala/store"
)

// CrawlController serves crawl trigger and inspection endpoints.
type CrawlController struct {
	coordinator *ingest.Coordinator
	store       store.Store
}

// RegisterCrawlRoutes registers crawl pipeline endpoints.
func RegisterCrawlRoutes(r *gin.Engine, coordinator *ingest.Coordinator, st store.Store) {
	ctrl := &CrawlController{coordinator: coordinator, store: st}

	g := r.Group("/api/crawl")
	g.POST("/run", ctrl.handleRunCycle)
	g.POST("/run/:source", ctrl.handleRunSource)
	g.GET("/sources", ctrl.handleListSources)
	g.GET("/stats", ctrl.handleStats)
	g.GET("/archive/:source/:day/:id", ctrl.handleReplayArchive)
}

// handleRunCycle runs a full crawl cycle synchronously and returns the
// summary.
func (ctrl *CrawlController) handleRunCycle(c *gin.Context) {
	summary := ctrl.coordinator.RunCycle(c.Request.Context())
	c.JSON(http.StatusOK, summary)
}

// handleRunSource crawls one named source.
func (ctrl *CrawlController) handleRunSource(c *gin.Context) {
	result, err := ctrl.coordinator.RunSource(c.Request.Context(), c.Param("source"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleListSources returns the registered sources with their crawl
// bookkeeping.
func (ctrl *CrawlController) handleListSources(c *gin.Context) {
	srcs, err := ctrl.store.Sources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sources: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": srcs, "count": len(srcs)})
}

// handleReplayArchive loads an archived announcement back from object
// storage by source, creation day (yyyy-mm-dd) and ID.
func (ctrl *CrawlController) handleReplayArchive(c *gin.Context) {
	archiver := ctrl.coordinator.Archiver()
	if archiver == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archival is not configured"})
		return
	}

	ann, err := archiver.Replay(c.Request.Context(),
		c.Param("source"), c.Param("day"), c.Param("id"))
	if err != nil {
		if errors.Is(err, ingest.ErrNotArchived) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not archived"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load archive: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, ann)
}

// handleStats reports stored totals and the last cycle summary.
func (ctrl *CrawlController) handleStats(c *gin.Context) {
	count, err := ctrl.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count announcements: " + err.Error()})
		return
	}

	resp := gin.H{
		"announcement_count": count,
		"generated_at":       time.Now().UTC(),
	}
	if last := ctrl.coordinator.LastCycle(); last != nil {
		resp["last_cycle"] = last
	}
	c.JSON(http.StatusOK, resp)
}
