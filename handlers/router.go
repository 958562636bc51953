package handlers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// NewRouter builds the gin engine with middleware and all API routes under /api.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestID())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
	}))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	h.RegisterRoutes(r.Group("/api"))
	return r
}

// RegisterRoutes mounts the API endpoints on api.
func (h *Handler) RegisterRoutes(api gin.IRouter) {
	// Folder stretch settings
	api.GET("/folder-settings", h.GetFolderSettings)
	api.POST("/folder-settings", h.SaveFolderSettings)
	api.GET("/folder-settings/curve", h.GetStretchCurve)

	// Reindex
	api.POST("/reindex", h.Reindex)
	api.GET("/reindex/last", h.GetLastReindex)

	// Health and diagnostics
	api.GET("/health", h.HealthCheck)
	api.GET("/metrics", h.GetMetrics)
	api.GET("/error-logs", GetErrorLogs)
	api.DELETE("/error-logs", ClearErrorLogs)
}

// RequestID tags each request with an X-Request-ID, reusing the caller's when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
