package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	appName string
	version string
	db      Pinger
}

func NewHealthHandler(appName, version string, db Pinger) *HealthHandler {
	return &HealthHandler{appName: appName, version: version, db: db}
}

// Root godoc
// @Summary      Service information
// @Tags         Health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to " + h.appName,
		"version": h.version,
		"docs":    "/docs/index.html",
	})
}

// Health godoc
// @Summary      Liveness and database check
// @Tags         Health
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": h.appName})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": h.appName})
}
