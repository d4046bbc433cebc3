package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tubescribe/config"
	"tubescribe/services"
)

// HealthHandler serves liveness and service status endpoints.
type HealthHandler struct {
	coordinator *services.Coordinator
	started     time.Time
}

func NewHealthHandler(coordinator *services.Coordinator) *HealthHandler {
	return &HealthHandler{coordinator: coordinator, started: time.Now()}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tubescribe"})
}

// Status handles GET /api/status
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"jobs":       len(h.coordinator.Jobs()),
		"output_dir": config.GetOutputDir(),
		"media_dir":  config.GetMediaDir(),
	})
}
