package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tubescribe/services"
	"tubescribe/types"
	"tubescribe/websocket"
)

// JobHandler exposes the job registry and its WebSocket mirror.
type JobHandler struct {
	coordinator *services.Coordinator
	hub         websocket.Hub
}

func NewJobHandler(coordinator *services.Coordinator, hub websocket.Hub) *JobHandler {
	return &JobHandler{coordinator: coordinator, hub: hub}
}

// GetJobs handles GET /api/jobs
func (h *JobHandler) GetJobs(c *gin.Context) {
	jobs := h.coordinator.Jobs()
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// GetJob handles GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, ok := h.coordinator.Snapshot(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// CancelJob handles POST /api/jobs/:id/cancel. Cancellation is a flag
// the job checks between items, so the response only acknowledges the
// request.
func (h *JobHandler) CancelJob(c *gin.Context) {
	if !h.coordinator.Cancel(c.Param("id")) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "job not found or already finished"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WebSocketJob handles GET /api/ws/jobs/:id
func (h *JobHandler) WebSocketJob(c *gin.Context) {
	h.upgrade(c, c.Param("id"))
}

// WebSocketAll handles GET /api/ws/jobs
func (h *JobHandler) WebSocketAll(c *gin.Context) {
	h.upgrade(c, "all")
}

func (h *JobHandler) upgrade(c *gin.Context, jobID string) {
	upgrader := websocket.GetUpgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	client := websocket.NewClient(h.hub, conn, jobID)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
