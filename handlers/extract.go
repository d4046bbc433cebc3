package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tubescribe/services"
	"tubescribe/types"
)

// ExtractHandler serves playlist transcript extraction, either as a
// single blocking response or as an SSE stream of progress events.
type ExtractHandler struct {
	coordinator *services.Coordinator
}

func NewExtractHandler(coordinator *services.Coordinator) *ExtractHandler {
	return &ExtractHandler{coordinator: coordinator}
}

// Extract handles POST /extract
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req types.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.PlaylistURL) == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "playlist_url is required"})
		return
	}
	if !isYouTubeURL(req.PlaylistURL) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}

	job, err := h.coordinator.CreateJob(types.JobRequest{
		URL:   req.PlaylistURL,
		Mode:  types.ModeTranscript,
		JobID: req.JobID,
	})
	if err != nil {
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: err.Error()})
		return
	}

	events, ok := h.coordinator.Attach(c.Request.Context(), job.ID)
	if !ok {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "job vanished before streaming started"})
		return
	}

	if req.UseSSE {
		streamEvents(c, events)
		return
	}

	// Blocking mode drains the feed and returns only the terminal
	// outcome.
	var terminal types.ProgressEvent
	for ev := range events {
		terminal = ev
	}
	if !terminal.Terminal() {
		// The client went away mid-job; the job keeps running and its
		// result stays queryable through the jobs API.
		return
	}
	if terminal.Type == types.EventError {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: terminal.Message})
		return
	}
	c.JSON(http.StatusOK, terminal.ExtractResult)
}

// streamEvents writes each progress event as one SSE data frame. A
// write failure means the client is gone; the job keeps running and
// its result stays queryable through the jobs API.
func streamEvents(c *gin.Context, events <-chan types.ProgressEvent) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", payload); err != nil {
			return
		}
		c.Writer.Flush()
	}
}
