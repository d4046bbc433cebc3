package websocket

import (
	"time"

	"tubescribe/types"
)

// Message is one progress event as delivered over a WebSocket, tagged
// with its job.
type Message struct {
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
	types.ProgressEvent
}
