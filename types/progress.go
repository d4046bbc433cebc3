package types

// EventType discriminates progress events on the wire.
type EventType string

const (
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// ProgressEvent is the tagged union streamed to clients while a job
// runs. Counter fields are pointers so that zero values still
// serialize on progress events while staying absent on status/error
// events. The embedded result flattens into the complete event so its
// JSON matches the synchronous /extract response.
type ProgressEvent struct {
	Type       EventType `json:"type"`
	Message    string    `json:"message,omitempty"`
	Current    *int      `json:"current,omitempty"`
	Total      *int      `json:"total,omitempty"`
	Percentage *int      `json:"percentage,omitempty"`
	Status     string    `json:"status,omitempty"`
	VideoTitle string    `json:"video_title,omitempty"`

	*ExtractResult
}

// Terminal reports whether this event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// SkippedVideo records why one playlist item produced no output.
type SkippedVideo struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// ExtractResult is the full job summary carried by the complete event
// and by the synchronous /extract response.
type ExtractResult struct {
	Success       bool           `json:"success"`
	TotalVideos   int            `json:"total_videos"`
	Extracted     int            `json:"extracted"`
	Skipped       int            `json:"skipped"`
	Preview       string         `json:"preview,omitempty"`
	Filename      string         `json:"filename,omitempty"`
	Files         []FileInfo     `json:"files,omitempty"`
	StrategyUsed  string         `json:"strategy_used,omitempty"`
	Warnings      string         `json:"warnings,omitempty"`
	SkippedVideos []SkippedVideo `json:"skipped_videos"`
}

// StatusEvent builds a status event. pct < 0 omits the percentage.
func StatusEvent(message string, pct int) ProgressEvent {
	ev := ProgressEvent{Type: EventStatus, Message: message}
	if pct >= 0 {
		ev.Percentage = &pct
	}
	return ev
}

// ProgressTick builds a progress event for current/total with the
// given status line and item title.
func ProgressTick(current, total, pct int, status, title string) ProgressEvent {
	return ProgressEvent{
		Type:       EventProgress,
		Current:    &current,
		Total:      &total,
		Percentage: &pct,
		Status:     status,
		VideoTitle: title,
	}
}

// CompleteEvent wraps the final result as the terminal success event.
func CompleteEvent(result *ExtractResult) ProgressEvent {
	return ProgressEvent{Type: EventComplete, ExtractResult: result}
}

// ErrorEvent builds the terminal failure event.
func ErrorEvent(message string) ProgressEvent {
	return ProgressEvent{Type: EventError, Message: message}
}
