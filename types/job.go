package types

import "time"

// JobMode represents what a job extracts or downloads
type JobMode string

const (
	ModeTranscript JobMode = "transcript"
	ModeVideo      JobMode = "video"
	ModeAudio      JobMode = "audio"
	ModeSubtitle   JobMode = "subtitle"
)

// JobState represents the current state of an extraction job
type JobState string

const (
	JobStatePending    JobState = "pending"
	JobStateResolving  JobState = "resolving"
	JobStateProcessing JobState = "processing"
	JobStateCompleting JobState = "completing"
	JobStateDone       JobState = "done"
	JobStateFailed     JobState = "failed"
)

// ItemOutcome represents the final classification of one playlist item
type ItemOutcome string

const (
	ItemPending ItemOutcome = "pending"
	ItemSuccess ItemOutcome = "success"
	ItemSkipped ItemOutcome = "skipped"
)

// JobRequest describes a job to be created. It is immutable once the
// job starts.
type JobRequest struct {
	URL     string  `json:"url"`
	Mode    JobMode `json:"mode"`
	Quality string  `json:"quality,omitempty"`

	// Playlist selection options, forwarded to the resolver.
	NoPlaylist    bool   `json:"no_playlist,omitempty"`
	PlaylistStart int    `json:"playlist_start,omitempty"`
	PlaylistEnd   int    `json:"playlist_end,omitempty"`
	PlaylistItems string `json:"playlist_items,omitempty"`

	// CookieFile is an opaque path to a caller-supplied cookie blob.
	// The core never parses it, only forwards it to the provider.
	CookieFile string `json:"-"`

	// JobID is optional. When empty the coordinator generates one.
	JobID string `json:"job_id,omitempty"`
}

// JobItem is one video within a job's resolved sequence. Index is
// 1-based. An item is mutated exactly once when processing completes.
type JobItem struct {
	Index      int         `json:"index"`
	URL        string      `json:"url"`
	Title      string      `json:"title,omitempty"`
	Outcome    ItemOutcome `json:"outcome"`
	SkipReason string      `json:"skip_reason,omitempty"`

	// Transcript holds the extracted text in transcript mode. Excluded
	// from snapshots; it only surfaces in the combined artifact.
	Transcript string `json:"-"`

	// Files holds registered artifact files in download mode.
	Files []FileInfo `json:"files,omitempty"`
}

// Job tracks one user-initiated extraction or download run end-to-end.
type Job struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Mode      JobMode   `json:"mode"`
	State     JobState  `json:"state"`
	CreatedAt time.Time `json:"created_at"`

	Items []*JobItem `json:"items,omitempty"`

	// Total is fixed once resolution completes and never changes.
	// Invariant: Extracted + Skipped <= Total at all times, with
	// equality at completion.
	Total     int `json:"total"`
	Extracted int `json:"extracted"`
	Skipped   int `json:"skipped"`

	Artifact *ArtifactRef `json:"artifact,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// ArtifactRef identifies a durable output file in the artifact store.
type ArtifactRef struct {
	Filename    string `json:"filename"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentKind string `json:"content_kind"`
}

// FileInfo describes one downloaded file registered in the artifact
// store.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}
