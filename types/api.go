package types

// ErrorResponse is the normalized error envelope shared by all
// endpoints: a required error string plus optional hints.
type ErrorResponse struct {
	Error             string   `json:"error"`
	Hints             []string `json:"hints,omitempty"`
	AvailableBrowsers []string `json:"available_browsers,omitempty"`
}

// ExtractRequest is the POST /extract body.
type ExtractRequest struct {
	PlaylistURL string `json:"playlist_url"`
	UseSSE      bool   `json:"use_sse"`
	JobID       string `json:"job_id"`
}

// CheckVideoRequest is the POST /check-video body.
type CheckVideoRequest struct {
	VideoURL   string `json:"video_url"`
	UseCookies bool   `json:"use_cookies"`
}

// CheckVideoResponse reports whether a video is reachable and what the
// provider knows about it.
type CheckVideoResponse struct {
	Success          bool   `json:"success"`
	Accessible       bool   `json:"accessible"`
	Title            string `json:"title,omitempty"`
	Duration         int    `json:"duration,omitempty"`
	IsLive           bool   `json:"is_live,omitempty"`
	Availability     string `json:"availability,omitempty"`
	FormatsAvailable int    `json:"formats_available,omitempty"`
	Error            string `json:"error,omitempty"`
	Hint             string `json:"hint,omitempty"`
}

// DownloadResponse is the POST /download-video result body.
type DownloadResponse struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message,omitempty"`
	Files        []FileInfo `json:"files,omitempty"`
	StrategyUsed string     `json:"strategy_used,omitempty"`
	Warnings     string     `json:"warnings,omitempty"`
}

// FormatsResponse is the POST /list-formats result body.
type FormatsResponse struct {
	Success bool   `json:"success"`
	Formats string `json:"formats"`
}
