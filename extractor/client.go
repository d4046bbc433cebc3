package extractor

import "time"

// Video is one resolved playlist entry.
type Video struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ResolveOptions controls playlist resolution.
type ResolveOptions struct {
	// NoPlaylist treats a watch URL with a list parameter as a single
	// video.
	NoPlaylist bool
	// Start/End/Items narrow the playlist range before the cap applies.
	Start int
	End   int
	Items string
	// Limit caps the resolved sequence; 0 means the default of 50.
	Limit int
}

// DownloadOptions controls a media download for one item.
type DownloadOptions struct {
	Type       string // video, audio, subtitle
	Quality    string // best, 720p, 480p, 360p, worst
	CookieFile string
}

// TranscriptResult carries extracted caption text and the strategy
// that produced it.
type TranscriptResult struct {
	Text     string
	Strategy string
}

// DownloadResult carries the files one item's download produced, still
// in the scratch directory.
type DownloadResult struct {
	Paths    []string
	Strategy string
	Warnings string
}

// VideoInfo is the accessibility probe result for one video.
type VideoInfo struct {
	Title        string
	Duration     int
	IsLive       bool
	Availability string
	FormatCount  int
	Heights      []int
}

// Client invokes yt-dlp through go-ytdlp. It is the only component
// that talks to the provider; everything above it sees classified
// errors and plain values.
type Client struct {
	// TempDir receives caption files before cleaning.
	TempDir string
	// ScratchDir receives media downloads before they are registered
	// as artifacts.
	ScratchDir string
	// Browsers lists browsers usable for --cookies-from-browser, in
	// preference order. Empty disables browser cookies.
	Browsers []string
	// Timeout bounds each provider invocation.
	Timeout time.Duration
	// StrategyDelay spaces consecutive fallback strategies to avoid
	// tripping rate limits. Zero in tests.
	StrategyDelay time.Duration
}

// DefaultTimeout bounds a single yt-dlp invocation.
const DefaultTimeout = 60 * time.Second

// NewClient builds a provider client with sane defaults.
func NewClient(tempDir, scratchDir string, browsers []string) *Client {
	return &Client{
		TempDir:       tempDir,
		ScratchDir:    scratchDir,
		Browsers:      browsers,
		Timeout:       DefaultTimeout,
		StrategyDelay: 500 * time.Millisecond,
	}
}
