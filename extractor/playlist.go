package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// DefaultPlaylistCap bounds how many items one job may process.
const DefaultPlaylistCap = 50

// flatEntry is the subset of yt-dlp's flat-playlist JSON we consume.
type flatEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Resolve expands a playlist reference into an ordered, bounded list
// of videos without fetching content. A bare video URL resolves to a
// single-element list. Sequences longer than the cap are silently
// truncated.
func (c *Client) Resolve(ctx context.Context, url string, opts ResolveOptions) ([]Video, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultPlaylistCap
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	dl := ytdlp.New().
		NoWarnings().
		FlatPlaylist().
		DumpJSON().
		SkipDownload()

	if opts.NoPlaylist {
		dl = dl.NoPlaylist()
	}
	if opts.Start > 0 {
		dl = dl.PlaylistStart(opts.Start)
	}
	end := opts.End
	if end <= 0 || end > limit {
		end = limit
	}
	dl = dl.PlaylistEnd(end)
	if opts.Items != "" {
		dl = dl.PlaylistItems(opts.Items)
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		output := ""
		if res != nil {
			output = res.Stderr + "\n" + res.Stdout
		}
		return nil, Classify(output, err)
	}

	videos := parsePlaylistJSON(res.Stdout)
	if len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

// parsePlaylistJSON decodes yt-dlp's JSON-lines flat-playlist output.
// Lines that fail to decode are skipped; the stream is best-effort.
func parsePlaylistJSON(output string) []Video {
	var videos []Video
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry flatEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.ID == "" {
			continue
		}
		title := entry.Title
		if title == "" {
			title = "Unknown Title"
		}
		videos = append(videos, Video{
			ID:    entry.ID,
			URL:   fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.ID),
			Title: title,
		})
	}
	return videos
}
