package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// captionStrategy is one attempt configuration for fetching captions.
// The provider rejects some player clients for some videos, so the
// fetch walks a fallback ladder until one produces a caption file.
type captionStrategy struct {
	name   string
	client string // youtube player_client extractor arg, "" for default
	cookie string // cookie file path, "" for none
}

func (c *Client) captionStrategies(cookieFile string) []captionStrategy {
	strategies := []captionStrategy{
		{name: "web_client", client: "web"},
		{name: "android_client", client: "android"},
		{name: "ios_client", client: "ios"},
		{name: "default"},
	}
	if cookieFile != "" {
		strategies = append([]captionStrategy{
			{name: "cookie_file", client: "web", cookie: cookieFile},
		}, strategies...)
	}
	return strategies
}

// Transcript fetches the English captions for one video and reduces
// them to spoken text. Caption files land in TempDir and are removed
// once cleaned.
func (c *Client) Transcript(ctx context.Context, video Video, cookieFile string) (TranscriptResult, error) {
	outTemplate := filepath.Join(c.TempDir, video.ID+".%(ext)s")

	var lastErr *ProviderError
	for i, strategy := range c.captionStrategies(cookieFile) {
		if i > 0 && c.StrategyDelay > 0 {
			select {
			case <-time.After(c.StrategyDelay):
			case <-ctx.Done():
				return TranscriptResult{}, Classify("", ctx.Err())
			}
		}

		runCtx, cancel := context.WithTimeout(ctx, c.Timeout)
		dl := ytdlp.New().
			NoWarnings().
			SkipDownload().
			WriteSubs().
			WriteAutoSubs().
			SubLangs("en").
			ConvertSubs("vtt").
			IgnoreErrors().
			Output(outTemplate)
		if strategy.client != "" {
			dl = dl.ExtractorArgs("youtube:player_client=" + strategy.client)
		}
		if strategy.cookie != "" {
			dl = dl.Cookies(strategy.cookie)
		}

		res, err := dl.Run(runCtx, video.URL)
		cancel()

		if vtt := findCaptionFile(c.TempDir, video.ID); vtt != "" {
			data, rerr := os.ReadFile(vtt)
			_ = os.Remove(vtt)
			if rerr != nil {
				lastErr = &ProviderError{Kind: KindProvider, Detail: rerr.Error()}
				continue
			}
			text := CleanTranscript(string(data))
			if text == NoSpeech {
				return TranscriptResult{}, &ProviderError{Kind: KindNoCaptions, Detail: "no clear speech detected"}
			}
			return TranscriptResult{Text: text, Strategy: strategy.name}, nil
		}

		output := ""
		if res != nil {
			output = res.Stderr + "\n" + res.Stdout
		}
		perr := Classify(output, err)
		if !perr.Transient() && perr.Kind != KindMembersOnly {
			// Permanent: no other strategy will change the answer.
			return TranscriptResult{}, perr
		}
		lastErr = perr
	}

	if lastErr == nil {
		lastErr = &ProviderError{Kind: KindNoCaptions, Detail: "no caption file produced"}
	}
	return TranscriptResult{}, lastErr
}

// findCaptionFile locates the largest usable caption file yt-dlp wrote
// for the video. The tool's output naming varies (id.vtt, id.en.vtt),
// so the match is by prefix.
func findCaptionFile(dir, videoID string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestSize int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".vtt") || !strings.HasPrefix(name, videoID) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() <= 50 {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, name)
			bestSize = info.Size()
		}
	}
	return best
}
