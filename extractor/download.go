package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// downloadStrategy is one attempt configuration for fetching media.
// Public-client attempts run first; cookie-backed attempts only help
// for gated content and run after.
type downloadStrategy struct {
	name    string
	client  string
	cookie  string
	browser string
}

func (c *Client) downloadStrategies(cookieFile string) []downloadStrategy {
	strategies := []downloadStrategy{
		{name: "public web client", client: "web"},
		{name: "public android client", client: "android"},
	}
	if cookieFile != "" {
		strategies = append(strategies,
			downloadStrategy{name: "cookie file (web client)", client: "web", cookie: cookieFile},
			downloadStrategy{name: "cookie file (android client)", client: "android", cookie: cookieFile},
		)
	}
	for _, browser := range c.Browsers {
		strategies = append(strategies, downloadStrategy{
			name:    "browser cookies (" + browser + ")",
			client:  "web",
			browser: browser,
		})
	}
	return strategies
}

// Download fetches one video's media into a private run directory
// under the scratch root and returns the produced file paths.
// Concurrent jobs each get their own directory, so file attribution
// never crosses jobs. Quality preferences resolve against the formats
// the provider reports for this video: highest resolution at or below
// the cap wins.
func (c *Client) Download(ctx context.Context, video Video, opts DownloadOptions) (DownloadResult, error) {
	format := ""
	if opts.Type == "" || opts.Type == "video" {
		heights := c.probeHeights(ctx, video.URL, opts.CookieFile)
		format = FormatSelector(opts.Quality, SelectHeight(heights, opts.Quality))
	}

	runDir, err := c.runScratchDir()
	if err != nil {
		return DownloadResult{}, &ProviderError{Kind: KindProvider, Detail: err.Error()}
	}

	started := time.Now()
	var lastErr *ProviderError
	var warnings string

	for i, strategy := range c.downloadStrategies(opts.CookieFile) {
		if i > 0 && c.StrategyDelay > 0 {
			select {
			case <-time.After(c.StrategyDelay):
			case <-ctx.Done():
				return DownloadResult{}, Classify("", ctx.Err())
			}
		}

		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		dl := ytdlp.New().
			NoWarnings().
			Output(filepath.Join(runDir, "%(title)s.%(ext)s")).
			ExtractorArgs("youtube:player_client=" + strategy.client)

		switch opts.Type {
		case "audio":
			dl = dl.ExtractAudio().AudioFormat("mp3")
		case "subtitle":
			dl = dl.SkipDownload().WriteAutoSubs().SubFormat("srt").SubLangs("en")
		default:
			dl = dl.Format(format)
		}
		if strategy.cookie != "" {
			dl = dl.Cookies(strategy.cookie)
		}
		if strategy.browser != "" {
			dl = dl.CookiesFromBrowser(strategy.browser)
		}

		res, err := dl.Run(runCtx, video.URL)
		cancel()

		paths := newFilesSince(runDir, started)
		if len(paths) > 0 {
			if res != nil && strings.Contains(res.Stderr, "WARNING") {
				warnings = truncate(res.Stderr, 500)
			}
			return DownloadResult{Paths: paths, Strategy: strategy.name, Warnings: warnings}, nil
		}

		output := ""
		if res != nil {
			output = res.Stderr + "\n" + res.Stdout
		}
		perr := Classify(output, err)
		if !perr.Transient() && perr.Kind != KindMembersOnly && perr.Kind != KindAgeRestricted {
			os.RemoveAll(runDir)
			return DownloadResult{}, perr
		}
		lastErr = perr
	}

	os.RemoveAll(runDir)
	if lastErr == nil {
		lastErr = &ProviderError{Kind: KindProvider, Detail: "download produced no files"}
	}
	return DownloadResult{}, lastErr
}

// runScratchDir creates a fresh private directory for one download
// run. The caller of Download owns the returned files and removes the
// directory once they are registered.
func (c *Client) runScratchDir() (string, error) {
	return os.MkdirTemp(c.ScratchDir, "dl-")
}

// probeHeights asks the provider which stream heights exist for a
// video. Failures degrade to an empty list; the format selector still
// honors the cap declaratively.
func (c *Client) probeHeights(ctx context.Context, url, cookieFile string) []int {
	info, err := c.check(ctx, url, cookieFile, "")
	if err != nil {
		return nil
	}
	return info.Heights
}

// newFilesSince lists regular files in dir modified at or after the
// cutoff, in name order.
func newFilesSince(dir string, cutoff time.Time) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		// Ignore in-flight partial downloads.
		if strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().Before(cutoff) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}
