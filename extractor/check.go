package extractor

import (
	"context"
	"encoding/json"

	"github.com/lrstanley/go-ytdlp"
)

// videoJSON is the subset of yt-dlp's --dump-single-json output the
// probe needs.
type videoJSON struct {
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	IsLive       bool    `json:"is_live"`
	Availability string  `json:"availability"`
	Formats      []struct {
		FormatID string `json:"format_id"`
		Height   int    `json:"height"`
	} `json:"formats"`
}

// Check probes whether a video is accessible and returns its metadata
// without downloading anything.
func (c *Client) Check(ctx context.Context, url string, useCookies bool) (VideoInfo, error) {
	browser := ""
	if useCookies && len(c.Browsers) > 0 {
		browser = c.Browsers[0]
	}
	return c.check(ctx, url, "", browser)
}

func (c *Client) check(ctx context.Context, url, cookieFile, browser string) (VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	dl := ytdlp.New().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON()
	if cookieFile != "" {
		dl = dl.Cookies(cookieFile)
	}
	if browser != "" {
		dl = dl.CookiesFromBrowser(browser)
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		output := ""
		if res != nil {
			output = res.Stderr + "\n" + res.Stdout
		}
		return VideoInfo{}, Classify(output, err)
	}

	var v videoJSON
	if uerr := json.Unmarshal([]byte(res.Stdout), &v); uerr != nil {
		return VideoInfo{}, &ProviderError{Kind: KindProvider, Detail: "metadata parsing failed"}
	}

	info := VideoInfo{
		Title:        v.Title,
		Duration:     int(v.Duration),
		IsLive:       v.IsLive,
		Availability: v.Availability,
		FormatCount:  len(v.Formats),
	}
	for _, f := range v.Formats {
		if f.Height > 0 {
			info.Heights = append(info.Heights, f.Height)
		}
	}
	return info, nil
}

// Formats returns the provider's raw format listing for a URL.
func (c *Client) Formats(ctx context.Context, url string, useCookies bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	dl := ytdlp.New().
		NoWarnings().
		ListFormats()
	if useCookies && len(c.Browsers) > 0 {
		dl = dl.CookiesFromBrowser(c.Browsers[0])
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		output := ""
		if res != nil {
			output = res.Stderr + "\n" + res.Stdout
		}
		return "", Classify(output, err)
	}
	return res.Stdout, nil
}
