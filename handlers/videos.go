package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tubescribe/extractor"
	"tubescribe/services"
	"tubescribe/types"
)

// Prober answers accessibility and format questions about a single
// video without creating a job.
type Prober interface {
	Check(ctx context.Context, url string, useCookies bool) (extractor.VideoInfo, error)
	Formats(ctx context.Context, url string, useCookies bool) (string, error)
}

// VideoHandler serves single-video probing and media downloads.
type VideoHandler struct {
	prober      Prober
	coordinator *services.Coordinator
	cookiesDir  string
	browsers    []string
}

func NewVideoHandler(prober Prober, coordinator *services.Coordinator, cookiesDir string, browsers []string) *VideoHandler {
	return &VideoHandler{
		prober:      prober,
		coordinator: coordinator,
		cookiesDir:  cookiesDir,
		browsers:    browsers,
	}
}

// CheckVideo handles POST /check-video
func (h *VideoHandler) CheckVideo(c *gin.Context) {
	var req types.CheckVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "video_url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	info, err := h.prober.Check(ctx, req.VideoURL, req.UseCookies)
	if err != nil {
		resp := types.CheckVideoResponse{Success: false, Accessible: false, Error: err.Error()}
		var perr *extractor.ProviderError
		if errors.As(err, &perr) {
			resp.Error = perr.Reason()
		}
		if req.UseCookies {
			resp.Hint = "the video may require membership or a cookies file from a logged-in session"
		} else {
			resp.Hint = "retry with use_cookies set to true"
		}
		c.JSON(http.StatusBadRequest, resp)
		return
	}

	c.JSON(http.StatusOK, types.CheckVideoResponse{
		Success:          true,
		Accessible:       true,
		Title:            info.Title,
		Duration:         info.Duration,
		IsLive:           info.IsLive,
		Availability:     info.Availability,
		FormatsAvailable: info.FormatCount,
	})
}

// ListFormats handles POST /list-formats
func (h *VideoHandler) ListFormats(c *gin.Context) {
	var req types.CheckVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "video_url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	formats, err := h.prober.Formats(ctx, req.VideoURL, req.UseCookies)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, types.FormatsResponse{Success: true, Formats: formats})
}

// DownloadVideo handles POST /download-video. The request is multipart
// so a cookies file can ride along with the form fields.
func (h *VideoHandler) DownloadVideo(c *gin.Context) {
	videoURL := strings.TrimSpace(c.PostForm("video_url"))
	if videoURL == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "video_url is required"})
		return
	}
	if !isYouTubeURL(videoURL) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid YouTube URL"})
		return
	}

	mode, err := parseMode(c.DefaultPostForm("download_type", "video"))
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}

	cookieFile, err := h.saveCookieUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	if cookieFile != "" {
		defer os.Remove(cookieFile)
	}

	// Single-video downloads are the default; yes_playlist=true opts
	// into expanding a playlist URL.
	req := types.JobRequest{
		URL:           videoURL,
		Mode:          mode,
		Quality:       c.DefaultPostForm("quality", "best"),
		NoPlaylist:    c.DefaultPostForm("yes_playlist", "false") != "true",
		PlaylistItems: c.PostForm("playlist_items"),
		CookieFile:    cookieFile,
	}
	req.PlaylistStart, _ = strconv.Atoi(c.PostForm("playlist_start"))
	req.PlaylistEnd, _ = strconv.Atoi(c.PostForm("playlist_end"))

	job, err := h.coordinator.CreateJob(req)
	if err != nil {
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: err.Error()})
		return
	}
	events, ok := h.coordinator.Attach(c.Request.Context(), job.ID)
	if !ok {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "job vanished before completion"})
		return
	}

	var terminal types.ProgressEvent
	for ev := range events {
		terminal = ev
	}
	if !terminal.Terminal() {
		return
	}
	if terminal.Type == types.EventError {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: terminal.Message})
		return
	}

	result := terminal.ExtractResult
	if result.Extracted == 0 && result.TotalVideos > 0 {
		reason := "download failed"
		if len(result.SkippedVideos) > 0 {
			reason = result.SkippedVideos[0].Reason
		}
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: reason,
			Hints: []string{
				"upload a cookies file exported from a logged-in browser session",
				"or install a browser on this host so cookies can be read directly",
			},
			AvailableBrowsers: h.browsers,
		})
		return
	}

	c.JSON(http.StatusOK, types.DownloadResponse{
		Success:      true,
		Message:      "download complete",
		Files:        result.Files,
		StrategyUsed: result.StrategyUsed,
		Warnings:     result.Warnings,
	})
}

// saveCookieUpload persists an uploaded cookies file after a shape
// check. The upload is optional; an absent file returns "".
func (h *VideoHandler) saveCookieUpload(c *gin.Context) (string, error) {
	header, err := c.FormFile("cookie_file")
	if err != nil {
		return "", nil
	}
	src, err := header.Open()
	if err != nil {
		return "", errors.New("cookies file could not be read")
	}
	defer src.Close()

	blob, err := io.ReadAll(io.LimitReader(src, 1<<20))
	if err != nil {
		return "", errors.New("cookies file could not be read")
	}
	if !looksLikeCookies(blob) {
		return "", errors.New("cookies file does not look like a Netscape cookies export")
	}

	path := filepath.Join(h.cookiesDir, "cookies_"+uuid.New().String()[:8]+".txt")
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return "", errors.New("failed to store cookies file")
	}
	return path, nil
}

// looksLikeCookies checks the blob's shape only; the provider decides
// whether the cookies actually work.
func looksLikeCookies(blob []byte) bool {
	text := string(blob)
	if strings.HasPrefix(text, "# Netscape HTTP Cookie File") {
		return true
	}
	return strings.Contains(text, "\t") && strings.Contains(text, "youtube")
}

func parseMode(downloadType string) (types.JobMode, error) {
	switch downloadType {
	case "video":
		return types.ModeVideo, nil
	case "audio":
		return types.ModeAudio, nil
	case "subtitle":
		return types.ModeSubtitle, nil
	default:
		return "", errors.New("download_type must be video, audio or subtitle")
	}
}
