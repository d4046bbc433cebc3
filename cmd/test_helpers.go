package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"tubescribe/extractor"
	"tubescribe/services"
	"tubescribe/websocket"
)

// stubExtractor scripts provider responses for HTTP-level tests and
// records what the handlers actually forwarded to it.
type stubExtractor struct {
	mu          sync.Mutex
	videos      []extractor.Video
	resolveErr  error
	transcripts map[string]string
	errs        map[string]error
	scratchDir  string

	lastResolveOpts  extractor.ResolveOptions
	lastDownloadOpts extractor.DownloadOptions
}

func (s *stubExtractor) Resolve(_ context.Context, _ string, opts extractor.ResolveOptions) ([]extractor.Video, error) {
	s.mu.Lock()
	s.lastResolveOpts = opts
	s.mu.Unlock()
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.videos, nil
}

func (s *stubExtractor) Transcript(_ context.Context, video extractor.Video, _ string) (extractor.TranscriptResult, error) {
	if err, ok := s.errs[video.ID]; ok {
		return extractor.TranscriptResult{}, err
	}
	return extractor.TranscriptResult{Text: s.transcripts[video.ID], Strategy: "web"}, nil
}

func (s *stubExtractor) Download(_ context.Context, video extractor.Video, opts extractor.DownloadOptions) (extractor.DownloadResult, error) {
	s.mu.Lock()
	s.lastDownloadOpts = opts
	s.mu.Unlock()
	if err, ok := s.errs[video.ID]; ok {
		return extractor.DownloadResult{}, err
	}
	path := filepath.Join(s.scratchDir, video.ID+".mp4")
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return extractor.DownloadResult{}, err
	}
	return extractor.DownloadResult{Paths: []string{path}, Strategy: "web_public"}, nil
}

// ResolveOpts returns the options the last Resolve call received.
func (s *stubExtractor) ResolveOpts() extractor.ResolveOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResolveOpts
}

// DownloadOpts returns the options the last Download call received.
func (s *stubExtractor) DownloadOpts() extractor.DownloadOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDownloadOpts
}

// stubProber scripts single-video probe responses.
type stubProber struct {
	info       extractor.VideoInfo
	checkErr   error
	formats    string
	formatsErr error
}

func (s *stubProber) Check(context.Context, string, bool) (extractor.VideoInfo, error) {
	if s.checkErr != nil {
		return extractor.VideoInfo{}, s.checkErr
	}
	return s.info, nil
}

func (s *stubProber) Formats(context.Context, string, bool) (string, error) {
	if s.formatsErr != nil {
		return "", s.formatsErr
	}
	return s.formats, nil
}

// TestHelper bundles a running test server with its fakes and
// directories.
type TestHelper struct {
	Server        *httptest.Server
	Coordinator   *services.Coordinator
	Stub          *stubExtractor
	Prober        *stubProber
	TranscriptDir string
	MediaDir      string
	TempDir       string
}

// NewTestHelper spins up the full router over stubbed provider access.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()
	gin.SetMode(gin.TestMode)

	transcriptDir := t.TempDir()
	mediaDir := t.TempDir()
	tempDir := t.TempDir()
	scratchDir := t.TempDir()
	cookiesDir := t.TempDir()

	transcripts, err := services.NewArtifactStore(transcriptDir, "transcript")
	require.NoError(t, err)
	media, err := services.NewArtifactStore(mediaDir, "media")
	require.NoError(t, err)

	stub := &stubExtractor{
		videos: []extractor.Video{
			{ID: "vid1", URL: "https://www.youtube.com/watch?v=vid1", Title: "Video 1"},
			{ID: "vid2", URL: "https://www.youtube.com/watch?v=vid2", Title: "Video 2"},
		},
		transcripts: map[string]string{
			"vid1": "transcript one",
			"vid2": "transcript two",
		},
		scratchDir: scratchDir,
	}
	prober := &stubProber{
		info: extractor.VideoInfo{Title: "Video 1", Duration: 90, Availability: "public", FormatCount: 12},
	}

	hub := websocket.NewHub()
	go hub.Run()

	coordinator := services.NewCoordinator(stub, transcripts, media, hub, services.Options{MaxRetries: 0})

	router := NewRouter(ServerDeps{
		Coordinator: coordinator,
		Prober:      prober,
		Transcripts: transcripts,
		Media:       media,
		Hub:         hub,
		CookiesDir:  cookiesDir,
		TempDirs:    []string{tempDir, scratchDir},
		Browsers:    []string{"firefox"},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestHelper{
		Server:        server,
		Coordinator:   coordinator,
		Stub:          stub,
		Prober:        prober,
		TranscriptDir: transcriptDir,
		MediaDir:      mediaDir,
		TempDir:       tempDir,
	}
}

// PostJSON sends a JSON body and decodes the JSON response into out.
func (h *TestHelper) PostJSON(t *testing.T, path string, body, out any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(h.Server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(data, out), "response body: %s", data)
	}
	return resp
}

// GetJSON fetches a path and decodes the JSON response into out.
func (h *TestHelper) GetJSON(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(h.Server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(data, out), "response body: %s", data)
	}
	return resp
}

// PostMultipart sends a multipart form and decodes the JSON response.
func (h *TestHelper) PostMultipart(t *testing.T, path string, fields map[string]string, fileField, fileName string, fileData []byte, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(h.Server.URL+path, writer.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(data, out), "response body: %s", data)
	}
	return resp
}

// WebSocketURL converts the test server URL to a ws:// endpoint.
func (h *TestHelper) WebSocketURL(path string) string {
	return fmt.Sprintf("ws%s%s", h.Server.URL[len("http"):], path)
}
