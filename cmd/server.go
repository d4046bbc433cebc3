package cmd

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tubescribe/config"
	"tubescribe/extractor"
	"tubescribe/handlers"
	"tubescribe/middleware"
	"tubescribe/services"
	"tubescribe/websocket"
)

// ServerDeps carries everything the router needs. Tests build it with
// fakes; StartWebServer builds the production wiring.
type ServerDeps struct {
	Coordinator *services.Coordinator
	Prober      handlers.Prober
	Transcripts *services.ArtifactStore
	Media       *services.ArtifactStore
	Hub         websocket.Hub
	CookiesDir  string
	TempDirs    []string
	Browsers    []string
}

// NewRouter builds the HTTP surface on the given dependencies.
func NewRouter(deps ServerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logging())
	router.Use(middleware.CORS())

	extract := handlers.NewExtractHandler(deps.Coordinator)
	videos := handlers.NewVideoHandler(deps.Prober, deps.Coordinator, deps.CookiesDir, deps.Browsers)
	files := handlers.NewFileHandler(deps.Transcripts, deps.Media, deps.TempDirs...)
	jobs := handlers.NewJobHandler(deps.Coordinator, deps.Hub)
	health := handlers.NewHealthHandler(deps.Coordinator)

	router.POST("/extract", extract.Extract)
	router.POST("/check-video", videos.CheckVideo)
	router.POST("/list-formats", videos.ListFormats)
	router.POST("/download-video", videos.DownloadVideo)
	router.GET("/download/:filename", files.DownloadTranscript)
	router.GET("/download-file/:filename", files.DownloadMedia)
	router.POST("/cleanup", files.Cleanup)
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/status", health.Status)
		api.GET("/jobs", jobs.GetJobs)
		api.GET("/jobs/:id", jobs.GetJob)
		api.POST("/jobs/:id/cancel", jobs.CancelJob)
		api.GET("/ws/jobs", jobs.WebSocketAll)
		api.GET("/ws/jobs/:id", jobs.WebSocketJob)
	}

	return router
}

// StartWebServer wires the production dependencies and serves HTTP on
// the given port.
func StartWebServer(port string) error {
	if err := config.EnsureDirs(); err != nil {
		return err
	}

	transcripts, err := services.NewArtifactStore(config.GetOutputDir(), "transcript")
	if err != nil {
		return err
	}
	media, err := services.NewArtifactStore(config.GetMediaDir(), "media")
	if err != nil {
		return err
	}

	scratch := filepath.Join(config.GetMediaDir(), "scratch")
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return err
	}
	client := extractor.NewClient(config.GetTempDir(), scratch, config.CookieBrowsers())

	hub := websocket.NewHub()
	go hub.Run()

	opts := services.DefaultOptions()
	opts.PlaylistCap = config.PlaylistCap()
	opts.Pacing = config.ItemPacing()
	coordinator := services.NewCoordinator(client, transcripts, media, hub, opts)

	router := NewRouter(ServerDeps{
		Coordinator: coordinator,
		Prober:      client,
		Transcripts: transcripts,
		Media:       media,
		Hub:         hub,
		CookiesDir:  config.GetCookiesDir(),
		TempDirs:    []string{config.GetTempDir(), client.ScratchDir},
		Browsers:    config.CookieBrowsers(),
	})

	log.Printf("Starting server on port %s", port)
	return router.Run(":" + port)
}
