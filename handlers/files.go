package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"tubescribe/services"
	"tubescribe/types"
)

// FileHandler serves stored artifacts and cleans up scratch space.
type FileHandler struct {
	transcripts *services.ArtifactStore
	media       *services.ArtifactStore
	tempDirs    []string
}

func NewFileHandler(transcripts, media *services.ArtifactStore, tempDirs ...string) *FileHandler {
	return &FileHandler{transcripts: transcripts, media: media, tempDirs: tempDirs}
}

// DownloadTranscript handles GET /download/:filename
func (h *FileHandler) DownloadTranscript(c *gin.Context) {
	h.serve(c, h.transcripts, "text/plain; charset=utf-8")
}

// DownloadMedia handles GET /download-file/:filename
func (h *FileHandler) DownloadMedia(c *gin.Context) {
	h.serve(c, h.media, "application/octet-stream")
}

func (h *FileHandler) serve(c *gin.Context, store *services.ArtifactStore, contentType string) {
	filename := c.Param("filename")
	f, _, err := store.Open(filename)
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "file not found"})
		return
	}
	f.Close()
	path, err := store.Path(filename)
	if err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "file not found"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.File(path)
}

// Cleanup handles POST /cleanup. It removes leftovers from the scratch
// and temp directories; stored artifacts are never touched.
func (h *FileHandler) Cleanup(c *gin.Context) {
	removed := 0
	for _, dir := range h.tempDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if os.Remove(filepath.Join(dir, entry.Name())) == nil {
				removed++
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}
