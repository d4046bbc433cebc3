package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file from the working directory when present.
// Missing files are not an error; real env vars always win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetOutputDir returns the directory holding combined transcript
// artifacts.
func GetOutputDir() string {
	return getenv("TUBESCRIBE_OUTPUT_DIR", filepath.Join(".", "output"))
}

// GetMediaDir returns the directory holding downloaded media artifacts.
func GetMediaDir() string {
	return getenv("TUBESCRIBE_MEDIA_DIR", filepath.Join(".", "downloads"))
}

// GetTempDir returns the scratch directory for caption files and
// in-flight downloads before they are registered as artifacts.
func GetTempDir() string {
	return getenv("TUBESCRIBE_TEMP_DIR", filepath.Join(".", "temp"))
}

// GetCookiesDir returns the directory where uploaded cookie files are
// kept.
func GetCookiesDir() string {
	return getenv("TUBESCRIBE_COOKIES_DIR", filepath.Join(".", "cookies"))
}

// GetCORSOrigins returns the allowed CORS origins.
func GetCORSOrigins() []string {
	origins := getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	return strings.Split(origins, ",")
}

// PlaylistCap returns the maximum number of playlist items processed
// per job. Longer playlists are truncated, not failed.
func PlaylistCap() int {
	if v, err := strconv.Atoi(os.Getenv("TUBESCRIBE_PLAYLIST_CAP")); err == nil && v > 0 {
		return v
	}
	return 50
}

// ItemPacing returns the delay between provider calls for consecutive
// items. The provider throttles bursty traffic, so this defaults on.
func ItemPacing() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("TUBESCRIBE_ITEM_PACING_MS")); err == nil && v >= 0 {
		return time.Duration(v) * time.Millisecond
	}
	return time.Second
}

// CookieBrowsers returns browsers the operator has declared usable for
// --cookies-from-browser, in preference order.
func CookieBrowsers() []string {
	v := os.Getenv("TUBESCRIBE_COOKIE_BROWSERS")
	if v == "" {
		return nil
	}
	browsers := strings.Split(v, ",")
	for i := range browsers {
		browsers[i] = strings.TrimSpace(browsers[i])
	}
	return browsers
}

// EnsureDirs creates all working directories.
func EnsureDirs() error {
	for _, dir := range []string{GetOutputDir(), GetMediaDir(), GetTempDir(), GetCookiesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
