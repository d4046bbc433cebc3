package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lrstanley/go-ytdlp"
	"github.com/schollz/progressbar/v3"

	"tubescribe/cmd"
	"tubescribe/config"
	"tubescribe/extractor"
	"tubescribe/services"
	"tubescribe/types"
)

func main() {
	config.LoadDotEnv()

	var (
		extract   string
		mode      string
		quality   string
		server    bool
		port      int
		noInstall bool
	)

	flag.StringVar(&extract, "extract", "", "Playlist or video URL to process")
	flag.StringVar(&mode, "mode", "transcript", "What to extract: transcript, video, audio or subtitle")
	flag.StringVar(&quality, "quality", "best", "Video quality: best, 720p, 480p, 360p or worst")
	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8000, "Port for web server mode")
	flag.BoolVar(&noInstall, "no-install", false, "Skip the yt-dlp binary check")
	flag.Parse()

	if !noInstall {
		ytdlp.MustInstall(context.Background(), nil)
	}

	// Server mode takes precedence
	if server {
		if err := cmd.StartWebServer(strconv.Itoa(port)); err != nil {
			log.Fatalf("Server error: %s", err)
		}
		return
	}

	if extract == "" {
		flag.Usage()
		return
	}

	if err := runExtract(extract, mode, quality); err != nil {
		log.Fatalf("Error: %s", err)
	}
}

// runExtract drives a one-shot job from the command line, rendering
// progress events as a terminal progress bar.
func runExtract(url, mode, quality string) error {
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
	opts := services.DefaultOptions()
	opts.PlaylistCap = config.PlaylistCap()
	opts.Pacing = config.ItemPacing()
	coordinator := services.NewCoordinator(client, transcripts, media, nil, opts)

	job, err := coordinator.CreateJob(types.JobRequest{
		URL:     url,
		Mode:    types.JobMode(mode),
		Quality: quality,
	})
	if err != nil {
		return err
	}
	events, _ := coordinator.Attach(context.Background(), job.ID)

	var bar *progressbar.ProgressBar
	for ev := range events {
		switch ev.Type {
		case types.EventStatus:
			fmt.Println(ev.Message)
		case types.EventProgress:
			if bar == nil && ev.Total != nil {
				bar = progressbar.NewOptions(*ev.Total,
					progressbar.OptionSetDescription("Processing"),
					progressbar.OptionShowCount(),
				)
			}
			if bar != nil && ev.Current != nil {
				bar.Describe(ev.Status)
				_ = bar.Set(*ev.Current)
			}
		case types.EventComplete:
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
			printResult(ev.ExtractResult)
		case types.EventError:
			if bar != nil {
				fmt.Println()
			}
			return fmt.Errorf("%s", ev.Message)
		}
	}
	return nil
}

func printResult(result *types.ExtractResult) {
	fmt.Printf("Done: %d extracted, %d skipped of %d\n", result.Extracted, result.Skipped, result.TotalVideos)
	for _, skip := range result.SkippedVideos {
		fmt.Printf("  skipped %q: %s\n", skip.Title, skip.Reason)
	}
	if result.Filename != "" {
		fmt.Printf("Transcript saved as %s\n", filepath.Join(config.GetOutputDir(), result.Filename))
	}
	for _, file := range result.Files {
		fmt.Printf("Saved %s (%d bytes)\n", filepath.Join(config.GetMediaDir(), file.Name), file.Size)
	}
}
