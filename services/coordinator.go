package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tubescribe/extractor"
	"tubescribe/metrics"
	"tubescribe/stream"
	"tubescribe/types"
	"tubescribe/websocket"
)

// Extractor is the capability boundary the coordinator drives. The
// production implementation wraps yt-dlp; tests substitute fakes.
type Extractor interface {
	Resolve(ctx context.Context, url string, opts extractor.ResolveOptions) ([]extractor.Video, error)
	Transcript(ctx context.Context, video extractor.Video, cookieFile string) (extractor.TranscriptResult, error)
	Download(ctx context.Context, video extractor.Video, opts extractor.DownloadOptions) (extractor.DownloadResult, error)
}

// Options tunes coordinator behavior. Zero values select production
// defaults; tests override pacing and backoff to keep runs fast.
type Options struct {
	PlaylistCap int
	MaxRetries  int
	Backoff     time.Duration
	Pacing      time.Duration
	PreviewLen  int
}

func (o Options) withDefaults() Options {
	if o.PlaylistCap <= 0 {
		o.PlaylistCap = extractor.DefaultPlaylistCap
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.PreviewLen <= 0 {
		o.PreviewLen = 500
	}
	return o
}

// DefaultOptions returns the production tuning: 2 transient retries
// per item with 2s backoff and 1s pacing between provider calls.
func DefaultOptions() Options {
	return Options{
		MaxRetries: 2,
		Backoff:    2 * time.Second,
		Pacing:     time.Second,
	}
}

// jobEntry pairs one job's state with its progress feed. The entry
// mutex guards job mutation; the feed is internally synchronized.
type jobEntry struct {
	mu        sync.Mutex
	job       *types.Job
	feed      *stream.Feed
	cancelled atomic.Bool
}

// Coordinator owns the job registry and drives each job through
// resolution, sequential item processing and artifact assembly. Items
// within one job run strictly in sequence to respect provider rate
// limits; distinct jobs run in their own goroutines.
type Coordinator struct {
	ex          Extractor
	transcripts *ArtifactStore
	media       *ArtifactStore
	hub         websocket.Hub
	opts        Options

	mu   sync.RWMutex
	jobs map[string]*jobEntry
}

// NewCoordinator wires the coordinator. hub may be nil when WebSocket
// mirroring is not wanted (CLI mode, tests).
func NewCoordinator(ex Extractor, transcripts, media *ArtifactStore, hub websocket.Hub, opts Options) *Coordinator {
	return &Coordinator{
		ex:          ex,
		transcripts: transcripts,
		media:       media,
		hub:         hub,
		opts:        opts.withDefaults(),
		jobs:        make(map[string]*jobEntry),
	}
}

// CreateJob allocates a job and starts processing it in the
// background. Returns immediately with the initial snapshot.
func (c *Coordinator) CreateJob(req types.JobRequest) (*types.Job, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("a playlist or video URL is required")
	}
	if req.Mode == "" {
		req.Mode = types.ModeTranscript
	}

	id := req.JobID
	if id == "" {
		id = uuid.New().String()
	}

	entry := &jobEntry{
		job: &types.Job{
			ID:        id,
			URL:       req.URL,
			Mode:      req.Mode,
			State:     types.JobStatePending,
			CreatedAt: time.Now(),
		},
		feed: stream.NewFeed(),
	}

	c.mu.Lock()
	if existing, ok := c.jobs[id]; ok && !isTerminal(existing) {
		c.mu.Unlock()
		return nil, fmt.Errorf("job %s is already running", id)
	}
	c.jobs[id] = entry
	c.mu.Unlock()

	metrics.JobsStarted.WithLabelValues(string(req.Mode)).Inc()
	go c.run(entry, req)

	return c.snapshot(entry), nil
}

// Attach returns the job's finite event stream. The channel replays
// from the start and closes after the terminal event, or early when the
// context is cancelled. A job with no listener still runs to
// completion.
func (c *Coordinator) Attach(ctx context.Context, id string) (<-chan types.ProgressEvent, bool) {
	entry, ok := c.entry(id)
	if !ok {
		return nil, false
	}
	return entry.feed.Subscribe(ctx), true
}

// Snapshot returns a copy of the job's current state.
func (c *Coordinator) Snapshot(id string) (*types.Job, bool) {
	entry, ok := c.entry(id)
	if !ok {
		return nil, false
	}
	return c.snapshot(entry), true
}

// Jobs returns snapshots of every job in the registry.
func (c *Coordinator) Jobs() []*types.Job {
	c.mu.RLock()
	entries := make([]*jobEntry, 0, len(c.jobs))
	for _, entry := range c.jobs {
		entries = append(entries, entry)
	}
	c.mu.RUnlock()

	jobs := make([]*types.Job, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, c.snapshot(entry))
	}
	return jobs
}

// Cancel flags a running job to stop. The flag is polled between
// items; the in-flight provider call is never torn down forcibly.
func (c *Coordinator) Cancel(id string) bool {
	entry, ok := c.entry(id)
	if !ok || isTerminal(entry) {
		return false
	}
	entry.cancelled.Store(true)
	return true
}

func (c *Coordinator) entry(id string) (*jobEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.jobs[id]
	return entry, ok
}

func isTerminal(entry *jobEntry) bool {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.job.State == types.JobStateDone || entry.job.State == types.JobStateFailed
}

func (c *Coordinator) snapshot(entry *jobEntry) *types.Job {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	job := *entry.job
	job.Items = make([]*types.JobItem, len(entry.job.Items))
	for i, item := range entry.job.Items {
		copied := *item
		job.Items[i] = &copied
	}
	if entry.job.Artifact != nil {
		ref := *entry.job.Artifact
		job.Artifact = &ref
	}
	return &job
}

func (c *Coordinator) setState(entry *jobEntry, state types.JobState) {
	entry.mu.Lock()
	entry.job.State = state
	entry.mu.Unlock()
}

// run drives one job to its single terminal event. All per-item
// failures are absorbed into skip entries here; only resolution and
// artifact faults fail the job.
func (c *Coordinator) run(entry *jobEntry, req types.JobRequest) {
	ctx := context.Background()
	job := entry.job
	emit := func(ev types.ProgressEvent) {
		entry.feed.Publish(ev)
		if c.hub != nil {
			c.hub.Broadcast(job.ID, ev)
		}
	}

	c.setState(entry, types.JobStateResolving)
	emit(types.StatusEvent("Fetching playlist information...", 5))

	videos, err := c.ex.Resolve(ctx, req.URL, extractor.ResolveOptions{
		NoPlaylist: req.NoPlaylist,
		Start:      req.PlaylistStart,
		End:        req.PlaylistEnd,
		Items:      req.PlaylistItems,
		Limit:      c.opts.PlaylistCap,
	})
	if err != nil {
		c.fail(entry, emit, "failed to resolve playlist: "+err.Error())
		return
	}

	total := len(videos)
	items := make([]*types.JobItem, total)
	for i, video := range videos {
		items[i] = &types.JobItem{
			Index:   i + 1,
			URL:     video.URL,
			Title:   video.Title,
			Outcome: types.ItemPending,
		}
	}
	entry.mu.Lock()
	job.Items = items
	job.Total = total
	job.State = types.JobStateProcessing
	entry.mu.Unlock()

	// An empty playlist completes with zero counters; the caller
	// decides whether that is actionable.
	if total == 0 {
		c.finish(entry, emit, &types.ExtractResult{
			Success:       true,
			SkippedVideos: []types.SkippedVideo{},
		})
		return
	}

	var combined strings.Builder
	var files []types.FileInfo
	skipped := []types.SkippedVideo{}
	strategyUsed := ""
	warnings := ""

	for i, video := range videos {
		idx := i + 1
		if entry.cancelled.Load() {
			c.fail(entry, emit, "job cancelled")
			return
		}

		// Percentages never drop below the 5 reported while resolving.
		emit(types.ProgressTick(idx-1, total, clampPct((idx-1)*100/total), itemStatus(req.Mode), video.Title))

		text, result, perr := c.processItem(ctx, req, video)

		var status string
		entry.mu.Lock()
		item := job.Items[i]
		if perr != nil {
			item.Outcome = types.ItemSkipped
			item.SkipReason = perr.Reason()
			job.Skipped++
			skipped = append(skipped, types.SkippedVideo{Title: video.Title, Reason: perr.Reason()})
			status = "Skipped: " + perr.Reason()
			metrics.ItemsSkipped.WithLabelValues(string(perr.Kind)).Inc()
			log.Printf("Job %s item %d/%d skipped: %s", job.ID, idx, total, perr.Reason())
		} else {
			item.Outcome = types.ItemSuccess
			job.Extracted++
			metrics.ItemsExtracted.Inc()
			if req.Mode == types.ModeTranscript {
				item.Transcript = text
				combined.WriteString(fmt.Sprintf("=== %s ===\n\n%s\n\n\n", video.Title, text))
				status = "Extracted transcript"
			} else {
				status = "Downloaded"
			}
			if result != nil {
				strategyUsed = result.Strategy
				if result.Warnings != "" {
					warnings = result.Warnings
				}
			}
		}
		entry.mu.Unlock()

		// Register downloaded files outside the entry lock; a storage
		// fault here fails the whole job.
		if perr == nil && result != nil && req.Mode != types.ModeTranscript {
			itemFiles, aerr := c.registerFiles(result.Paths)
			if aerr != nil {
				c.fail(entry, emit, "failed to store downloaded files: "+aerr.Error())
				return
			}
			entry.mu.Lock()
			job.Items[i].Files = itemFiles
			entry.mu.Unlock()
			files = append(files, itemFiles...)
		}

		emit(types.ProgressTick(idx, total, clampPct(idx*100/total), status, video.Title))

		if i < len(videos)-1 && c.opts.Pacing > 0 {
			time.Sleep(c.opts.Pacing)
		}
	}

	c.setState(entry, types.JobStateCompleting)

	result := &types.ExtractResult{
		Success:       true,
		TotalVideos:   total,
		Files:         files,
		StrategyUsed:  strategyUsed,
		Warnings:      warnings,
		SkippedVideos: skipped,
	}

	if req.Mode == types.ModeTranscript {
		emit(types.StatusEvent("Combining transcripts...", -1))
		text := combined.String()
		ref, perr := c.transcripts.Put("playlist_transcripts.txt", strings.NewReader(text))
		if perr != nil {
			c.fail(entry, emit, "failed to write transcript artifact: "+perr.Error())
			return
		}
		metrics.ArtifactBytes.Add(float64(ref.SizeBytes))
		entry.mu.Lock()
		job.Artifact = &ref
		entry.mu.Unlock()
		result.Filename = ref.Filename
		result.Preview = preview(text, c.opts.PreviewLen)
	}

	c.finish(entry, emit, result)
}

// processItem runs one item's provider call with bounded retries for
// transient failures. Permanent failures return immediately.
func (c *Coordinator) processItem(ctx context.Context, req types.JobRequest, video extractor.Video) (string, *extractor.DownloadResult, *extractor.ProviderError) {
	var perr *extractor.ProviderError
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 && c.opts.Backoff > 0 {
			time.Sleep(c.opts.Backoff * time.Duration(attempt))
		}

		if req.Mode == types.ModeTranscript {
			tr, err := c.ex.Transcript(ctx, video, req.CookieFile)
			if err == nil {
				return tr.Text, &extractor.DownloadResult{Strategy: tr.Strategy}, nil
			}
			perr = extractor.Classify("", err)
		} else {
			dr, err := c.ex.Download(ctx, video, extractor.DownloadOptions{
				Type:       downloadType(req.Mode),
				Quality:    req.Quality,
				CookieFile: req.CookieFile,
			})
			if err == nil {
				return "", &dr, nil
			}
			perr = extractor.Classify("", err)
		}

		if !perr.Transient() {
			return "", nil, perr
		}
	}
	return "", nil, perr
}

// registerFiles adopts one download run's files into the media
// artifact store and removes the run's scratch directory.
func (c *Coordinator) registerFiles(paths []string) ([]types.FileInfo, error) {
	files := make([]types.FileInfo, 0, len(paths))
	for _, path := range paths {
		ref, err := c.media.Adopt(path)
		if err != nil {
			return nil, err
		}
		metrics.ArtifactBytes.Add(float64(ref.SizeBytes))
		files = append(files, types.FileInfo{
			Name: ref.Filename,
			Size: ref.SizeBytes,
			Path: ref.Filename,
		})
	}
	if len(paths) > 0 {
		os.Remove(filepath.Dir(paths[0]))
	}
	return files, nil
}

func (c *Coordinator) finish(entry *jobEntry, emit func(types.ProgressEvent), result *types.ExtractResult) {
	entry.mu.Lock()
	job := entry.job
	job.State = types.JobStateDone
	result.TotalVideos = job.Total
	result.Extracted = job.Extracted
	result.Skipped = job.Skipped
	mode := job.Mode
	entry.mu.Unlock()

	metrics.JobsCompleted.WithLabelValues(string(mode)).Inc()
	emit(types.CompleteEvent(result))
	log.Printf("Job %s completed: %d extracted, %d skipped of %d", job.ID, result.Extracted, result.Skipped, result.TotalVideos)
}

func (c *Coordinator) fail(entry *jobEntry, emit func(types.ProgressEvent), message string) {
	entry.mu.Lock()
	job := entry.job
	job.State = types.JobStateFailed
	job.Error = message
	mode := job.Mode
	entry.mu.Unlock()

	metrics.JobsFailed.WithLabelValues(string(mode)).Inc()
	emit(types.ErrorEvent(message))
	log.Printf("Job %s failed: %s", job.ID, message)
}

func clampPct(pct int) int {
	if pct < 5 {
		return 5
	}
	return pct
}

func itemStatus(mode types.JobMode) string {
	if mode == types.ModeTranscript {
		return "Downloading subtitle"
	}
	return "Downloading media"
}

func downloadType(mode types.JobMode) string {
	switch mode {
	case types.ModeAudio:
		return "audio"
	case types.ModeSubtitle:
		return "subtitle"
	default:
		return "video"
	}
}

// preview returns the first n characters of the artifact text, with an
// ellipsis when truncated.
func preview(text string, n int) string {
	if len(text) > n {
		return text[:n] + "..."
	}
	return text
}
