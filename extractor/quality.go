package extractor

import "fmt"

// qualityCaps maps the declarative quality preferences to a maximum
// stream height in pixels.
var qualityCaps = map[string]int{
	"720p": 720,
	"480p": 480,
	"360p": 360,
}

// SelectHeight resolves a quality preference against the heights the
// provider reports as available. The rule is deterministic: pick the
// highest resolution at or below the requested cap; when nothing fits
// (or the preference is best/worst/unknown), return 0 to defer to the
// provider's own best/worst selection.
func SelectHeight(available []int, quality string) int {
	cap, ok := qualityCaps[quality]
	if !ok {
		return 0
	}
	best := 0
	for _, h := range available {
		if h <= cap && h > best {
			best = h
		}
	}
	return best
}

// FormatSelector builds the yt-dlp format expression for a quality
// preference given the resolved height. Height 0 falls through to the
// generic ladder.
func FormatSelector(quality string, height int) string {
	if quality == "worst" {
		return "worst"
	}
	if height > 0 {
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", height, height)
	}
	if cap, ok := qualityCaps[quality]; ok {
		// No probe data; still honor the cap declaratively.
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", cap, cap)
	}
	return "bestvideo+bestaudio/best"
}
