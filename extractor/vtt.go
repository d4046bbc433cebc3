package extractor

import (
	"regexp"
	"strings"
)

// NoSpeech is returned when a caption file survives cleaning with no
// usable text.
const NoSpeech = "[No clear speech detected]"

var (
	reStyleTags  = regexp.MustCompile(`</?c[^>]*>`)
	reHeader     = regexp.MustCompile(`(?mi)^(?:WEBVTT.*|Kind:.*|Language:.*)$`)
	reCueNumber  = regexp.MustCompile(`(?m)^\d+\s*$`)
	reTimestamp  = regexp.MustCompile(`(?m)^\s*\d{1,2}:\d{2}(?::\d{2})?[.,]\d{3}\s*-->\s*\d{1,2}:\d{2}(?::\d{2})?[.,]\d{3}.*$`)
	reAudioCue   = regexp.MustCompile(`(?i)\[(?:Music|Applause|Silence|Sound|Laughter|Crowd)[^\]]*\]`)
	reSpeaker    = regexp.MustCompile(`(?m)^[A-Z][a-z]+(?:\s+\d+)?:\s*`)
	reChevron    = regexp.MustCompile(`(?m)^>>\s*`)
	reEntity     = regexp.MustCompile(`(?i)&[a-z]+;`)
	reAnyTag     = regexp.MustCompile(`<[^>]+>`)
	reMultiSpace = regexp.MustCompile(` +`)
)

// CleanTranscript reduces a VTT caption file to the spoken words:
// timestamps, cue metadata, styling tags, audio cues and speaker labels
// are stripped and the remaining lines joined into flowing text.
func CleanTranscript(vtt string) string {
	text := reStyleTags.ReplaceAllString(vtt, "")
	text = reHeader.ReplaceAllString(text, "")
	text = reCueNumber.ReplaceAllString(text, "")
	text = reTimestamp.ReplaceAllString(text, "")
	text = reAudioCue.ReplaceAllString(text, "")
	text = reSpeaker.ReplaceAllString(text, "")
	text = reChevron.ReplaceAllString(text, "")
	text = reEntity.ReplaceAllString(text, "")
	text = reAnyTag.ReplaceAllString(text, "")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Auto-generated captions repeat each cue as it scrolls.
		if len(lines) > 0 && lines[len(lines)-1] == line {
			continue
		}
		lines = append(lines, line)
	}

	joined := reMultiSpace.ReplaceAllString(strings.Join(lines, " "), " ")
	joined = strings.TrimSpace(joined)
	if len(joined) <= 50 {
		return NoSpeech
	}
	return joined
}
