package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTranscript(t *testing.T) {
	vtt := `WEBVTT
Kind: captions
Language: en

00:00:01.000 --> 00:00:04.000
Welcome back everyone to another episode

00:00:04.000 --> 00:00:07.500
Welcome back everyone to another episode
today we are going to talk about channels

00:00:07.500 --> 00:00:11.000
<c.colorCCCCCC>today we are going to talk about channels</c>
and how goroutines communicate through them
`

	got := CleanTranscript(vtt)
	assert.Equal(t, "Welcome back everyone to another episode today we are going to talk about channels and how goroutines communicate through them", got)
}

func TestCleanTranscriptStripsNoise(t *testing.T) {
	tests := []struct {
		name string
		vtt  string
		want string
	}{
		{
			name: "audio cues and speaker labels",
			vtt: `WEBVTT

00:00:01.000 --> 00:00:04.000
[Music]
Host: this segment runs long enough to clear the speech threshold easily
`,
			want: "this segment runs long enough to clear the speech threshold easily",
		},
		{
			name: "chevrons and entities",
			vtt: `WEBVTT

00:00:01.000 --> 00:00:04.000
>> the ampersand &amp; gets removed but the sentence itself keeps going on
`,
			want: "the ampersand gets removed but the sentence itself keeps going on",
		},
		{
			name: "cue numbers",
			vtt: `WEBVTT

1
00:00:01.000 --> 00:00:04.000
numbered cues are common in converted srt files and must not leak through
`,
			want: "numbered cues are common in converted srt files and must not leak through",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTranscript(tt.vtt))
		})
	}
}

func TestCleanTranscriptNoSpeech(t *testing.T) {
	tests := []struct {
		name string
		vtt  string
	}{
		{"empty file", ""},
		{"music only", "WEBVTT\n\n00:00:01.000 --> 00:00:04.000\n[Music]\n"},
		{"too short", "WEBVTT\n\n00:00:01.000 --> 00:00:04.000\nhi there\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, NoSpeech, CleanTranscript(tt.vtt))
		})
	}
}
