package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectHeight(t *testing.T) {
	tests := []struct {
		name      string
		available []int
		quality   string
		want      int
	}{
		{"exact match", []int{360, 480, 720, 1080}, "720p", 720},
		{"falls back to next lower", []int{360, 480}, "720p", 480},
		{"falls back across gaps", []int{240, 1080}, "480p", 240},
		{"nothing at or below cap", []int{1080, 1440}, "360p", 0},
		{"best defers to selector", []int{360, 480, 720}, "best", 0},
		{"worst defers to selector", []int{360, 480, 720}, "worst", 0},
		{"no formats probed", nil, "720p", 0},
		{"unknown quality", []int{360, 720}, "4k", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectHeight(tt.available, tt.quality))
		})
	}
}

func TestFormatSelector(t *testing.T) {
	assert.Equal(t, "worst", FormatSelector("worst", 0))
	assert.Equal(t, "bestvideo+bestaudio/best", FormatSelector("best", 0))
	assert.Equal(t, "bestvideo[height<=480]+bestaudio/best[height<=480]", FormatSelector("720p", 480))
	assert.Equal(t, "bestvideo[height<=720]+bestaudio/best[height<=720]", FormatSelector("720p", 0))
}
