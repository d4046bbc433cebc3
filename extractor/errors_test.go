package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   ErrorKind
	}{
		{
			name:   "no subtitles",
			output: "WARNING: [youtube] abc: There are no subtitles for the requested languages",
			want:   KindNoCaptions,
		},
		{
			name:   "members only",
			output: "ERROR: [youtube] abc: Join this channel to get access to members only content",
			want:   KindMembersOnly,
		},
		{
			name:   "sign in required",
			output: "ERROR: [youtube] abc: Sign in to confirm you're not a bot",
			want:   KindMembersOnly,
		},
		{
			name:   "age restricted",
			output: "ERROR: [youtube] abc: This video is age-restricted",
			want:   KindAgeRestricted,
		},
		{
			name:   "geo blocked",
			output: "ERROR: [youtube] abc: The uploader has not made this video available in your country",
			want:   KindGeoBlocked,
		},
		{
			name:   "live stream",
			output: "ERROR: [youtube] abc: This live stream recording is not available",
			want:   KindLive,
		},
		{
			name:   "rate limited",
			output: "ERROR: HTTP Error 429: Too Many Requests",
			want:   KindRateLimited,
		},
		{
			name:   "private video",
			output: "ERROR: [youtube] abc: Private video",
			want:   KindUnavailable,
		},
		{
			name:   "removed video",
			output: "ERROR: [youtube] abc: Video unavailable. This video has been removed by the uploader",
			want:   KindUnavailable,
		},
		{
			name: "unrecognized output",
			err:  errors.New("exit status 1"),
			want: KindProvider,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := Classify(tt.output, tt.err)
			require.NotNil(t, perr)
			assert.Equal(t, tt.want, perr.Kind)
		})
	}
}

func TestClassifyPassesThroughProviderErrors(t *testing.T) {
	original := &ProviderError{Kind: KindNoCaptions, Detail: "already classified"}
	assert.Same(t, original, Classify("", original))
}

func TestClassifyDeadline(t *testing.T) {
	perr := Classify("", context.DeadlineExceeded)
	assert.Equal(t, KindTimeout, perr.Kind)
	assert.True(t, perr.Transient())
}

func TestTransient(t *testing.T) {
	transient := []ErrorKind{KindRateLimited, KindTimeout, KindProvider}
	permanent := []ErrorKind{KindNoCaptions, KindUnavailable, KindMembersOnly, KindAgeRestricted, KindGeoBlocked, KindLive}

	for _, kind := range transient {
		assert.True(t, (&ProviderError{Kind: kind}).Transient(), "%s should be transient", kind)
	}
	for _, kind := range permanent {
		assert.False(t, (&ProviderError{Kind: kind}).Transient(), "%s should be permanent", kind)
	}
}

func TestReason(t *testing.T) {
	assert.Equal(t, "no captions available", (&ProviderError{Kind: KindNoCaptions}).Reason())
	assert.Equal(t, "video is private or unavailable", (&ProviderError{Kind: KindUnavailable}).Reason())
	assert.Equal(t, "some detail", (&ProviderError{Kind: KindProvider, Detail: "some detail"}).Reason())
	assert.Equal(t, "provider error", (&ProviderError{Kind: KindProvider}).Reason())
}
