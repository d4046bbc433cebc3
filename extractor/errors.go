package extractor

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind classifies provider failures so the coordinator can decide
// between retrying, skipping, and failing the job.
type ErrorKind string

const (
	KindNoCaptions    ErrorKind = "no_captions"
	KindUnavailable   ErrorKind = "unavailable"
	KindMembersOnly   ErrorKind = "members_only"
	KindAgeRestricted ErrorKind = "age_restricted"
	KindGeoBlocked    ErrorKind = "geo_blocked"
	KindLive          ErrorKind = "live"
	KindRateLimited   ErrorKind = "rate_limited"
	KindTimeout       ErrorKind = "timeout"
	KindProvider      ErrorKind = "provider"
)

// ProviderError is a classified failure from the extraction engine.
type ProviderError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return e.Detail
}

// Transient reports whether a bounded retry might succeed. Permanent
// conditions (no captions, removed, members-only) are never retried.
func (e *ProviderError) Transient() bool {
	switch e.Kind {
	case KindRateLimited, KindTimeout, KindProvider:
		return true
	}
	return false
}

// Reason returns the human-readable skip reason surfaced to clients.
func (e *ProviderError) Reason() string {
	switch e.Kind {
	case KindNoCaptions:
		return "no captions available"
	case KindUnavailable:
		return "video is private or unavailable"
	case KindMembersOnly:
		return "video requires sign-in or membership"
	case KindAgeRestricted:
		return "age-restricted content requires cookies"
	case KindGeoBlocked:
		return "video is not available in this region"
	case KindLive:
		return "live stream in progress"
	case KindRateLimited:
		return "rate limited by provider"
	case KindTimeout:
		return "provider request timed out"
	}
	if e.Detail != "" {
		return firstLine(e.Detail)
	}
	return "provider error"
}

// Classify maps raw yt-dlp output and a run error to a ProviderError.
// The keyword matching mirrors the messages yt-dlp actually prints.
func Classify(output string, err error) *ProviderError {
	if perr := (*ProviderError)(nil); errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Kind: KindTimeout, Detail: "request timed out"}
	}

	combined := output
	if err != nil {
		combined += "\n" + err.Error()
	}
	lower := strings.ToLower(combined)

	switch {
	case strings.Contains(lower, "no subtitles") ||
		strings.Contains(lower, "subtitles are not available") ||
		strings.Contains(lower, "has no subtitles"):
		return &ProviderError{Kind: KindNoCaptions, Detail: errorLine(combined)}
	case strings.Contains(lower, "members only") ||
		strings.Contains(lower, "members-only") ||
		strings.Contains(lower, "join this channel") ||
		strings.Contains(lower, "sign in"):
		return &ProviderError{Kind: KindMembersOnly, Detail: errorLine(combined)}
	case strings.Contains(lower, "age-restricted") ||
		strings.Contains(lower, "age restricted"):
		return &ProviderError{Kind: KindAgeRestricted, Detail: errorLine(combined)}
	case strings.Contains(lower, "available in your country") ||
		strings.Contains(lower, "geo restricted"):
		return &ProviderError{Kind: KindGeoBlocked, Detail: errorLine(combined)}
	case strings.Contains(lower, "is a live event") ||
		strings.Contains(lower, "live stream") ||
		strings.Contains(lower, "premieres in"):
		return &ProviderError{Kind: KindLive, Detail: errorLine(combined)}
	case strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "429"):
		return &ProviderError{Kind: KindRateLimited, Detail: errorLine(combined)}
	case strings.Contains(lower, "private video") ||
		strings.Contains(lower, "video unavailable") ||
		strings.Contains(lower, "has been removed") ||
		strings.Contains(lower, "unavailable"):
		return &ProviderError{Kind: KindUnavailable, Detail: errorLine(combined)}
	case strings.Contains(lower, "timed out") || strings.Contains(lower, "timeout"):
		return &ProviderError{Kind: KindTimeout, Detail: errorLine(combined)}
	}

	detail := errorLine(combined)
	if detail == "" {
		detail = "provider error"
	}
	return &ProviderError{Kind: KindProvider, Detail: detail}
}

// errorLine pulls the most informative line out of yt-dlp output.
func errorLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(strings.ToLower(line), "error") {
			return truncate(strings.TrimSpace(line), 200)
		}
	}
	return truncate(firstLine(output), 200)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
