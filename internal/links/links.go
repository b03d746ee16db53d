// Package links finds supported music links in chat messages.
package links

import (
	"regexp"
	"strings"

	"github.com/desertthunder/tunelink/internal/models"
)

// markers must appear somewhere in a message before any URL is extracted.
var markers = []string{
	"open.spotify.com/track",
	"open.spotify.com/album",
	"music.apple.com",
	"soundcloud.com",
}

var urlPattern = regexp.MustCompile(`(?i)\bhttps?://\S+`)

// Precheck reports whether text mentions any supported platform. Most messages fail here.
func Precheck(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Classify tags a single URL with its platform.
func Classify(raw string) models.Platform {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "spotify.com/track"):
		return models.SpotifyTrack
	case strings.Contains(lower, "spotify.com/album"):
		return models.SpotifyAlbum
	case strings.Contains(lower, "music.apple.com"):
		return models.AppleMusic
	case strings.Contains(lower, "soundcloud.com"):
		return models.SoundCloud
	default:
		return models.Unclassified
	}
}

// Extract returns every classified URL in text in order of appearance.
//
// Unclassified URLs are dropped. A trailing ">" from embed-suppressed links is trimmed.
func Extract(text string) []models.ExtractedLink {
	if !Precheck(text) {
		return nil
	}

	var out []models.ExtractedLink
	for _, raw := range urlPattern.FindAllString(text, -1) {
		raw = strings.TrimRight(raw, ">")
		if p := Classify(raw); p != models.Unclassified {
			out = append(out, models.ExtractedLink{Raw: raw, Platform: p})
		}
	}
	return out
}

// First returns the first classified link in text.
func First(text string) (models.ExtractedLink, bool) {
	found := Extract(text)
	if len(found) == 0 {
		return models.ExtractedLink{}, false
	}
	return found[0], true
}
