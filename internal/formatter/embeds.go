// package formatter builds chat embeds and renders search history as CSV or plain text
package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/tunelink/internal/models"
)

const (
	// EmbedColor is the accent used by every embed the bot sends.
	EmbedColor = 0x212121

	RateLimitedMessage = "The bot is currently ratelimited. Try again in a minute."
	PlaylistFooter     = "Playlist not showing? Discord only has 25 select options"
)

type platformInfo struct {
	key   string
	label string
	emoji string
}

// platformOrder is the display order of resolver link keys.
var platformOrder = []platformInfo{
	{"spotify", "Spotify", "🟢"},
	{"apple_music", "Apple Music", "🍎"},
	{"youtube", "YouTube", "📺"},
	{"youtube_music", "YouTube Music", "🔴"},
	{"soundcloud", "SoundCloud", "☁️"},
	{"tidal", "Tidal", "🌊"},
	{"deezer", "Deezer", "🎧"},
}

// PlatformLabel returns the human name for a resolver link key.
func PlatformLabel(key string) string {
	for _, p := range platformOrder {
		if p.key == key {
			return p.label
		}
	}
	return TitleCase(strings.NewReplacer("_", " ", "-", " ").Replace(key))
}

// PlatformEmoji returns the option emoji for a resolver link key, or "" when none is known.
func PlatformEmoji(key string) string {
	for _, p := range platformOrder {
		if p.key == key {
			return p.emoji
		}
	}
	return ""
}

// OrderedLinkKeys returns the keys of links with known platforms first, then the rest alphabetically.
// Empty URLs are skipped.
func OrderedLinkKeys(links map[string]string) []string {
	keys := make([]string, 0, len(links))
	seen := make(map[string]bool, len(platformOrder))
	for _, p := range platformOrder {
		seen[p.key] = true
		if links[p.key] != "" {
			keys = append(keys, p.key)
		}
	}

	var rest []string
	for k, v := range links {
		if !seen[k] && v != "" {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// SongEmbed is the reply sent for a resolved link. requester may be nil.
func SongEmbed(song models.SongRecord, requester *models.EmbedAuthor) models.Embed {
	e := models.Embed{
		Title:        song.Title,
		Description:  fmt.Sprintf("by %s", song.Artist),
		Color:        EmbedColor,
		Author:       requester,
		ThumbnailURL: song.Thumbnail,
	}

	for _, key := range OrderedLinkKeys(song.Links) {
		label := PlatformLabel(key)
		e.Fields = append(e.Fields, models.EmbedField{
			Name:   label,
			Value:  fmt.Sprintf("[Open in %s](%s)", label, song.Links[key]),
			Inline: true,
		})
	}

	if len(e.Fields) == 0 {
		e.Footer = "No other platforms carry this song yet"
	}
	return e
}

// RateLimitedEmbed is the notice sent when the resolver quota is exhausted.
func RateLimitedEmbed(requester *models.EmbedAuthor) models.Embed {
	return models.Embed{
		Description: RateLimitedMessage,
		Color:       EmbedColor,
		Author:      requester,
	}
}

// PlaylistPromptEmbed heads the playlist selection reply.
func PlaylistPromptEmbed(song models.SongRecord) models.Embed {
	return models.Embed{
		Author: &models.EmbedAuthor{
			Name:    fmt.Sprintf("%s by %s", song.Title, song.Artist),
			IconURL: song.Thumbnail,
		},
		Color:       EmbedColor,
		Description: "Add this song to your playlist by selecting one in the dropdown.",
		Footer:      PlaylistFooter,
	}
}

// ErrorEmbed renders a user-facing failure message.
func ErrorEmbed(message string) models.Embed {
	return models.Embed{Description: message, Color: EmbedColor}
}

// TitleCase upper-cases the first letter of each space or dash separated word and joins them with spaces.
func TitleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
