package models

import (
	"fmt"
	"time"
)

// Platform identifies the streaming service a source link belongs to.
type Platform int

const (
	Unclassified Platform = iota
	SpotifyTrack
	SpotifyAlbum
	AppleMusic
	SoundCloud
)

// String returns the platform tag used in logs and the searches table.
func (p Platform) String() string {
	switch p {
	case SpotifyTrack:
		return "spotify-track"
	case SpotifyAlbum:
		return "spotify-album"
	case AppleMusic:
		return "apple-music"
	case SoundCloud:
		return "soundcloud"
	default:
		return "unclassified"
	}
}

// GuildSettings holds the reply configuration of a single guild.
type GuildSettings struct {
	GuildID   string
	ReplyTo   uint64 // permission bitfield, see package permissions
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExtractedLink is one URL found in a message, tagged with its platform.
type ExtractedLink struct {
	Raw      string
	Platform Platform
}

// SongRecord is the canonical song returned by the resolver.
//
// Links maps a platform key (e.g. "spotify", "apple_music") to that platform's URL for the song and may be partial.
type SongRecord struct {
	Title     string            `json:"title"`
	Artist    string            `json:"artist"`
	Thumbnail string            `json:"thumbnail,omitempty"`
	Links     map[string]string `json:"links"`
}

// OutcomeKind tags the terminal result of processing a link.
type OutcomeKind int

const (
	Replied OutcomeKind = iota
	NotFound
	RateLimited
	PermissionDenied
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Replied:
		return "replied"
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case PermissionDenied:
		return "permission_denied"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the single result produced for one [ExtractedLink].
//
// Err carries the reason when Kind is [Skipped].
type Outcome struct {
	Link ExtractedLink
	Kind OutcomeKind
	Song *SongRecord
	Err  error
}

// MessageRef addresses a message on the messaging platform.
type MessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

// InboundMessage is a chat message delivered by the platform adapter.
type InboundMessage struct {
	Text        string
	AuthorID    string
	AuthorName  string
	AuthorIcon  string
	AuthorIsBot bool
	Ref         MessageRef
}

// SearchEntry is one recorded successful resolution.
type SearchEntry struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guild_id"`
	Platform  string    `json:"platform"`
	Link      string    `json:"link"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	CreatedAt time.Time `json:"created_at"`
}

// Vote is an upvote delivered by the bot-list webhook.
type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	Type      string    `json:"type"`
	IsWeekend bool      `json:"isWeekend"`
	CreatedAt time.Time `json:"-"`
}

// Validate reports whether the vote can be stored.
func (v Vote) Validate() error {
	if v.UserID == "" {
		return fmt.Errorf("vote user is required")
	}
	return nil
}
