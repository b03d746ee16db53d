// Package permissions evaluates guild reply flags against named capabilities.
package permissions

import (
	"fmt"
	"strings"

	"github.com/desertthunder/tunelink/internal/models"
)

// Capability is a single bit of [models.GuildSettings.ReplyTo].
type Capability uint64

const (
	ReplySpotify    Capability = 1 << 0
	ReplyAM         Capability = 1 << 1
	ReplySoundcloud Capability = 1 << 2

	// All enables every auto-reply category.
	All = ReplySpotify | ReplyAM | ReplySoundcloud
)

var names = []struct {
	name string
	cap  Capability
}{
	{"replySpotify", ReplySpotify},
	{"replyAM", ReplyAM},
	{"replySoundcloud", ReplySoundcloud},
}

func (c Capability) String() string {
	for _, n := range names {
		if n.cap == c {
			return n.name
		}
	}
	return fmt.Sprintf("capability(%d)", uint64(c))
}

// Allows reports whether flags has the bit for c set.
func Allows(flags uint64, c Capability) bool {
	return c != 0 && flags&uint64(c) == uint64(c)
}

// For maps a platform to the capability gating auto-replies for it.
//
// Spotify albums share the track capability. ok is false for [models.Unclassified].
func For(p models.Platform) (c Capability, ok bool) {
	switch p {
	case models.SpotifyTrack, models.SpotifyAlbum:
		return ReplySpotify, true
	case models.AppleMusic:
		return ReplyAM, true
	case models.SoundCloud:
		return ReplySoundcloud, true
	case models.Unclassified:
		return 0, false
	}
	return 0, false
}

// AllowsLink reports whether settings permit an auto-reply for a link on platform p.
func AllowsLink(settings models.GuildSettings, p models.Platform) bool {
	c, ok := For(p)
	return ok && Allows(settings.ReplyTo, c)
}

// Parse resolves a capability by name, case-insensitively.
func Parse(name string) (Capability, error) {
	for _, n := range names {
		if strings.EqualFold(n.name, name) {
			return n.cap, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// Set returns flags with c enabled or disabled.
func Set(flags uint64, c Capability, enabled bool) uint64 {
	if enabled {
		return flags | uint64(c)
	}
	return flags &^ uint64(c)
}

// Describe lists the enabled capability names in flags.
func Describe(flags uint64) []string {
	var out []string
	for _, n := range names {
		if Allows(flags, n.cap) {
			out = append(out, n.name)
		}
	}
	return out
}
