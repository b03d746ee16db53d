package models

// Embed is a platform-neutral rich message.
type Embed struct {
	Title        string
	Description  string
	URL          string
	Color        int
	Author       *EmbedAuthor
	ThumbnailURL string
	Fields       []EmbedField
	Footer       string
}

type EmbedAuthor struct {
	Name    string
	IconURL string
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// SelectOption is a single entry of a [SelectMenu].
type SelectOption struct {
	Label string
	Value string
	Emoji string
}

// SelectMenu is a dropdown attached to an ephemeral reply.
type SelectMenu struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

// PlaylistPrompt is the reply to the "Add to Playlist" command.
type PlaylistPrompt struct {
	Embed Embed
	Menus []SelectMenu
}

// MusicAccounts lists the streaming services a user has linked.
type MusicAccounts struct {
	Spotify    bool `json:"spotify"`
	AppleMusic bool `json:"appleMusic"`
}

// Platforms returns the account keys of the linked services in display order.
func (a MusicAccounts) Platforms() []string {
	var out []string
	if a.Spotify {
		out = append(out, "spotify")
	}
	if a.AppleMusic {
		out = append(out, "appleMusic")
	}
	return out
}

// UserPlaylist is a playlist owned by a user on one service.
type UserPlaylist struct {
	Name string `json:"playlist_display_name"`
	ID   string `json:"playlist_id"`
}
