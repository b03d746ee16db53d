package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunelink/internal/formatter"
	"github.com/desertthunder/tunelink/internal/links"
	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
)

// MaxSelectOptions is the platform limit on options per select menu.
const MaxSelectOptions = 25

// User-facing playlist errors. Their messages are shown verbatim.
var (
	ErrNotVoted         = fmt.Errorf("This command is for voters only! Vote for the bot and try again in a minute.")
	ErrNoSongLink       = fmt.Errorf("I couldn't find a valid song link in this message - check and try again.")
	ErrNoLinkedServices = fmt.Errorf("You don't have any music services linked! Do `/api link` to get started!")
	ErrNoPlaylistMatch  = fmt.Errorf("This song isn't available on any of your linked services.")
	ErrInvalidSelection = fmt.Errorf("That selection isn't valid anymore - run the command again.")
)

// UserMessage returns the text shown to a user when the playlist flow fails with err.
func UserMessage(err error) string {
	for _, known := range []error{ErrNotVoted, ErrNoSongLink, ErrNoLinkedServices, ErrNoPlaylistMatch, ErrInvalidSelection} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	switch {
	case errors.Is(err, shared.ErrUnknownSong):
		return "I couldn't find that song on any platform."
	case errors.Is(err, shared.ErrBotRatelimited):
		return formatter.RateLimitedMessage
	}
	return "Something went wrong - try again later."
}

// VoteGate reports whether a user voted recently.
type VoteGate interface {
	HasVoted(ctx context.Context, userID string, since time.Time) (bool, error)
}

// AccountsAPI reads linked streaming accounts and edits their playlists.
type AccountsAPI interface {
	User(ctx context.Context, userID string) (models.MusicAccounts, error)
	UserPlaylists(ctx context.Context, userID, slug string) ([]models.UserPlaylist, error)
	AddTrack(ctx context.Context, userID, slug, playlistID, songID string) error
}

// accountPlatform describes a linkable service: its API slug, the resolver link key and how to derive a song ID.
type accountPlatform struct {
	slug    string
	linkKey string
	songID  func(link string) string
}

var accountPlatforms = map[string]accountPlatform{
	"spotify":    {slug: "spotify", linkKey: "spotify", songID: spotifySongID},
	"appleMusic": {slug: "apple-music", linkKey: "apple_music", songID: appleMusicSongID},
}

func spotifySongID(link string) string {
	_, id, ok := strings.Cut(link, "https://open.spotify.com/track/")
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "?")
	return id
}

func appleMusicSongID(link string) string {
	_, id, ok := strings.Cut(link, "?i=")
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "&")
	return id
}

// PlaylistFlow builds and answers the "Add to Playlist" prompt.
type PlaylistFlow struct {
	votes    VoteGate
	resolver SongResolver
	accounts AccountsAPI
	window   time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// NewPlaylistFlow creates a flow that accepts votes cast within window.
func NewPlaylistFlow(votes VoteGate, resolver SongResolver, accounts AccountsAPI, window time.Duration, logger *log.Logger) *PlaylistFlow {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistFlow{votes: votes, resolver: resolver, accounts: accounts, window: window, now: time.Now, logger: logger}
}

// Prompt builds the selection reply for the first supported link in text.
//
// Platforms whose playlists cannot be listed, or which carry no copy of the song, are left out.
func (f *PlaylistFlow) Prompt(ctx context.Context, userID, text string) (models.PlaylistPrompt, error) {
	voted, err := f.votes.HasVoted(ctx, userID, f.now().Add(-f.window))
	if err != nil {
		return models.PlaylistPrompt{}, fmt.Errorf("failed to check votes: %w", err)
	}
	if !voted {
		return models.PlaylistPrompt{}, ErrNotVoted
	}

	link, ok := links.First(text)
	if !ok {
		return models.PlaylistPrompt{}, ErrNoSongLink
	}

	song, err := f.resolver.Resolve(ctx, link.Raw)
	if err != nil {
		return models.PlaylistPrompt{}, err
	}

	accounts, err := f.accounts.User(ctx, userID)
	if err != nil {
		return models.PlaylistPrompt{}, err
	}
	linked := accounts.Platforms()
	if len(linked) == 0 {
		return models.PlaylistPrompt{}, ErrNoLinkedServices
	}

	prompt := models.PlaylistPrompt{Embed: formatter.PlaylistPromptEmbed(*song)}
	for _, key := range linked {
		menu, ok := f.menu(ctx, userID, key, song)
		if ok {
			prompt.Menus = append(prompt.Menus, menu)
		}
	}
	if len(prompt.Menus) == 0 {
		return models.PlaylistPrompt{}, ErrNoPlaylistMatch
	}
	return prompt, nil
}

func (f *PlaylistFlow) menu(ctx context.Context, userID, key string, song *models.SongRecord) (models.SelectMenu, bool) {
	platform, ok := accountPlatforms[key]
	if !ok {
		return models.SelectMenu{}, false
	}

	songID := platform.songID(song.Links[platform.linkKey])
	if songID == "" {
		f.logger.Debug("song missing on linked platform", "user", userID, "platform", key)
		return models.SelectMenu{}, false
	}

	playlists, err := f.accounts.UserPlaylists(ctx, userID, platform.slug)
	if err != nil {
		f.logger.Warn("failed to list playlists", "user", userID, "platform", key, "error", err)
		return models.SelectMenu{}, false
	}
	if len(playlists) == 0 {
		return models.SelectMenu{}, false
	}
	if len(playlists) > MaxSelectOptions {
		playlists = playlists[:MaxSelectOptions]
	}

	menu := models.SelectMenu{
		CustomID:    fmt.Sprintf("select_%s_%s", userID, key),
		Placeholder: fmt.Sprintf("Select a %s playlist from the list", formatter.TitleCase(platform.slug)),
	}
	for _, p := range playlists {
		menu.Options = append(menu.Options, models.SelectOption{
			Label: p.Name,
			Value: fmt.Sprintf("_%s_%s", p.ID, songID),
			Emoji: formatter.PlatformEmoji(platform.linkKey),
		})
	}
	return menu, true
}

// Select adds the song encoded in value to the chosen playlist.
//
// customID must be a menu issued to userID by [PlaylistFlow.Prompt].
func (f *PlaylistFlow) Select(ctx context.Context, userID, customID, value string) error {
	rest, ok := strings.CutPrefix(customID, "select_")
	if !ok {
		return ErrInvalidSelection
	}
	owner, key, ok := strings.Cut(rest, "_")
	if !ok || owner != userID {
		return ErrInvalidSelection
	}
	platform, ok := accountPlatforms[key]
	if !ok {
		return ErrInvalidSelection
	}

	playlistID, songID, ok := parseSelection(value)
	if !ok {
		return ErrInvalidSelection
	}

	if err := f.accounts.AddTrack(ctx, userID, platform.slug, playlistID, songID); err != nil {
		return err
	}
	f.logger.Info("track added to playlist", "user", userID, "platform", key, "playlist", playlistID)
	return nil
}

// IsSelection reports whether customID belongs to a playlist menu.
func IsSelection(customID string) bool {
	return strings.HasPrefix(customID, "select_")
}

// parseSelection splits "_<playlistID>_<songID>".
func parseSelection(value string) (playlistID, songID string, ok bool) {
	rest, ok := strings.CutPrefix(value, "_")
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, "_")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
