package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunelink/internal/formatter"
	"github.com/desertthunder/tunelink/internal/links"
	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/permissions"
	"github.com/desertthunder/tunelink/internal/shared"
)

// UnknownSongEmoji is the reaction added when the resolver does not know a song.
const UnknownSongEmoji = "❓"

// SettingsProvider returns guild settings, creating them on first use.
type SettingsProvider interface {
	GetOrCreate(ctx context.Context, guildID string) (models.GuildSettings, error)
}

// SongResolver resolves a source link into a song.
type SongResolver interface {
	Resolve(ctx context.Context, link string) (*models.SongRecord, error)
}

// Messenger sends replies and reactions on the messaging platform.
type Messenger interface {
	Reply(ctx context.Context, ref models.MessageRef, embed models.Embed) error
	React(ctx context.Context, ref models.MessageRef, emoji string) error
}

// SearchCounter records successful resolutions and reads the running total.
type SearchCounter interface {
	Record(ctx context.Context, entry models.SearchEntry) error
	Count(ctx context.Context) (int64, error)
}

// Pipeline turns inbound messages into replies.
type Pipeline struct {
	settings  SettingsProvider
	resolver  SongResolver
	messenger Messenger
	counter   SearchCounter
	logger    *log.Logger
	now       func() time.Time
}

// NewPipeline creates a pipeline. A nil logger logs to stderr.
func NewPipeline(settings SettingsProvider, resolver SongResolver, messenger Messenger, counter SearchCounter, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Pipeline{
		settings:  settings,
		resolver:  resolver,
		messenger: messenger,
		counter:   counter,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleMessage processes msg and returns one outcome per supported link, in message order.
//
// Messages outside a guild and messages written by bots produce no outcomes.
func (p *Pipeline) HandleMessage(ctx context.Context, msg models.InboundMessage) []models.Outcome {
	if msg.Ref.GuildID == "" || msg.AuthorIsBot {
		return nil
	}

	var requester *models.EmbedAuthor
	if msg.AuthorName != "" {
		requester = &models.EmbedAuthor{Name: msg.AuthorName, IconURL: msg.AuthorIcon}
	}
	return p.handle(ctx, msg.Text, msg.Ref, requester)
}

// Handle processes text posted at ref without requester details.
func (p *Pipeline) Handle(ctx context.Context, text string, ref models.MessageRef) []models.Outcome {
	if ref.GuildID == "" {
		return nil
	}
	return p.handle(ctx, text, ref, nil)
}

func (p *Pipeline) handle(ctx context.Context, text string, ref models.MessageRef, requester *models.EmbedAuthor) []models.Outcome {
	found := links.Extract(text)
	if len(found) == 0 {
		return nil
	}

	outcomes := make([]models.Outcome, len(found))
	var wg sync.WaitGroup
	for i, link := range found {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = p.safeHandleLink(ctx, ref, requester, link)
		}()
	}
	wg.Wait()

	for _, o := range outcomes {
		p.logOutcome(ref, o)
	}
	return outcomes
}

func (p *Pipeline) safeHandleLink(ctx context.Context, ref models.MessageRef, requester *models.EmbedAuthor, link models.ExtractedLink) (out models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = models.Outcome{Link: link, Kind: models.Skipped, Err: fmt.Errorf("panic while handling link: %v", r)}
		}
	}()
	return p.handleLink(ctx, ref, requester, link)
}

func (p *Pipeline) handleLink(ctx context.Context, ref models.MessageRef, requester *models.EmbedAuthor, link models.ExtractedLink) models.Outcome {
	out := models.Outcome{Link: link}

	settings, err := p.settings.GetOrCreate(ctx, ref.GuildID)
	if err != nil {
		out.Kind, out.Err = models.Skipped, err
		return out
	}

	if !permissions.AllowsLink(settings, link.Platform) {
		out.Kind = models.PermissionDenied
		return out
	}

	song, err := p.resolver.Resolve(ctx, link.Raw)
	switch {
	case errors.Is(err, shared.ErrUnknownSong):
		if rerr := p.messenger.React(ctx, ref, UnknownSongEmoji); rerr != nil {
			out.Kind, out.Err = models.Skipped, fmt.Errorf("failed to react: %w", rerr)
			return out
		}
		out.Kind, out.Err = models.NotFound, err
		return out
	case errors.Is(err, shared.ErrBotRatelimited):
		if rerr := p.messenger.Reply(ctx, ref, formatter.RateLimitedEmbed(requester)); rerr != nil {
			out.Kind, out.Err = models.Skipped, fmt.Errorf("failed to send rate limit notice: %w", rerr)
			return out
		}
		out.Kind, out.Err = models.RateLimited, err
		return out
	case err != nil:
		out.Kind, out.Err = models.Skipped, err
		return out
	case song == nil:
		out.Kind, out.Err = models.Skipped, fmt.Errorf("%w: resolver returned no song", shared.ErrTransientFailure)
		return out
	}

	if err := p.messenger.Reply(ctx, ref, formatter.SongEmbed(*song, requester)); err != nil {
		out.Kind, out.Err = models.Skipped, fmt.Errorf("failed to send reply: %w", err)
		return out
	}

	entry := models.SearchEntry{
		GuildID:   ref.GuildID,
		Platform:  link.Platform.String(),
		Link:      link.Raw,
		Title:     song.Title,
		Artist:    song.Artist,
		CreatedAt: p.now(),
	}
	if err := p.counter.Record(ctx, entry); err != nil {
		p.logger.Warn("failed to record search", "guild", ref.GuildID, "link", link.Raw, "error", err)
	}

	out.Kind, out.Song = models.Replied, song
	return out
}

func (p *Pipeline) logOutcome(ref models.MessageRef, o models.Outcome) {
	kv := []any{"guild", ref.GuildID, "link", o.Link.Raw, "platform", o.Link.Platform, "outcome", o.Kind}
	if o.Err != nil {
		kv = append(kv, "error", o.Err)
	}

	switch o.Kind {
	case models.Skipped:
		p.logger.Warn("link skipped", kv...)
	case models.Replied:
		p.logger.Info("link resolved", kv...)
	default:
		p.logger.Debug("link handled", kv...)
	}
}
