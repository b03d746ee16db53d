// Package discord adapts a discordgo session to the reply pipeline and the playlist flow.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/tunelink/internal/formatter"
	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/shared"
	"github.com/desertthunder/tunelink/internal/tasks"
)

// PlaylistCommand is the message context menu command backed by [tasks.PlaylistFlow].
const PlaylistCommand = "Add to Playlist"

var (
	_ tasks.Messenger    = (*Bot)(nil)
	_ tasks.StatusSetter = (*Bot)(nil)
)

const intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// MessageHandler consumes inbound guild messages.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg models.InboundMessage) []models.Outcome
}

// PlaylistHandler answers the playlist command and its select menus.
type PlaylistHandler interface {
	Prompt(ctx context.Context, userID, text string) (models.PlaylistPrompt, error)
	Select(ctx context.Context, userID, customID, value string) error
}

// Bot owns the gateway session. It implements [tasks.Messenger] and [tasks.StatusSetter].
type Bot struct {
	session *discordgo.Session
	appID   string
	logger  *log.Logger

	mu        sync.RWMutex
	ctx       context.Context
	messages  MessageHandler
	playlists PlaylistHandler
	ready     []func(ctx context.Context)
}

// New creates a bot for token. Nothing connects until [Bot.Open].
func New(token, appID string, logger *log.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: discord token is empty", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = intents

	b := &Bot{session: session, appID: appID, logger: logger, ctx: context.Background()}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onGuildDelete)
	return b, nil
}

// OnMessage sets the handler for guild messages.
func (b *Bot) OnMessage(h MessageHandler) {
	b.mu.Lock()
	b.messages = h
	b.mu.Unlock()
}

// OnPlaylist sets the handler for the playlist command.
func (b *Bot) OnPlaylist(h PlaylistHandler) {
	b.mu.Lock()
	b.playlists = h
	b.mu.Unlock()
}

// OnReady adds fn to the hooks run after every gateway Ready event, reconnects included.
func (b *Bot) OnReady(fn func(ctx context.Context)) {
	b.mu.Lock()
	b.ready = append(b.ready, fn)
	b.mu.Unlock()
}

// Open connects to the gateway and registers the playlist command when an application ID is configured.
// Event handlers run with ctx.
func (b *Bot) Open(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	if b.appID != "" {
		cmd := &discordgo.ApplicationCommand{Name: PlaylistCommand, Type: discordgo.MessageApplicationCommand}
		if _, err := b.session.ApplicationCommandCreate(b.appID, "", cmd, discordgo.WithContext(ctx)); err != nil {
			b.logger.Warn("failed to register playlist command", "error", err)
		}
	}
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

// Reply answers the message at ref with embed, without pinging its author.
func (b *Bot) Reply(ctx context.Context, ref models.MessageRef, embed models.Embed) error {
	msg := &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{ToMessageEmbed(embed)},
		Reference:       &discordgo.MessageReference{MessageID: ref.MessageID, ChannelID: ref.ChannelID, GuildID: ref.GuildID},
		AllowedMentions: allowedMentions(),
	}
	if _, err := b.session.ChannelMessageSendComplex(ref.ChannelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// React adds emoji to the message at ref.
func (b *Bot) React(ctx context.Context, ref models.MessageRef, emoji string) error {
	if err := b.session.MessageReactionAdd(ref.ChannelID, ref.MessageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

// SetListening sets the "Listening to <name>" status.
func (b *Bot) SetListening(ctx context.Context, name string) error {
	if err := b.session.UpdateListeningStatus(name); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

func (b *Bot) handlers() (context.Context, MessageHandler, PlaylistHandler) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx, b.messages, b.playlists
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		b.logger.Info("connected to discord", "user", r.User.Username, "guilds", len(r.Guilds))
	}

	b.mu.RLock()
	ctx, hooks := b.ctx, b.ready
	b.mu.RUnlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	b.logger.Debug("guild available", "guild", g.ID, "name", g.Name)
}

func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	b.logger.Info("removed from guild", "guild", g.ID)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, h, _ := b.handlers()
	if h == nil || m.Message == nil {
		return
	}
	h.HandleMessage(ctx, ToInbound(m.Message))
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, _, h := b.handlers()
	if h == nil {
		return
	}

	user := interactionUser(i.Interaction)
	if user == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name != PlaylistCommand {
			return
		}
		b.respondPrompt(ctx, h, i.Interaction, user.ID, targetContent(data))
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if !tasks.IsSelection(data.CustomID) || len(data.Values) == 0 {
			return
		}
		b.respondSelect(ctx, h, i.Interaction, user.ID, data.CustomID, data.Values[0])
	}
}

func (b *Bot) respondPrompt(ctx context.Context, h PlaylistHandler, i *discordgo.Interaction, userID, text string) {
	if !b.deferReply(ctx, i) {
		return
	}

	prompt, err := h.Prompt(ctx, userID, text)
	if err != nil {
		b.logger.Debug("playlist prompt failed", "user", userID, "error", err)
		b.editEmbed(ctx, i, ErrorEmbedFor(err), nil)
		return
	}
	b.editEmbed(ctx, i, ToMessageEmbed(prompt.Embed), ToComponents(prompt.Menus))
}

func (b *Bot) respondSelect(ctx context.Context, h PlaylistHandler, i *discordgo.Interaction, userID, customID, value string) {
	if !b.deferReply(ctx, i) {
		return
	}

	if err := h.Select(ctx, userID, customID, value); err != nil {
		b.logger.Debug("playlist selection failed", "user", userID, "error", err)
		b.editEmbed(ctx, i, ErrorEmbedFor(err), nil)
		return
	}
	b.editEmbed(ctx, i, ToMessageEmbed(models.Embed{Description: "Added to your playlist!", Color: formatter.EmbedColor}), nil)
}

func (b *Bot) deferReply(ctx context.Context, i *discordgo.Interaction) bool {
	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
	if err := b.session.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("failed to defer interaction", "error", err)
		return false
	}
	return true
}

func (b *Bot) editEmbed(ctx context.Context, i *discordgo.Interaction, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	embeds := []*discordgo.MessageEmbed{embed}
	edit := &discordgo.WebhookEdit{Embeds: &embeds}
	if components != nil {
		edit.Components = &components
	}
	if _, err := b.session.InteractionResponseEdit(i, edit, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("failed to edit interaction response", "error", err)
	}
}
