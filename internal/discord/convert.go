package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/desertthunder/tunelink/internal/formatter"
	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/tasks"
)

// ToInbound converts a gateway message.
func ToInbound(m *discordgo.Message) models.InboundMessage {
	msg := models.InboundMessage{
		Text: m.Content,
		Ref:  models.MessageRef{GuildID: m.GuildID, ChannelID: m.ChannelID, MessageID: m.ID},
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorIcon = m.Author.AvatarURL("")
		msg.AuthorIsBot = m.Author.Bot
	}
	return msg
}

// ToMessageEmbed converts a platform-neutral embed.
func ToMessageEmbed(e models.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
	}
	if e.Author != nil {
		out.Author = &discordgo.MessageEmbedAuthor{Name: e.Author.Name, IconURL: e.Author.IconURL}
	}
	if e.ThumbnailURL != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

// ToComponents renders each select menu in its own action row.
func ToComponents(menus []models.SelectMenu) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, len(menus))
	for _, m := range menus {
		menu := discordgo.SelectMenu{CustomID: m.CustomID, Placeholder: m.Placeholder}
		for _, o := range m.Options {
			opt := discordgo.SelectMenuOption{Label: o.Label, Value: o.Value}
			if o.Emoji != "" {
				opt.Emoji = &discordgo.ComponentEmoji{Name: o.Emoji}
			}
			menu.Options = append(menu.Options, opt)
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}})
	}
	return rows
}

// ErrorEmbedFor renders a playlist flow failure.
func ErrorEmbedFor(err error) *discordgo.MessageEmbed {
	return ToMessageEmbed(formatter.ErrorEmbed(tasks.UserMessage(err)))
}

func allowedMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{
		Parse:       []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers, discordgo.AllowedMentionTypeRoles},
		RepliedUser: false,
	}
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// targetContent returns the text of the message a context menu command was invoked on.
func targetContent(data discordgo.ApplicationCommandInteractionData) string {
	if data.Resolved == nil {
		return ""
	}
	if m, ok := data.Resolved.Messages[data.TargetID]; ok && m != nil {
		return m.Content
	}
	return ""
}
