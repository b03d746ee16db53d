package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bwmarrin/discordgo"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunelink/internal/shared"
)

// invitePermissions are the channel permissions the bot needs to reply and react.
const invitePermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionEmbedLinks |
	discordgo.PermissionAddReactions |
	discordgo.PermissionReadMessageHistory

// InviteURL builds the OAuth2 authorize URL that adds the bot to a guild.
func InviteURL(applicationID string) string {
	q := url.Values{}
	q.Set("client_id", applicationID)
	q.Set("scope", "bot applications.commands")
	q.Set("permissions", fmt.Sprintf("%d", invitePermissions))
	return "https://discord.com/oauth2/authorize?" + q.Encode()
}

// Invite prints the invite URL and optionally opens it.
func (r *Runner) Invite(ctx context.Context, cmd *cli.Command) error {
	appID := r.config.Discord.ApplicationID
	if appID == "" {
		return fmt.Errorf("%w: discord application_id is required", shared.ErrMissingConfig)
	}

	link := InviteURL(appID)
	r.writePlainln("%s", link)

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(link); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}
	return nil
}
