package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunelink/internal/permissions"
	"github.com/desertthunder/tunelink/internal/repositories"
	"github.com/desertthunder/tunelink/internal/shared"
)

type settingsView struct {
	GuildID string   `json:"guild_id"`
	ReplyTo uint64   `json:"reply_to"`
	Enabled []string `json:"enabled"`
	Stored  bool     `json:"stored"`
}

// SettingsGet prints the reply permissions of one guild. Unknown guilds show the defaults they would get.
func (r *Runner) SettingsGet(ctx context.Context, cmd *cli.Command) error {
	guildID := cmd.StringArg("guild")
	if guildID == "" {
		return fmt.Errorf("%w: guild", shared.ErrMissingArgument)
	}

	view, err := r.guildSettings(ctx, guildID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, true)
	}
	r.writeSettings(view)
	return nil
}

// SettingsSet enables or disables one capability for a guild.
func (r *Runner) SettingsSet(ctx context.Context, cmd *cli.Command) error {
	guildID := cmd.StringArg("guild")
	name := cmd.StringArg("capability")
	if guildID == "" || name == "" {
		return fmt.Errorf("%w: guild and capability", shared.ErrMissingArgument)
	}

	capability, err := permissions.Parse(name)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	view, err := r.guildSettings(ctx, guildID)
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	flags := permissions.Set(view.ReplyTo, capability, cmd.Bool("enabled"))
	if err := repositories.NewGuildRepository(db).UpdateReplyTo(ctx, guildID, flags); err != nil {
		return err
	}

	r.logger.Info("updated guild settings", "guild", guildID, "capability", capability, "enabled", cmd.Bool("enabled"))
	r.writeSettings(settingsView{GuildID: guildID, ReplyTo: flags, Enabled: permissions.Describe(flags), Stored: true})
	return nil
}

// SettingsList prints every guild the bot has stored settings for.
func (r *Runner) SettingsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	all, err := repositories.NewGuildRepository(db).List(ctx)
	if err != nil {
		return err
	}

	views := make([]settingsView, len(all))
	for i, s := range all {
		views[i] = settingsView{GuildID: s.GuildID, ReplyTo: s.ReplyTo, Enabled: permissions.Describe(s.ReplyTo), Stored: true}
	}

	if cmd.Bool("json") {
		return r.writeJSON(views, true)
	}

	r.writePlainHeader(fmt.Sprintf("%d guilds", len(views)))
	for _, v := range views {
		r.writePlainln("%-20s %s", v.GuildID, enabledText(v.Enabled))
	}
	return nil
}

func (r *Runner) guildSettings(ctx context.Context, guildID string) (settingsView, error) {
	db, err := r.database()
	if err != nil {
		return settingsView{}, err
	}

	settings, err := repositories.NewGuildRepository(db).FindByGuild(ctx, guildID)
	if err != nil {
		return settingsView{}, err
	}
	if settings == nil {
		flags := r.config.Settings.DefaultReplyTo
		return settingsView{GuildID: guildID, ReplyTo: flags, Enabled: permissions.Describe(flags)}, nil
	}
	return settingsView{GuildID: guildID, ReplyTo: settings.ReplyTo, Enabled: permissions.Describe(settings.ReplyTo), Stored: true}, nil
}

func (r *Runner) writeSettings(v settingsView) {
	r.writePlainHeader("Guild " + v.GuildID)
	r.writePlainln("reply_to: %d", v.ReplyTo)
	r.writePlainln("enabled:  %s", enabledText(v.Enabled))
	if !v.Stored {
		r.writePlainln("(not stored yet, defaults apply)")
	}
}

func enabledText(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
