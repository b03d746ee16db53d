package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunelink/internal/cache"
	"github.com/desertthunder/tunelink/internal/discord"
	"github.com/desertthunder/tunelink/internal/repositories"
	"github.com/desertthunder/tunelink/internal/server"
	"github.com/desertthunder/tunelink/internal/services"
	"github.com/desertthunder/tunelink/internal/shared"
	"github.com/desertthunder/tunelink/internal/tasks"
)

// Run connects the bot and blocks until SIGINT or SIGTERM.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := r.database()
	if err != nil {
		return err
	}
	guilds := repositories.NewGuildRepository(db)
	searches := repositories.NewSearchRepository(db)
	votes := repositories.NewVoteRepository(db)

	settings := cache.NewSettingsCache(guilds, r.config.Settings.CacheTTL(),
		cache.WithDefaultReplyTo(r.config.Settings.DefaultReplyTo),
		cache.WithLogger(shared.WithLogger(r.logger, "component", "settings")),
	)
	songs := services.NewSongsClient(r.config.Resolver)

	bot, err := discord.New(r.config.Discord.Token, r.config.Discord.ApplicationID, shared.WithLogger(r.logger, "component", "discord"))
	if err != nil {
		return err
	}

	pipeline := tasks.NewPipeline(settings, songs, bot, searches, shared.WithLogger(r.logger, "component", "pipeline"))
	bot.OnMessage(pipeline)

	if r.config.Accounts.BaseURL != "" {
		accounts := services.NewAccountsClient(ctx, r.config.Accounts)
		flow := tasks.NewPlaylistFlow(votes, songs, accounts, r.config.Votes.Window(), shared.WithLogger(r.logger, "component", "playlists"))
		bot.OnPlaylist(flow)
	}

	presence := tasks.NewPresenceRefresher(searches, bot, r.config.Presence.Schedule, shared.WithLogger(r.logger, "component", "presence"))
	bot.OnReady(presence.Sync)

	if err := bot.Open(ctx); err != nil {
		return err
	}
	defer bot.Close()

	if err := presence.Start(ctx); err != nil {
		return err
	}
	defer presence.Stop()

	serverErr := make(chan error, 1)
	serving := r.config.Server.Enabled && !cmd.Bool("no-server")
	if serving {
		logger := shared.WithLogger(r.logger, "component", "server")
		router := server.NewWebhookRouter(r.config.Server.WebhookSecret, votes, searches, logger)
		srv := server.NewServer(r.config.Server.Addr(), router, logger)
		go func() { serverErr <- srv.Run(ctx) }()
	}

	r.logger.Info("bot is running, press ctrl+c to stop")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("webhook server stopped: %w", err)
		}
		<-ctx.Done()
		serving = false
	}

	r.logger.Info("shutting down")
	if serving {
		if err := <-serverErr; err != nil {
			r.logger.Warn("webhook server shutdown failed", "error", err)
		}
	}
	return nil
}
