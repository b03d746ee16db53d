package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunelink/internal/formatter"
	"github.com/desertthunder/tunelink/internal/links"
	"github.com/desertthunder/tunelink/internal/models"
	"github.com/desertthunder/tunelink/internal/repositories"
	"github.com/desertthunder/tunelink/internal/services"
	"github.com/desertthunder/tunelink/internal/shared"
)

// Resolve looks up one link against the song-resolution service.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	link := cmd.StringArg("link")
	if link == "" {
		return fmt.Errorf("%w: link", shared.ErrMissingArgument)
	}

	platform := links.Classify(link)
	if platform == models.Unclassified {
		r.logger.Warn("link is not a supported platform, the bot would ignore it", "link", link)
	}

	client := services.NewSongsClient(r.config.Resolver)

	if cmd.Bool("raw") {
		resp, err := client.Raw(ctx, link)
		if err != nil {
			return err
		}
		r.logger.Debug("raw response", "status", resp.StatusCode)
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, true)
		}
		return r.writePlainln("%s", resp.Body)
	}

	song, err := client.Resolve(ctx, link)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", link, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s by %s", song.Title, song.Artist))
	r.writePlainln("source: %s", platform)
	for _, key := range formatter.OrderedLinkKeys(song.Links) {
		r.writePlainln("%-14s %s", formatter.PlatformLabel(key), song.Links[key])
	}
	return nil
}

// Searches prints or exports the most recent recorded searches.
func (r *Runner) Searches(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("json") && cmd.Bool("csv") {
		return fmt.Errorf("%w: cannot specify both --json and --csv", shared.ErrInvalidArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	entries, err := repositories.NewSearchRepository(db).Recent(ctx, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case cmd.Bool("csv"):
		if data, err = formatter.SearchesToCSV(entries); err != nil {
			return err
		}
	case cmd.Bool("json"):
		if data, err = json.MarshalIndent(entries, "", "  "); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		data = append(data, '\n')
	default:
		data = formatter.SearchesToText(entries)
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, data, cmd.Bool("force")); err != nil {
			return err
		}
		r.logger.Info("exported searches", "count", len(entries), "path", path)
		return nil
	}

	return r.writePlain("%s", data)
}

// Stats prints the search counter with a per-platform breakdown.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	repo := repositories.NewSearchRepository(db)
	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	platforms, err := repo.CountByPlatform(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"searches": total, "platforms": platforms}, true)
	}
	return r.writePlain("%s", formatter.StatsToText(total, platforms))
}
