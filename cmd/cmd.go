// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

// runCommand starts the bot, the presence refresher and the votes webhook server.
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"start"},
		Usage:   "Connect to Discord and answer music links",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-server",
				Usage: "Do not start the votes webhook server",
			},
		},
		Action: r.Run,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and database",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// settingsCommand reads and changes per-guild reply permissions.
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Per-guild reply permissions",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the permissions of a guild",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "guild"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SettingsGet,
			},
			{
				Name:  "set",
				Usage: "Enable or disable replies for one platform",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "guild"},
					&cli.StringArg{Name: "capability"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "enabled",
						Usage: "Enable the capability (use --enabled=false to disable)",
						Value: true,
					},
				},
				Action: r.SettingsSet,
			},
			{
				Name:  "list",
				Usage: "List all known guilds",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SettingsList,
			},
		},
	}
}

// resolveCommand resolves one link against the song-resolution service.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a music link and print the platforms it is available on",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "Print the unparsed service response",
			},
		},
		Action: r.Resolve,
	}
}

func searchesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "searches",
		Usage: "Show or export recorded searches",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of searches to return",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite the output file",
			},
		},
		Action: r.Searches,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show the search counter and per-platform totals",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Stats,
	}
}

// monitorCommand returns the TUI that watches searches as they are recorded.
func monitorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"tui", "ui"},
		Usage:   "Watch the search counter and recent searches",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Refresh interval",
				Value: 5 * time.Second,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recent searches to show",
				Value: 50,
			},
		},
		Action: r.Monitor,
	}
}

func inviteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "invite",
		Usage: "Print the bot invite URL",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the URL in the default browser",
			},
		},
		Action: r.Invite,
	}
}
