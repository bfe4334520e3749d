// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// checkCommand runs both discovery checks once and sends notifications.
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run the new-album and anniversary checks once",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "window",
				Aliases: []string{"w"},
				Usage:   "Lookback window in hours for new albums",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the album snapshot and sync the full catalog",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report findings without sending notifications",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
		},
		Action: r.Check,
	}
}

// albumsCommand queries the catalog without sending anything.
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "albums",
		Usage: "Query the music server catalog",
		Commands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "List albums added within the lookback window",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "window",
						Aliases: []string{"w"},
						Usage:   "Lookback window in hours",
						Value:   24,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.AlbumsRecent,
			},
			{
				Name:    "anniversaries",
				Aliases: []string{"anniv"},
				Usage:   "List albums whose release date matches a day and month",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "day",
						Usage: "Day of month (defaults to today)",
					},
					&cli.IntFlag{
						Name:  "month",
						Usage: "Month 1-12 (defaults to this month)",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Bypass the album snapshot and sync the full catalog",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.AlbumsAnniversaries,
			},
		},
	}
}

// cacheCommand manages the on-disk album snapshot.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the album snapshot cache",
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Force a full library sync and rewrite the snapshot",
				Action: r.CacheRefresh,
			},
			{
				Name:   "status",
				Usage:  "Show snapshot age and freshness",
				Action: r.CacheStatus,
			},
		},
	}
}

// watchCommand runs the daily check on a schedule until interrupted.
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the daily check on a schedule",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "at",
				Usage: "Time of day to run (HH:MM, defaults to config)",
			},
			&cli.BoolFlag{
				Name:  "run-on-startup",
				Usage: "Run one check immediately before scheduling",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report findings without sending notifications",
			},
		},
		Action: r.Watch,
	}
}

// notifyCommand sends ad-hoc messages for wiring checks.
func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Send a test message to the configured chat",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "text",
			},
		},
		Action: r.NotifyTest,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the notification log database",
				Action: r.SetupDatabase,
			},
		},
	}
}
