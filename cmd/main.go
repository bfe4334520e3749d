package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/thornwolf/navigram/internal/catalog"
	"github.com/thornwolf/navigram/internal/repositories"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/thornwolf/navigram/internal/subsonic"
	"github.com/thornwolf/navigram/internal/telegram"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "err", err)
		}
	}

	client := subsonic.NewClient(config.Navidrome, nil, logger)

	var limiter *rate.Limiter
	if config.Navidrome.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.Navidrome.RateLimit), 1)
	}
	library := subsonic.NewLibrary(client, limiter, logger)

	store := catalog.NewFileStore(config.Cache.Path)
	cache := catalog.NewCache(library, store, config.Cache.TTL(), logger)

	sender := telegram.NewSender(config.Telegram, nil, logger)

	var db *sql.DB
	if opened, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(opened, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := repositories.Migrate(opened); err == nil {
			db = opened
		} else {
			logger.Warn("notification log unavailable", "err", err)
			opened.Close()
		}
	} else {
		logger.Warn("notification log unavailable", "err", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Source:   library,
		Cache:    cache,
		Store:    store,
		Notifier: sender,
		DB:       db,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "navigram",
		Usage:    "Navidrome album discovery & Telegram notifications",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
