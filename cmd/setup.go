package main

import (
	"context"
	"fmt"

	"github.com/thornwolf/navigram/internal/repositories"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the given path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlainln("%s", r.palette.OK(fmt.Sprintf("✓ wrote %s", path)))
	r.writePlainln("%s", r.palette.Help("fill in your Navidrome and Telegram credentials before running checks"))
	return nil
}

// SetupDatabase creates the notification log schema.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db := r.db
	if db == nil {
		opened, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return err
		}
		defer opened.Close()
		db = opened
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := repositories.Migrate(db); err != nil {
		return err
	}

	r.writePlainln("%s", r.palette.OK(fmt.Sprintf("✓ database ready at %s", r.config.Database.Path)))
	return nil
}
