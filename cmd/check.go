package main

import (
	"context"
	"fmt"
	"time"

	"github.com/thornwolf/navigram/internal/formatter"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/urfave/cli/v3"
)

// Check runs both discovery checks once and reports what was found and sent.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	window := time.Duration(cmd.Int("window")) * time.Hour
	engine := r.newEngine(window, !cmd.Bool("no-cache"), cmd.Bool("dry-run"))

	result := engine.RunDailyCheck(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writeHeader("Daily Check")
	r.writePlainln("New albums: %d", len(result.NewAlbums))
	if len(result.NewAlbums) > 0 {
		r.writePlain("%s", formatter.AlbumListText(result.NewAlbums))
	}
	if result.NewAlbumsErr != nil {
		r.writePlainln("%s", r.palette.Warn(fmt.Sprintf("new-album check incomplete: %v", result.NewAlbumsErr)))
	}

	r.writePlainln("Anniversaries: %d", len(result.Anniversaries))
	if len(result.Anniversaries) > 0 {
		r.writePlain("%s", formatter.AlbumListText(result.Anniversaries))
	}
	if result.AnniversariesErr != nil {
		r.writePlainln("%s", r.palette.Warn(fmt.Sprintf("anniversary check incomplete: %v", result.AnniversariesErr)))
	}

	r.writePlainln("%s", r.palette.OK(fmt.Sprintf("notifications sent: %d", result.Sent)))
	return nil
}

// AlbumsRecent lists albums created within the lookback window.
func (r *Runner) AlbumsRecent(ctx context.Context, cmd *cli.Command) error {
	window := time.Duration(cmd.Int("window")) * time.Hour
	if window <= 0 {
		window = r.config.Schedule.Window()
	}

	albums, err := r.source.RecentAlbums(ctx, window)
	if err != nil {
		r.logger.Warn("recent album query incomplete", "err", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(albums, cmd.Bool("pretty"))
	}

	r.writeHeader(fmt.Sprintf("Albums added in the last %dh", int(window.Hours())))
	if len(albums) == 0 {
		r.writePlainln("%s", r.palette.Help("none found"))
		return nil
	}
	return r.writePlain("%s", formatter.AlbumListText(albums))
}

// AlbumsAnniversaries lists albums whose release date matches a day/month.
func (r *Runner) AlbumsAnniversaries(ctx context.Context, cmd *cli.Command) error {
	if r.annivs == nil {
		return fmt.Errorf("%w: anniversary cache not configured", shared.ErrMissingConfig)
	}

	now := time.Now()
	day := cmd.Int("day")
	month := cmd.Int("month")
	if day == 0 {
		day = now.Day()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("%w: day %d month %d", shared.ErrInvalidFlag, day, month)
	}

	albums, err := r.annivs.Query(ctx, day, month, !cmd.Bool("no-cache"))
	if err != nil {
		r.logger.Warn("anniversary query incomplete", "err", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(albums, cmd.Bool("pretty"))
	}

	r.writeHeader(fmt.Sprintf("Release anniversaries for %02d-%02d", month, day))
	if len(albums) == 0 {
		r.writePlainln("%s", r.palette.Help("none found"))
		return nil
	}
	return r.writePlain("%s", formatter.AlbumListText(albums))
}

// CacheRefresh forces a full library sync and snapshot rewrite.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: anniversary cache not configured", shared.ErrMissingConfig)
	}

	count, err := r.cache.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("cache refresh failed after %d albums: %w", count, err)
	}

	r.writePlainln("%s", r.palette.OK(fmt.Sprintf("✓ cached %d albums", count)))
	return nil
}

// CacheStatus reports snapshot age and freshness.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	if r.store == nil {
		return fmt.Errorf("%w: anniversary cache not configured", shared.ErrMissingConfig)
	}

	age, err := r.store.Age()
	if err != nil {
		r.writePlainln("%s", r.palette.Warn("no snapshot on disk"))
		return nil
	}

	ttl := r.config.Cache.TTL()
	state := r.palette.OK("FRESH")
	if age >= ttl {
		state = r.palette.Warn("STALE")
	}

	r.writePlainln("snapshot: %s", r.config.Cache.Path)
	r.writePlainln("age: %s (ttl %s) %s", age.Round(time.Second), ttl, state)
	return nil
}

// NotifyTest sends an ad-hoc message to the configured chat.
func (r *Runner) NotifyTest(ctx context.Context, cmd *cli.Command) error {
	if r.notifier == nil {
		return fmt.Errorf("%w: notifier not configured", shared.ErrMissingConfig)
	}

	text := cmd.StringArg("text")
	if text == "" {
		text = "navigram test message"
	}

	if err := r.notifier.Send(ctx, text); err != nil {
		return fmt.Errorf("failed to send test message: %w", err)
	}

	r.writePlainln("%s", r.palette.OK("✓ message sent"))
	return nil
}
