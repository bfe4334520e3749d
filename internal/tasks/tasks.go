package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/formatter"
	"github.com/thornwolf/navigram/internal/repositories"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/thornwolf/navigram/internal/subsonic"
)

// AlbumSource answers the rolling new-albums query.
type AlbumSource interface {
	RecentAlbums(ctx context.Context, window time.Duration) ([]subsonic.Album, error)
}

// AnniversaryQuerier answers day/month release-date lookups.
type AnniversaryQuerier interface {
	Query(ctx context.Context, day, month int, useCache bool) ([]subsonic.Album, error)
}

// Notifier delivers one formatted message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// NotificationLog suppresses duplicate announcements across runs.
type NotificationLog interface {
	Seen(albumID, kind string) (bool, error)
	SeenSince(albumID, kind string, since time.Time) (bool, error)
	Record(albumID, kind string) error
}

// CheckEngine runs the two discovery checks and forwards notifications.
type CheckEngine struct {
	source   AlbumSource
	annivs   AnniversaryQuerier
	notifier Notifier
	logbook  NotificationLog
	logger   *log.Logger

	window   time.Duration
	useCache bool
	dryRun   bool
	now      func() time.Time
}

// CheckEngineOpts configures a CheckEngine. Source and Anniversaries are
// required; Notifier and Logbook may be nil, which disables delivery and
// dedupe respectively.
type CheckEngineOpts struct {
	Source        AlbumSource
	Anniversaries AnniversaryQuerier
	Notifier      Notifier
	Logbook       NotificationLog
	Logger        *log.Logger
	Window        time.Duration
	UseCache      bool
	DryRun        bool
}

// NewCheckEngine creates a CheckEngine with the provided collaborators.
func NewCheckEngine(opts CheckEngineOpts) *CheckEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Window <= 0 {
		opts.Window = 24 * time.Hour
	}

	return &CheckEngine{
		source:   opts.Source,
		annivs:   opts.Anniversaries,
		notifier: opts.Notifier,
		logbook:  opts.Logbook,
		logger:   opts.Logger,
		window:   opts.Window,
		useCache: opts.UseCache,
		dryRun:   opts.DryRun,
		now:      time.Now,
	}
}

// CheckResult collects everything a single run found and delivered.
type CheckResult struct {
	RunID            string
	NewAlbums        []subsonic.Album
	Anniversaries    []subsonic.Album
	NewAlbumsErr     error
	AnniversariesErr error
	Sent             int
}

// RunDailyCheck runs the new-albums check and the anniversary check.
//
// The two checks are independent: a failure in one never prevents the
// other, and errors are recorded on the result instead of aborting. Total
// failure degrades to empty result sets plus diagnostic logging.
func (e *CheckEngine) RunDailyCheck(ctx context.Context) *CheckResult {
	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run_id", runID)
	result := &CheckResult{RunID: runID}

	logger.Info("checking for new albums", "window", e.window)
	result.NewAlbums, result.NewAlbumsErr = e.source.RecentAlbums(ctx, e.window)
	if result.NewAlbumsErr != nil {
		logger.Error("new album check incomplete", "err", result.NewAlbumsErr)
	}

	fresh := e.filterUnseen(logger, result.NewAlbums, repositories.KindNewAlbum, time.Time{})
	if len(fresh) > 0 {
		msg := formatter.AlbumListHTML(fresh, fmt.Sprintf("🆕 Freshly Added Albums (Last %dh)", int(e.window.Hours())))
		if e.deliver(ctx, logger, msg, fresh, repositories.KindNewAlbum) {
			result.Sent++
		}
	} else {
		logger.Info("no new albums to announce")
	}

	now := e.now()
	logger.Info("checking for anniversaries", "day", now.Day(), "month", int(now.Month()))
	result.Anniversaries, result.AnniversariesErr = e.annivs.Query(ctx, now.Day(), int(now.Month()), e.useCache)
	if result.AnniversariesErr != nil {
		logger.Error("anniversary check incomplete", "err", result.AnniversariesErr)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	celebrating := e.filterUnseen(logger, result.Anniversaries, repositories.KindAnniversary, midnight)
	if len(celebrating) > 0 {
		intro := fmt.Sprintf("🎂 On this day (%s) in music history", now.Format("January 2"))
		msg := formatter.AlbumListHTML(celebrating, intro)
		if e.deliver(ctx, logger, msg, celebrating, repositories.KindAnniversary) {
			result.Sent++
		}
	} else {
		logger.Info("no anniversaries to announce")
	}

	logger.Info("daily check completed",
		"new", len(result.NewAlbums), "anniversaries", len(result.Anniversaries), "sent", result.Sent)
	return result
}

// filterUnseen drops albums the logbook already announced for this kind.
// A zero since means "ever"; otherwise only announcements at or after the
// instant count. Logbook errors keep the album in, so a broken database
// degrades to a possible duplicate message rather than a missed one.
func (e *CheckEngine) filterUnseen(logger *log.Logger, albums []subsonic.Album, kind string, since time.Time) []subsonic.Album {
	if e.logbook == nil || len(albums) == 0 {
		return albums
	}

	var unseen []subsonic.Album
	for _, album := range albums {
		var seen bool
		var err error
		if since.IsZero() {
			seen, err = e.logbook.Seen(album.ID, kind)
		} else {
			seen, err = e.logbook.SeenSince(album.ID, kind, since)
		}
		if err != nil {
			logger.Warn("notification log lookup failed", "album", album.Name, "err", err)
			unseen = append(unseen, album)
			continue
		}
		if !seen {
			unseen = append(unseen, album)
		}
	}

	if skipped := len(albums) - len(unseen); skipped > 0 {
		logger.Info("suppressed already-announced albums", "kind", kind, "count", skipped)
	}
	return unseen
}

// deliver sends the message and records each announced album. Returns true
// when a message actually went out.
func (e *CheckEngine) deliver(ctx context.Context, logger *log.Logger, msg string, albums []subsonic.Album, kind string) bool {
	if msg == "" {
		return false
	}

	if e.dryRun || e.notifier == nil {
		logger.Info("dry run, skipping notification", "kind", kind, "albums", len(albums))
		return false
	}

	if err := e.notifier.Send(ctx, msg); err != nil {
		logger.Error("failed to send notification", "kind", kind, "err", err)
		return false
	}

	if e.logbook != nil {
		for _, album := range albums {
			if err := e.logbook.Record(album.ID, kind); err != nil {
				logger.Warn("failed to record notification", "album", album.Name, "err", err)
			}
		}
	}

	logger.Info("notification sent", "kind", kind, "albums", len(albums))
	return true
}
