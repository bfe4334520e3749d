package subsonic

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/shared"
	"golang.org/x/time/rate"
)

const (
	listTypeNewest        = "newest"
	listTypeAlphaByArtist = "alphabeticalByArtist"

	recentPageSize   = 50
	fullSyncPageSize = 500

	// maxListOffset bounds every traversal against a misbehaving or
	// unexpectedly large catalog.
	maxListOffset = 10000

	// syncLogInterval paces progress logging during a full sync.
	syncLogInterval = 2000
)

// Library exposes the two album discovery queries over a [Client].
//
// Queries execute synchronously and block for the duration of all HTTP
// calls they issue; there is no internal parallelism, and safe use from
// more than one goroutine at a time is the caller's responsibility.
type Library struct {
	client  *Client
	limiter *rate.Limiter
	logger  *log.Logger
	now     func() time.Time
}

// NewLibrary creates a Library. The limiter is optional; when set it
// throttles page requests across both query kinds.
func NewLibrary(client *Client, limiter *rate.Limiter, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Library{
		client:  client,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// RecentAlbums returns the albums created strictly after now-window,
// paginating the newest list until the window is exhausted.
//
// The newest list is assumed to return albums in non-increasing
// creation-time order. That is undocumented server behavior, not a verified
// contract: the early stop below trusts it to avoid paging the entire
// catalog, and silently misses entries if the server ever breaks the
// ordering. An album whose creation timestamp fails to parse is logged and
// skipped; it never aborts the page. An empty result is valid.
func (l *Library) RecentAlbums(ctx context.Context, window time.Duration) ([]Album, error) {
	cutoff := l.now().Add(-window)
	l.logger.Debug("fetching albums newer than cutoff", "cutoff", cutoff)

	pager := &albumPager{
		client:    l.client,
		logger:    l.logger,
		limiter:   l.limiter,
		pageSize:  recentPageSize,
		maxOffset: maxListOffset,
		earlyStop: func(page []Album) bool {
			// The last album of a page is the oldest under the assumed
			// sort. If its timestamp does not parse, keep paging rather
			// than let one bad record truncate the results.
			last := page[len(page)-1]
			created, err := last.CreatedTime()
			if err != nil {
				return false
			}
			return created.Before(cutoff)
		},
	}

	pages, err := pager.fetch(ctx, listTypeNewest)

	var matched []Album
	for _, page := range pages {
		for _, album := range page {
			created, perr := album.CreatedTime()
			if perr != nil {
				l.logger.Warn("skipping album with unparseable timestamp", "album", album.Name, "err", perr)
				continue
			}
			if created.After(cutoff) {
				matched = append(matched, album)
			}
		}
	}

	return matched, err
}

// AllAlbums enumerates the entire catalog in alphabetical-by-artist order,
// using a larger page size and no early stop. It is the cold-fill source
// for the anniversary snapshot. A failure mid-traversal returns the albums
// collected so far along with the error; the caller decides whether partial
// data is acceptable.
func (l *Library) AllAlbums(ctx context.Context) ([]Album, error) {
	l.logger.Info("syncing full library")

	pager := &albumPager{
		client:    l.client,
		logger:    l.logger,
		limiter:   l.limiter,
		pageSize:  fullSyncPageSize,
		maxOffset: maxListOffset,
		onPage: func(total int) {
			if total%syncLogInterval == 0 {
				l.logger.Info("fetched albums", "count", total)
			}
		},
	}

	pages, err := pager.fetch(ctx, listTypeAlphaByArtist)

	var albums []Album
	for _, page := range pages {
		albums = append(albums, page...)
	}

	return albums, err
}
