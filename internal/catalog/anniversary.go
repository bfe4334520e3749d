package catalog

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/thornwolf/navigram/internal/subsonic"
)

// DefaultTTL is how long a snapshot stays fresh. Slightly under a day so a
// check scheduled every 24 hours always refreshes before matching.
const DefaultTTL = 23 * time.Hour

// Syncer is the cold-fill source for the snapshot: a full catalog
// enumeration that may return partial results together with an error.
type Syncer interface {
	AllAlbums(ctx context.Context) ([]subsonic.Album, error)
}

// Cache answers anniversary queries from a TTL-governed snapshot, falling
// back to a full library sync when the snapshot is missing, stale or
// unreadable. No failure here is fatal: cache trouble degrades to a live
// sync and sync trouble degrades to whatever was fetched, plus logging.
type Cache struct {
	syncer Syncer
	store  SnapshotStore
	ttl    time.Duration
	logger *log.Logger
}

// NewCache creates a Cache. A non-positive ttl falls back to [DefaultTTL].
func NewCache(syncer Syncer, store SnapshotStore, ttl time.Duration, logger *log.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Cache{
		syncer: syncer,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Query returns the albums whose resolved release month and day equal the
// given pair, regardless of year. Albums with no resolvable release date
// are silently excluded.
//
// With useCache, a fresh snapshot answers the query with zero network
// calls; a missing, stale or unreadable snapshot triggers a full sync whose
// result is persisted for the next query. A partial sync (non-nil error)
// still answers the current query but is never persisted, to avoid
// poisoning the TTL window with an incomplete snapshot; that error is
// returned alongside the matches.
func (c *Cache) Query(ctx context.Context, day, month int, useCache bool) ([]subsonic.Album, error) {
	var albums []subsonic.Album

	if useCache {
		albums = c.loadFresh()
	}

	var syncErr error
	if len(albums) == 0 {
		synced, err := c.syncer.AllAlbums(ctx)
		albums = synced
		syncErr = err

		if err != nil {
			c.logger.Warn("full sync incomplete, snapshot not updated", "fetched", len(synced), "err", err)
		} else if serr := c.store.Save(albums); serr != nil {
			// Non-fatal: the in-memory result still answers this query.
			c.logger.Error("failed to save snapshot", "err", serr)
		} else {
			c.logger.Info("cached album snapshot", "count", len(albums))
		}
	}

	return matchAnniversaries(albums, day, month), syncErr
}

// Refresh forces a full sync and snapshot rewrite regardless of freshness.
func (c *Cache) Refresh(ctx context.Context) (int, error) {
	albums, err := c.syncer.AllAlbums(ctx)
	if err != nil {
		return len(albums), err
	}
	if serr := c.store.Save(albums); serr != nil {
		return len(albums), serr
	}
	return len(albums), nil
}

// loadFresh returns the snapshot when it exists and is younger than the
// TTL. Any load or stat error falls through to a refresh rather than
// failing the query.
func (c *Cache) loadFresh() []subsonic.Album {
	age, err := c.store.Age()
	if err != nil {
		c.logger.Debug("no usable snapshot", "err", err)
		return nil
	}
	if age >= c.ttl {
		c.logger.Info("snapshot expired", "age", age, "ttl", c.ttl)
		return nil
	}

	albums, err := c.store.Load()
	if err != nil {
		c.logger.Warn("snapshot load failed, refreshing", "err", err)
		return nil
	}

	c.logger.Info("loaded albums from snapshot", "count", len(albums), "age", age)
	return albums
}

func matchAnniversaries(albums []subsonic.Album, day, month int) []subsonic.Album {
	var matches []subsonic.Album
	for _, album := range albums {
		m, d, ok := album.ResolvedRelease()
		if !ok {
			continue
		}
		if m == month && d == day {
			matches = append(matches, album)
		}
	}
	return matches
}
