package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/thornwolf/navigram/internal/subsonic"
)

// countingSyncer hands out a fixed album set and counts invocations.
type countingSyncer struct {
	albums []subsonic.Album
	err    error
	calls  int
}

func (s *countingSyncer) AllAlbums(ctx context.Context) ([]subsonic.Album, error) {
	s.calls++
	return s.albums, s.err
}

// failingStore rejects every operation, simulating unusable cache storage.
type failingStore struct {
	saves int
}

func (s *failingStore) Load() ([]subsonic.Album, error) { return nil, errors.New("load failed") }
func (s *failingStore) Save(albums []subsonic.Album) error {
	s.saves++
	return errors.New("save failed")
}
func (s *failingStore) Age() (time.Duration, error) { return 0, errors.New("stat failed") }

func flexDateFromJSON(t *testing.T, raw string) *subsonic.FlexDate {
	t.Helper()
	var d subsonic.FlexDate
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return &d
}

func anniversaryAlbums(t *testing.T) []subsonic.Album {
	t.Helper()
	return []subsonic.Album{
		{ID: "str", Name: "String Date", ReleaseDate: flexDateFromJSON(t, `"1994-03-15"`)},
		{ID: "obj", Name: "Struct Date", ReleaseDate: flexDateFromJSON(t, `{"year":1979,"month":3,"day":15}`)},
		{ID: "other", Name: "Different Day", ReleaseDate: flexDateFromJSON(t, `"1994-03-16"`)},
		{ID: "none", Name: "No Date", Year: 1994},
	}
}

func TestCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Query", func(t *testing.T) {
		t.Run("Matches Month And Day Regardless Of Year Or Encoding", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			cache := NewCache(syncer, NewMemoryStore(), 0, nil)

			matches, err := cache.Query(ctx, 15, 3, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(matches) != 2 {
				t.Fatalf("expected 2 matches, got %d", len(matches))
			}
			if matches[0].ID != "str" || matches[1].ID != "obj" {
				t.Errorf("expected string and struct encodings to match alike, got %v", matches)
			}
		})

		t.Run("Albums Without Resolvable Dates Excluded", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			cache := NewCache(syncer, NewMemoryStore(), 0, nil)

			matches, err := cache.Query(ctx, 16, 3, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(matches) != 1 || matches[0].ID != "other" {
				t.Errorf("expected only the 03-16 album, got %v", matches)
			}
		})

		t.Run("Second Query Within TTL Syncs Once", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			cache := NewCache(syncer, NewMemoryStore(), time.Hour, nil)

			if _, err := cache.Query(ctx, 15, 3, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := cache.Query(ctx, 15, 3, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if syncer.calls != 1 {
				t.Errorf("expected a single sync for back-to-back queries, got %d", syncer.calls)
			}
		})

		t.Run("Expired Snapshot Triggers Resync", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			store := NewMemoryStore()
			base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			store.now = func() time.Time { return base }

			cache := NewCache(syncer, store, time.Hour, nil)
			if _, err := cache.Query(ctx, 15, 3, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			store.now = func() time.Time { return base.Add(2 * time.Hour) }
			if _, err := cache.Query(ctx, 15, 3, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if syncer.calls != 2 {
				t.Errorf("expected resync after expiry, got %d syncs", syncer.calls)
			}
		})

		t.Run("Bypassing The Cache Always Syncs", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			cache := NewCache(syncer, NewMemoryStore(), time.Hour, nil)

			cache.Query(ctx, 15, 3, false)
			cache.Query(ctx, 15, 3, false)
			if syncer.calls != 2 {
				t.Errorf("expected a sync per bypassing query, got %d", syncer.calls)
			}
		})

		t.Run("Partial Sync Answers But Is Not Persisted", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t), err: errors.New("connection reset")}
			store := NewMemoryStore()
			cache := NewCache(syncer, store, time.Hour, nil)

			matches, err := cache.Query(ctx, 15, 3, true)
			if err == nil {
				t.Fatal("expected the sync error to surface")
			}
			if len(matches) != 2 {
				t.Errorf("expected partial results to answer the query, got %d matches", len(matches))
			}
			if _, loadErr := store.Load(); loadErr == nil {
				t.Error("expected partial sync to leave no snapshot")
			}
		})

		t.Run("Unusable Store Degrades To Live Sync", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			store := &failingStore{}
			cache := NewCache(syncer, store, time.Hour, nil)

			matches, err := cache.Query(ctx, 15, 3, true)
			if err != nil {
				t.Fatalf("expected save failure to stay non-fatal, got %v", err)
			}
			if len(matches) != 2 {
				t.Errorf("expected 2 matches, got %d", len(matches))
			}
			if store.saves != 1 {
				t.Errorf("expected one save attempt, got %d", store.saves)
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Forces Sync Despite Fresh Snapshot", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			store := NewMemoryStore()
			cache := NewCache(syncer, store, time.Hour, nil)

			cache.Query(ctx, 15, 3, true)
			count, err := cache.Refresh(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if count != 4 {
				t.Errorf("expected 4 albums refreshed, got %d", count)
			}
			if syncer.calls != 2 {
				t.Errorf("expected refresh to sync again, got %d syncs", syncer.calls)
			}
		})

		t.Run("Sync Failure Surfaces", func(t *testing.T) {
			syncer := &countingSyncer{err: errors.New("connection reset")}
			cache := NewCache(syncer, NewMemoryStore(), time.Hour, nil)

			if _, err := cache.Refresh(ctx); err == nil {
				t.Error("expected error from failed refresh")
			}
		})

		t.Run("Save Failure Surfaces", func(t *testing.T) {
			syncer := &countingSyncer{albums: anniversaryAlbums(t)}
			cache := NewCache(syncer, &failingStore{}, time.Hour, nil)

			if _, err := cache.Refresh(ctx); err == nil {
				t.Error("expected error from failed snapshot write")
			}
		})
	})
}
