package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/thornwolf/navigram/internal/subsonic"
)

type fakeSource struct {
	albums []subsonic.Album
	err    error
	window time.Duration
}

func (s *fakeSource) RecentAlbums(ctx context.Context, window time.Duration) ([]subsonic.Album, error) {
	s.window = window
	return s.albums, s.err
}

type fakeQuerier struct {
	albums []subsonic.Album
	err    error
	day    int
	month  int
}

func (q *fakeQuerier) Query(ctx context.Context, day, month int, useCache bool) ([]subsonic.Album, error) {
	q.day, q.month = day, month
	return q.albums, q.err
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (n *fakeNotifier) Send(ctx context.Context, text string) error {
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, text)
	return nil
}

// fakeLogbook tracks announcements in memory, keyed album|kind.
type fakeLogbook struct {
	seen     map[string]time.Time
	recorded []string
	err      error
}

func newFakeLogbook() *fakeLogbook {
	return &fakeLogbook{seen: map[string]time.Time{}}
}

func (l *fakeLogbook) Seen(albumID, kind string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	_, ok := l.seen[albumID+"|"+kind]
	return ok, nil
}

func (l *fakeLogbook) SeenSince(albumID, kind string, since time.Time) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	at, ok := l.seen[albumID+"|"+kind]
	return ok && !at.Before(since), nil
}

func (l *fakeLogbook) Record(albumID, kind string) error {
	l.seen[albumID+"|"+kind] = time.Now()
	l.recorded = append(l.recorded, albumID+"|"+kind)
	return nil
}

func newAlbum(id, name string) subsonic.Album {
	return subsonic.Album{ID: id, Name: name, Artist: "Artist"}
}

func TestCheckEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends A Message Per Check With Findings", func(t *testing.T) {
		notifier := &fakeNotifier{}
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        &fakeSource{albums: []subsonic.Album{newAlbum("n1", "Fresh")}},
			Anniversaries: &fakeQuerier{albums: []subsonic.Album{newAlbum("a1", "Classic")}},
			Notifier:      notifier,
			Window:        24 * time.Hour,
		})

		result := engine.RunDailyCheck(ctx)

		if result.Sent != 2 {
			t.Errorf("expected 2 messages sent, got %d", result.Sent)
		}
		if len(notifier.messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(notifier.messages))
		}
		if !strings.Contains(notifier.messages[0], "Freshly Added Albums (Last 24h)") {
			t.Errorf("unexpected new-albums intro in %q", notifier.messages[0])
		}
		if !strings.Contains(notifier.messages[1], "On this day") {
			t.Errorf("unexpected anniversary intro in %q", notifier.messages[1])
		}
		if result.RunID == "" {
			t.Error("expected a run ID")
		}
	})

	t.Run("Nothing Found Sends Nothing", func(t *testing.T) {
		notifier := &fakeNotifier{}
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        &fakeSource{},
			Anniversaries: &fakeQuerier{},
			Notifier:      notifier,
		})

		result := engine.RunDailyCheck(ctx)

		if result.Sent != 0 || len(notifier.messages) != 0 {
			t.Errorf("expected no messages, got %d sent", result.Sent)
		}
	})

	t.Run("Checks Are Independent", func(t *testing.T) {
		notifier := &fakeNotifier{}
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        &fakeSource{err: errors.New("connection reset")},
			Anniversaries: &fakeQuerier{albums: []subsonic.Album{newAlbum("a1", "Classic")}},
			Notifier:      notifier,
		})

		result := engine.RunDailyCheck(ctx)

		if result.NewAlbumsErr == nil {
			t.Error("expected the new-albums error to be recorded")
		}
		if result.AnniversariesErr != nil {
			t.Errorf("expected anniversary check to succeed, got %v", result.AnniversariesErr)
		}
		if result.Sent != 1 {
			t.Errorf("expected the anniversary message to go out, got %d sent", result.Sent)
		}
	})

	t.Run("Queries Today's Day And Month", func(t *testing.T) {
		querier := &fakeQuerier{}
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        &fakeSource{},
			Anniversaries: querier,
		})
		engine.now = func() time.Time { return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC) }

		engine.RunDailyCheck(ctx)

		if querier.day != 15 || querier.month != 3 {
			t.Errorf("expected query for 15/3, got %d/%d", querier.day, querier.month)
		}
	})

	t.Run("Dry Run Finds But Never Sends", func(t *testing.T) {
		notifier := &fakeNotifier{}
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        &fakeSource{albums: []subsonic.Album{newAlbum("n1", "Fresh")}},
			Anniversaries: &fakeQuerier{},
			Notifier:      notifier,
			DryRun:        true,
		})

		result := engine.RunDailyCheck(ctx)

		if len(result.NewAlbums) != 1 {
			t.Errorf("expected the check to still run, got %d albums", len(result.NewAlbums))
		}
		if result.Sent != 0 || len(notifier.messages) != 0 {
			t.Error("expected dry run to suppress delivery")
		}
	})

	t.Run("Dedupe", func(t *testing.T) {
		t.Run("New Album Announced Once Ever", func(t *testing.T) {
			notifier := &fakeNotifier{}
			logbook := newFakeLogbook()
			engine := NewCheckEngine(CheckEngineOpts{
				Source:        &fakeSource{albums: []subsonic.Album{newAlbum("n1", "Fresh")}},
				Anniversaries: &fakeQuerier{},
				Notifier:      notifier,
				Logbook:       logbook,
			})

			engine.RunDailyCheck(ctx)
			engine.RunDailyCheck(ctx)

			if len(notifier.messages) != 1 {
				t.Errorf("expected a single announcement across runs, got %d", len(notifier.messages))
			}
			if len(logbook.recorded) != 1 || logbook.recorded[0] != "n1|new" {
				t.Errorf("unexpected log records %v", logbook.recorded)
			}
		})

		t.Run("Anniversary Suppressed Within The Same Day", func(t *testing.T) {
			notifier := &fakeNotifier{}
			logbook := newFakeLogbook()
			engine := NewCheckEngine(CheckEngineOpts{
				Source:        &fakeSource{},
				Anniversaries: &fakeQuerier{albums: []subsonic.Album{newAlbum("a1", "Classic")}},
				Notifier:      notifier,
				Logbook:       logbook,
			})

			engine.RunDailyCheck(ctx)
			engine.RunDailyCheck(ctx)

			if len(notifier.messages) != 1 {
				t.Errorf("expected a single anniversary announcement today, got %d", len(notifier.messages))
			}
		})

		t.Run("Anniversary Announced Again On A Later Day", func(t *testing.T) {
			notifier := &fakeNotifier{}
			logbook := newFakeLogbook()
			logbook.seen["a1|anniversary"] = time.Now().AddDate(-1, 0, 0)

			engine := NewCheckEngine(CheckEngineOpts{
				Source:        &fakeSource{},
				Anniversaries: &fakeQuerier{albums: []subsonic.Album{newAlbum("a1", "Classic")}},
				Notifier:      notifier,
				Logbook:       logbook,
			})

			engine.RunDailyCheck(ctx)

			if len(notifier.messages) != 1 {
				t.Errorf("expected last year's record not to suppress today, got %d messages", len(notifier.messages))
			}
		})

		t.Run("Logbook Failure Keeps Albums In", func(t *testing.T) {
			notifier := &fakeNotifier{}
			logbook := newFakeLogbook()
			logbook.err = errors.New("database locked")

			engine := NewCheckEngine(CheckEngineOpts{
				Source:        &fakeSource{albums: []subsonic.Album{newAlbum("n1", "Fresh")}},
				Anniversaries: &fakeQuerier{},
				Notifier:      notifier,
				Logbook:       logbook,
			})

			result := engine.RunDailyCheck(ctx)

			if result.Sent != 1 {
				t.Errorf("expected delivery despite logbook trouble, got %d sent", result.Sent)
			}
		})
	})

	t.Run("Send Failure Is Not Fatal And Not Recorded", func(t *testing.T) {
		logbook := newFakeLogbook()
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        &fakeSource{albums: []subsonic.Album{newAlbum("n1", "Fresh")}},
			Anniversaries: &fakeQuerier{},
			Notifier:      &fakeNotifier{err: errors.New("forbidden")},
			Logbook:       logbook,
		})

		result := engine.RunDailyCheck(ctx)

		if result.Sent != 0 {
			t.Errorf("expected no delivery counted, got %d", result.Sent)
		}
		if len(logbook.recorded) != 0 {
			t.Errorf("expected failed delivery to record nothing, got %v", logbook.recorded)
		}
	})

	t.Run("Window Defaults To 24 Hours", func(t *testing.T) {
		source := &fakeSource{}
		engine := NewCheckEngine(CheckEngineOpts{
			Source:        source,
			Anniversaries: &fakeQuerier{},
		})

		engine.RunDailyCheck(ctx)

		if source.window != 24*time.Hour {
			t.Errorf("expected 24h window, got %v", source.window)
		}
	})
}
