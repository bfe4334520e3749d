package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/thornwolf/navigram/internal/shared"
	"github.com/thornwolf/navigram/internal/subsonic"
)

// SnapshotStore is the storage capability behind the anniversary cache:
// load the last snapshot, overwrite it wholesale, and report its age.
// Snapshots are never partially updated.
type SnapshotStore interface {
	Load() ([]subsonic.Album, error)
	Save(albums []subsonic.Album) error
	Age() (time.Duration, error)
}

// FileStore persists the snapshot as a single JSON document. Freshness is
// derived from the file's modification time; nothing is stored inline.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore rooted at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and decodes the snapshot. All failures wrap [shared.ErrCache]
// so callers can fall back to a live sync instead of failing the query.
func (s *FileStore) Load() ([]subsonic.Album, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %v", shared.ErrCache, err)
	}

	var albums []subsonic.Album
	if err := json.Unmarshal(data, &albums); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", shared.ErrCache, err)
	}

	return albums, nil
}

// Save overwrites the snapshot. The document is written to a temp file in
// the same directory and renamed into place, so a crash mid-write never
// leaves a torn snapshot and concurrent readers see either the old or the
// new document.
func (s *FileStore) Save(albums []subsonic.Album) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: create snapshot directory: %v", shared.ErrCache, err)
	}

	data, err := json.Marshal(albums)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", shared.ErrCache, err)
	}

	tmp, err := os.CreateTemp(dir, ".albums-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp snapshot: %v", shared.ErrCache, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: write snapshot: %v", shared.ErrCache, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: close snapshot: %v", shared.ErrCache, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: replace snapshot: %v", shared.ErrCache, err)
	}

	return nil
}

// Age reports how long ago the snapshot was written, from file mtime.
func (s *FileStore) Age() (time.Duration, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("%w: stat snapshot: %v", shared.ErrCache, err)
	}
	return time.Since(info.ModTime()), nil
}

// MemoryStore is an in-process SnapshotStore for tests and hosts that do
// not want a disk snapshot.
type MemoryStore struct {
	mu      sync.Mutex
	albums  []subsonic.Album
	savedAt time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) Load() ([]subsonic.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.savedAt.IsZero() {
		return nil, fmt.Errorf("%w: no snapshot", shared.ErrCache)
	}

	out := make([]subsonic.Album, len(s.albums))
	copy(out, s.albums)
	return out, nil
}

func (s *MemoryStore) Save(albums []subsonic.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.albums = make([]subsonic.Album, len(albums))
	copy(s.albums, albums)
	s.savedAt = s.now()
	return nil
}

func (s *MemoryStore) Age() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.savedAt.IsZero() {
		return 0, fmt.Errorf("%w: no snapshot", shared.ErrCache)
	}
	return s.now().Sub(s.savedAt), nil
}
