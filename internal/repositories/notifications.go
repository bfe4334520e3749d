package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thornwolf/navigram/internal/shared"
)

// Notification kinds. A "new" announcement happens once per album ever;
// an "anniversary" announcement may repeat on later years, so dedupe for
// it is scoped to a window by the caller.
const (
	KindNewAlbum    = "new"
	KindAnniversary = "anniversary"
)

// Migrate creates the notification log schema if it does not exist.
func Migrate(db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			album_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			sent_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_album_kind
			ON notifications(album_id, kind);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to migrate notifications schema: %w", err)
	}

	return nil
}

// NotificationRepository records and queries sent notifications.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a repository over an open database.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Record inserts a notification row for the album and kind.
func (r *NotificationRepository) Record(albumID, kind string) error {
	query := `
		INSERT INTO notifications (id, album_id, kind, sent_at)
		VALUES (?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query, shared.GenerateID(), albumID, kind, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}

// Seen reports whether any notification of the given kind was ever sent
// for the album.
func (r *NotificationRepository) Seen(albumID, kind string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM notifications WHERE album_id = ? AND kind = ?
		)
	`

	var exists bool
	if err := r.db.QueryRow(query, albumID, kind).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query notification log: %w", err)
	}

	return exists, nil
}

// SeenSince reports whether a notification of the given kind was sent for
// the album at or after the given instant.
func (r *NotificationRepository) SeenSince(albumID, kind string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM notifications WHERE album_id = ? AND kind = ? AND sent_at >= ?
		)
	`

	var exists bool
	if err := r.db.QueryRow(query, albumID, kind, since.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to query notification log: %w", err)
	}

	return exists, nil
}

// Count returns the number of recorded notifications, across all kinds.
func (r *NotificationRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM notifications`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
