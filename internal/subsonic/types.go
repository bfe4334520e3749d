// Response envelope and album types for the Subsonic REST API.
//
// Navidrome album records are duck-typed: the release date may live in one
// of three fields, each encoded either as a partial ISO string or as a
// structured {year, month, day} mapping, and genres arrive as a scalar, a
// tagged list, or both. Everything is normalized here so filtering logic
// never sees the raw shapes.
package subsonic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thornwolf/navigram/internal/shared"
)

// envelope is the outer wire wrapper for every API response.
type envelope struct {
	Response Response `json:"subsonic-response"`
}

// Response distinguishes success from failure and carries the payload or
// error detail for a single call.
type Response struct {
	Status    string     `json:"status"`
	Version   string     `json:"version,omitempty"`
	Error     *APIError  `json:"error,omitempty"`
	AlbumList *AlbumList `json:"albumList,omitempty"`
}

// APIError is a failure reported inside a successfully transported envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("subsonic API error: %s (code %d)", e.Message, e.Code)
}

// Unwrap lets callers branch with errors.Is(err, shared.ErrAPI).
func (e *APIError) Unwrap() error {
	return shared.ErrAPI
}

// AlbumList is the payload of the getAlbumList endpoint.
type AlbumList struct {
	Albums []Album `json:"album"`
}

// Album is one catalog entry as returned by the server.
//
// Instances are transient: reconstructed from each API response, never
// mutated. The three release-date fields keep their raw encodings so cached
// snapshots round-trip exactly.
type Album struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Artist       string    `json:"artist,omitempty"`
	Created      string    `json:"created,omitempty"`
	Year         int       `json:"year,omitempty"`
	Genre        string    `json:"genre,omitempty"`
	Genres       []Genre   `json:"genres,omitempty"`
	ReleaseDate  *FlexDate `json:"releaseDate,omitempty"`
	Date         *FlexDate `json:"date,omitempty"`
	OriginalDate *FlexDate `json:"originalDate,omitempty"`
}

// Genre is one entry of the tagged genre list.
type Genre struct {
	Name string `json:"name"`
}

// CreatedTime parses the server-assigned creation timestamp.
func (a Album) CreatedTime() (time.Time, error) {
	return ParseCreated(a.Created)
}

// GenreLabel returns the scalar genre or, failing that, the tagged genre
// names joined with commas.
func (a Album) GenreLabel() string {
	if a.Genre != "" {
		return a.Genre
	}
	names := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return strings.Join(names, ", ")
}

// ResolvedRelease resolves the album's canonical release date by checking
// releaseDate, date and originalDate in that fixed order. The first field
// present wins, even when its value turns out to be unusable; albums whose
// winning field cannot be resolved report ok=false and are excluded from
// anniversary matching, which is not an error.
func (a Album) ResolvedRelease() (month, day int, ok bool) {
	for _, d := range []*FlexDate{a.ReleaseDate, a.Date, a.OriginalDate} {
		if d == nil {
			continue
		}
		if d.Month != 0 && d.Day != 0 {
			return d.Month, d.Day, true
		}
		return 0, 0, false
	}
	return 0, 0, false
}

// FlexDate is a release date that arrives either as a partial ISO scalar
// ("1994-03-15", or any longer string whose first 10 characters form a
// date) or as a structured {year, month, day} mapping.
type FlexDate struct {
	Year  int
	Month int
	Day   int

	raw json.RawMessage
}

// NewFlexDate builds a structured date, mainly for tests and fixtures.
func NewFlexDate(year, month, day int) *FlexDate {
	return &FlexDate{Year: year, Month: month, Day: day}
}

// UnmarshalJSON keeps the raw encoding and best-effort resolves the date
// parts. An unparseable value is not an error here: resolution failures
// surface as ok=false from [Album.ResolvedRelease].
func (d *FlexDate) UnmarshalJSON(data []byte) error {
	d.raw = append(d.raw[:0], data...)
	d.Year, d.Month, d.Day = 0, 0, 0

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("%w: release date: %v", shared.ErrParse, err)
		}
		if len(s) >= 10 {
			if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
				d.Year, d.Month, d.Day = t.Year(), int(t.Month()), t.Day()
			}
		}
		return nil
	}

	var parts struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	}
	if err := json.Unmarshal(trimmed, &parts); err != nil {
		return fmt.Errorf("%w: release date: %v", shared.ErrParse, err)
	}
	d.Year, d.Month, d.Day = parts.Year, parts.Month, parts.Day
	return nil
}

// MarshalJSON re-emits the encoding the server sent, so snapshots written to
// disk preserve field values exactly. Dates constructed in-process marshal
// as the structured mapping.
func (d *FlexDate) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	return json.Marshal(struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	}{d.Year, d.Month, d.Day})
}

// String renders the date for display: the raw scalar when one was
// received, otherwise YYYY-MM-DD from the structured parts.
func (d *FlexDate) String() string {
	if len(d.raw) > 0 && d.raw[0] == '"' {
		var s string
		if err := json.Unmarshal(d.raw, &s); err == nil {
			return s
		}
	}
	if d.Year == 0 && d.Month == 0 && d.Day == 0 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseCreated parses an ISO-8601-like server timestamp. A trailing "Z"
// zone marker is rewritten to an explicit UTC offset before parsing, and
// timestamps carrying no zone at all are assumed UTC.
func ParseCreated(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty created timestamp", shared.ErrParse)
	}

	normalized := s
	if strings.HasSuffix(normalized, "Z") {
		normalized = strings.TrimSuffix(normalized, "Z") + "+00:00"
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999"} {
		if t, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unparseable created timestamp %q", shared.ErrParse, s)
}
