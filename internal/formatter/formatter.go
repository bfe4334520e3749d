// package formatter renders album lists for notifications and CLI output
package formatter

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/thornwolf/navigram/internal/subsonic"
)

// AlbumListHTML renders albums as a Telegram-HTML message under the given
// intro line. Returns "" for an empty list so callers can skip sending.
func AlbumListHTML(albums []subsonic.Album, intro string) string {
	if len(albums) == 0 {
		return ""
	}

	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("<b>%s</b>\n\n", html.EscapeString(intro)))

	for _, album := range albums {
		title := album.Name
		if title == "" {
			title = "Unknown Album"
		}
		artist := album.Artist
		if artist == "" {
			artist = "Unknown Artist"
		}

		buf.WriteString(fmt.Sprintf("💿 <b>%s</b>\n", html.EscapeString(title)))
		buf.WriteString(fmt.Sprintf("👤 %s\n", html.EscapeString(artist)))
		if date := DisplayDate(album); date != "" {
			buf.WriteString(fmt.Sprintf("📅 %s\n", html.EscapeString(date)))
		}
		if genre := album.GenreLabel(); genre != "" {
			buf.WriteString(fmt.Sprintf("🏷 %s\n", html.EscapeString(genre)))
		}
		buf.WriteString("\n")
	}

	return buf.String()
}

// AlbumListText renders albums as numbered plain text lines for the CLI.
func AlbumListText(albums []subsonic.Album) string {
	var buf bytes.Buffer
	for i, album := range albums {
		buf.WriteString(fmt.Sprintf("%d. %s - %s", i+1, album.Artist, album.Name))
		if date := DisplayDate(album); date != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", date))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

// DisplayDate picks the date shown for an album: the release date when one
// is present and usable, otherwise the bare year.
func DisplayDate(album subsonic.Album) string {
	if album.ReleaseDate != nil {
		if s := album.ReleaseDate.String(); len(s) >= 4 {
			return s
		}
	}
	if album.Year != 0 {
		return strconv.Itoa(album.Year)
	}
	return ""
}
