// package subsonic implements the album discovery engine over a
// Subsonic-compatible catalog API (Navidrome).
//
// [Client] issues authenticated single calls, the album pager walks paged
// list endpoints, and [Library] layers the two discovery queries on top:
// a rolling new-albums window filter and a full catalog sync.
package subsonic
