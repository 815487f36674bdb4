package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// SearchQuery carries the caller-controlled search parameters. Every field
// is untrusted: the term is always bound as a parameter, and the type, sort
// key, and sort order are resolved through fixed whitelists before any query
// text is assembled.
type SearchQuery struct {
	Term      string
	Type      string // song, artist, album, genre
	SortBy    string // song_name, artist_name, album_name, genre_name, release_date
	SortOrder string // asc, desc
}

// SongResult is one catalog song with fan-out collapsed to comma-joined
// lists and the viewer's personal listen count.
type SongResult struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Duration    int        `json:"duration"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Artists     string     `json:"artists"`
	Albums      string     `json:"albums"`
	Genres      string     `json:"genres"`
	ListenCount int        `json:"listen_count"`
}

// searchFilters maps a search type to the predicate the term is matched
// against. Multi-valued attributes are probed with EXISTS so a song tagged
// with several matching genres still yields exactly one row.
var searchFilters = map[string]string{
	"song":   "s.title ILIKE $1",
	"artist": "EXISTS (SELECT 1 FROM song_artists fsa JOIN artists far ON far.id = fsa.artist_id WHERE fsa.song_id = s.id AND far.name ILIKE $1)",
	"album":  "EXISTS (SELECT 1 FROM album_songs fas JOIN albums fal ON fal.id = fas.album_id WHERE fas.song_id = s.id AND fal.title ILIKE $1)",
	"genre":  "EXISTS (SELECT 1 FROM song_genres fsg JOIN genres fg ON fg.id = fsg.genre_id WHERE fsg.song_id = s.id AND fg.name ILIKE $1)",
}

// sortColumns is the sole legal mapping from logical sort keys to query
// expressions. Unrecognized keys fall back to the song title.
var sortColumns = map[string]string{
	"song_name":    "s.title",
	"artist_name":  "artists",
	"album_name":   "albums",
	"genre_name":   "genres",
	"release_date": "s.release_date",
}

const defaultSortKey = "song_name"

// SearchSongs matches the term against the attribute selected by the query
// type, case-insensitively, and returns one row per song with the viewer's
// own listen count. An unrecognized type yields an empty result set without
// touching storage.
func (s *Store) SearchSongs(ctx context.Context, viewerID int64, q SearchQuery) ([]SongResult, error) {
	filter, ok := searchFilters[q.Type]
	if !ok {
		return []SongResult{}, nil
	}

	query := fmt.Sprintf(`
		SELECT s.id, s.title, s.duration, s.release_date,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists,
			COALESCE(STRING_AGG(DISTINCT al.title, ', ' ORDER BY al.title), '') AS albums,
			COALESCE(STRING_AGG(DISTINCT g.name, ', ' ORDER BY g.name), '') AS genres,
			(SELECT COUNT(*) FROM plays p WHERE p.song_id = s.id AND p.user_id = $2) AS listen_count
		FROM songs s
		LEFT JOIN song_artists sa ON sa.song_id = s.id
		LEFT JOIN artists ar ON ar.id = sa.artist_id
		LEFT JOIN album_songs als ON als.song_id = s.id
		LEFT JOIN albums al ON al.id = als.album_id
		LEFT JOIN song_genres sg ON sg.song_id = s.id
		LEFT JOIN genres g ON g.id = sg.genre_id
		WHERE %s
		GROUP BY s.id, s.title, s.duration, s.release_date
		ORDER BY %s
	`, filter, orderClause(q.SortBy, q.SortOrder))

	rows, err := s.db.QueryContext(ctx, query, "%"+q.Term+"%", viewerID)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	results := make([]SongResult, 0)
	for rows.Next() {
		var (
			r           SongResult
			releaseDate sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Duration, &releaseDate,
			&r.Artists, &r.Albums, &r.Genres, &r.ListenCount); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		if releaseDate.Valid {
			r.ReleaseDate = &releaseDate.Time
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	return results, nil
}

// orderClause resolves the sort key and direction through the whitelists and
// appends the deterministic tie-break: song-name sorts break ties by artist
// name ascending, artist-name sorts by song title ascending, and every other
// key by song title ascending.
func orderClause(sortBy, sortOrder string) string {
	key := sortBy
	if _, ok := sortColumns[key]; !ok {
		key = defaultSortKey
	}

	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}

	secondary := "s.title ASC"
	if key == defaultSortKey {
		secondary = "artists ASC"
	}

	return fmt.Sprintf("%s %s, %s", sortColumns[key], direction, secondary)
}
