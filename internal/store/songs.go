package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSongNotFound indicates a lookup for a song id that does not exist.
var ErrSongNotFound = errors.New("song not found")

// Song represents a catalog track with its multi-valued attributes
// comma-joined.
type Song struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Duration    int        `json:"duration"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Artists     string     `json:"artists"`
}

// SongByID returns a single song with its artists aggregated.
func (s *Store) SongByID(ctx context.Context, id int64) (Song, error) {
	var (
		song        Song
		releaseDate sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.title, s.duration, s.release_date,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists
		FROM songs s
		LEFT JOIN song_artists sa ON sa.song_id = s.id
		LEFT JOIN artists ar ON ar.id = sa.artist_id
		WHERE s.id = $1
		GROUP BY s.id, s.title, s.duration, s.release_date
	`, id).Scan(&song.ID, &song.Title, &song.Duration, &releaseDate, &song.Artists)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("get song: %w", err)
	}
	if releaseDate.Valid {
		song.ReleaseDate = &releaseDate.Time
	}

	return song, nil
}

// SongsByAlbum returns every song on the album, by title.
func (s *Store) SongsByAlbum(ctx context.Context, albumID int64) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.duration, s.release_date,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists
		FROM album_songs als
		JOIN songs s ON s.id = als.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.id
		LEFT JOIN artists ar ON ar.id = sa.artist_id
		WHERE als.album_id = $1
		GROUP BY s.id, s.title, s.duration, s.release_date
		ORDER BY s.title ASC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("query album songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		var (
			song        Song
			releaseDate sql.NullTime
		)
		if err := rows.Scan(&song.ID, &song.Title, &song.Duration, &releaseDate, &song.Artists); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		if releaseDate.Valid {
			song.ReleaseDate = &releaseDate.Time
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return songs, nil
}
