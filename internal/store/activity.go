package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	topSongsLimit  = 50
	topGenresLimit = 10
)

// PopularSong is one row of a play-count rollup.
type PopularSong struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Artists   string `json:"artists"`
	PlayCount int    `json:"play_count"`
}

// PopularGenre is one row of the genre play-count rollup.
type PopularGenre struct {
	Name      string `json:"name"`
	PlayCount int    `json:"play_count"`
}

// LogPlay appends one play event for the song at the current time. False
// when the song does not exist.
func (s *Store) LogPlay(ctx context.Context, userID, songID int64) (bool, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plays (user_id, song_id, played_at)
		VALUES ($1, $2, $3)
	`, userID, songID, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert play: %w", err)
	}
	return true, nil
}

// LogCollectionPlay appends one play event per member song of the caller's
// collection, all sharing one timestamp, and returns how many rows were
// appended. Fails closed with 0 when the caller does not own the collection.
func (s *Store) LogCollectionPlay(ctx context.Context, userID int64, title string) (int, error) {
	var played int64

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var owned bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM collections WHERE user_id = $1 AND title = $2)
		`, userID, title).Scan(&owned)
		if err != nil {
			return fmt.Errorf("check collection: %w", err)
		}
		if !owned {
			return errNoChange
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO plays (user_id, song_id, played_at)
			SELECT cs.user_id, cs.song_id, $3
			FROM collection_songs cs
			WHERE cs.user_id = $1 AND cs.title = $2
		`, userID, title, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert collection plays: %w", err)
		}

		played, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(played), nil
}

// RateSong records a 1-5 rating, overwriting any prior rating from the same
// user atomically. Out-of-range ratings are rejected before any storage
// call; an unknown song yields false.
func (s *Store) RateSong(ctx context.Context, userID, songID int64, rating int) (bool, error) {
	if rating < 1 || rating > 5 {
		return false, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, song_id, rating, rated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, song_id)
		DO UPDATE SET rating = EXCLUDED.rating, rated_at = EXCLUDED.rated_at
	`, userID, songID, rating, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert rating: %w", err)
	}
	return true, nil
}

// TopSongsGlobal rolls up play counts across all users over the trailing
// window. Ties break by song id ascending.
func (s *Store) TopSongsGlobal(ctx context.Context, windowDays int) ([]PopularSong, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	return s.popularSongs(ctx, `
		SELECT s.id, s.title,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists,
			pc.play_count
		FROM (
			SELECT song_id, COUNT(*) AS play_count
			FROM plays
			WHERE played_at >= $1
			GROUP BY song_id
		) pc
		JOIN songs s ON s.id = pc.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.id
		LEFT JOIN artists ar ON ar.id = sa.artist_id
		GROUP BY s.id, s.title, pc.play_count
		ORDER BY pc.play_count DESC, s.id ASC
		LIMIT $2
	`, since, topSongsLimit)
}

// TopSongsAmongFollowed rolls up play counts over the play history of the
// users this viewer follows.
func (s *Store) TopSongsAmongFollowed(ctx context.Context, userID int64) ([]PopularSong, error) {
	return s.popularSongs(ctx, `
		SELECT s.id, s.title,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists,
			pc.play_count
		FROM (
			SELECT p.song_id, COUNT(*) AS play_count
			FROM plays p
			JOIN follows f ON f.followee_id = p.user_id
			WHERE f.follower_id = $1
			GROUP BY p.song_id
		) pc
		JOIN songs s ON s.id = pc.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.id
		LEFT JOIN artists ar ON ar.id = sa.artist_id
		GROUP BY s.id, s.title, pc.play_count
		ORDER BY pc.play_count DESC, s.id ASC
		LIMIT $2
	`, userID, topSongsLimit)
}

func (s *Store) popularSongs(ctx context.Context, query string, args ...interface{}) ([]PopularSong, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query popular songs: %w", err)
	}
	defer rows.Close()

	songs := make([]PopularSong, 0)
	for rows.Next() {
		var song PopularSong
		if err := rows.Scan(&song.ID, &song.Title, &song.Artists, &song.PlayCount); err != nil {
			return nil, fmt.Errorf("scan popular song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular songs: %w", err)
	}

	return songs, nil
}

// TopGenresThisMonth rolls up play counts by genre since the start of the
// current calendar month. Ties break by genre name ascending.
func (s *Store) TopGenresThisMonth(ctx context.Context) ([]PopularGenre, error) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name, COUNT(*) AS play_count
		FROM plays p
		JOIN song_genres sg ON sg.song_id = p.song_id
		JOIN genres g ON g.id = sg.genre_id
		WHERE p.played_at >= $1
		GROUP BY g.name
		ORDER BY play_count DESC, g.name ASC
		LIMIT $2
	`, monthStart, topGenresLimit)
	if err != nil {
		return nil, fmt.Errorf("query popular genres: %w", err)
	}
	defer rows.Close()

	genres := make([]PopularGenre, 0)
	for rows.Next() {
		var genre PopularGenre
		if err := rows.Scan(&genre.Name, &genre.PlayCount); err != nil {
			return nil, fmt.Errorf("scan popular genre: %w", err)
		}
		genres = append(genres, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular genres: %w", err)
	}

	return genres, nil
}
