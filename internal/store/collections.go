package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// errNoChange aborts a withTx unit of work for outcomes that are reported as
// a plain false/zero result rather than an error (duplicate membership,
// missing ownership, nothing deleted).
var errNoChange = errors.New("no change")

// CollectionSummary lists a collection with its cached aggregates.
type CollectionSummary struct {
	Title       string `json:"title"`
	SongCount   int    `json:"song_count"`
	TotalLength int    `json:"total_length"`
}

// CollectionSong is one member song with its fanned-out attributes collapsed
// to comma-joined lists and the owner's rating, when present.
type CollectionSong struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Duration    int        `json:"duration"`
	ReleaseDate *time.Time `json:"release_date,omitempty"`
	Artists     string     `json:"artists"`
	Albums      string     `json:"albums"`
	Genres      string     `json:"genres"`
	Rating      *int       `json:"rating,omitempty"`
}

// CollectionDetail is a collection plus every member song.
type CollectionDetail struct {
	CollectionSummary
	Songs []CollectionSong `json:"songs"`
}

// ListCollections returns every collection owned by the user, by title.
func (s *Store) ListCollections(ctx context.Context, userID int64) ([]CollectionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, song_count, total_length
		FROM collections
		WHERE user_id = $1
		ORDER BY title ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var collections []CollectionSummary
	for rows.Next() {
		var c CollectionSummary
		if err := rows.Scan(&c.Title, &c.SongCount, &c.TotalLength); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}

	return collections, nil
}

// CreateCollection inserts an empty collection. Titles are unique per owner,
// not globally; a duplicate (owner, title) pair returns false.
func (s *Store) CreateCollection(ctx context.Context, userID int64, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (user_id, title)
		VALUES ($1, $2)
	`, userID, title)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert collection: %w", err)
	}

	return true, nil
}

// CollectionDetails returns the collection and its member songs, or nil when
// no collection with that title exists for the owner. An existing empty
// collection comes back non-nil with zero songs.
func (s *Store) CollectionDetails(ctx context.Context, userID int64, title string) (*CollectionDetail, error) {
	var detail CollectionDetail
	err := s.db.QueryRowContext(ctx, `
		SELECT title, song_count, total_length
		FROM collections
		WHERE user_id = $1 AND title = $2
	`, userID, title).Scan(&detail.Title, &detail.SongCount, &detail.TotalLength)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.duration, s.release_date,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists,
			COALESCE(STRING_AGG(DISTINCT al.title, ', ' ORDER BY al.title), '') AS albums,
			COALESCE(STRING_AGG(DISTINCT g.name, ', ' ORDER BY g.name), '') AS genres,
			r.rating
		FROM collection_songs cs
		JOIN songs s ON s.id = cs.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.id
		LEFT JOIN artists ar ON ar.id = sa.artist_id
		LEFT JOIN album_songs als ON als.song_id = s.id
		LEFT JOIN albums al ON al.id = als.album_id
		LEFT JOIN song_genres sg ON sg.song_id = s.id
		LEFT JOIN genres g ON g.id = sg.genre_id
		LEFT JOIN ratings r ON r.song_id = s.id AND r.user_id = cs.user_id
		WHERE cs.user_id = $1 AND cs.title = $2
		GROUP BY s.id, s.title, s.duration, s.release_date, r.rating
		ORDER BY s.title ASC
	`, userID, title)
	if err != nil {
		return nil, fmt.Errorf("list collection songs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			song        CollectionSong
			releaseDate sql.NullTime
			rating      sql.NullInt32
		)
		if err := rows.Scan(&song.ID, &song.Title, &song.Duration, &releaseDate,
			&song.Artists, &song.Albums, &song.Genres, &rating); err != nil {
			return nil, fmt.Errorf("scan collection song: %w", err)
		}
		if releaseDate.Valid {
			song.ReleaseDate = &releaseDate.Time
		}
		if rating.Valid {
			value := int(rating.Int32)
			song.Rating = &value
		}
		detail.Songs = append(detail.Songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection songs: %w", err)
	}

	return &detail, nil
}

// RenameCollection retitles a collection. False when the owner has no
// collection under the old title, or the new title is already taken by the
// same owner. Membership rows follow via ON UPDATE CASCADE.
func (s *Store) RenameCollection(ctx context.Context, userID int64, oldTitle, newTitle string) (bool, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return false, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE collections
		SET title = $3
		WHERE user_id = $1 AND title = $2
	`, userID, oldTitle, newTitle)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("rename collection: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteCollection removes a collection and its membership rows in one
// transaction. False when the owner has no collection with that title.
func (s *Store) DeleteCollection(ctx context.Context, userID int64, title string) (bool, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM collection_songs
			WHERE user_id = $1 AND title = $2
		`, userID, title); err != nil {
			return fmt.Errorf("delete collection songs: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM collections
			WHERE user_id = $1 AND title = $2
		`, userID, title)
		if err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddSong inserts a membership row and recomputes the cached aggregates in
// the same transaction. False when the song is already a member or the
// (owner, title) pair does not reference a collection the caller owns.
func (s *Store) AddSong(ctx context.Context, userID int64, title string, songID int64) (bool, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO collection_songs (user_id, title, song_id)
			VALUES ($1, $2, $3)
		`, userID, title, songID)
		if err != nil {
			if isUniqueViolation(err) || isForeignKeyViolation(err) {
				return errNoChange
			}
			return fmt.Errorf("insert collection song: %w", err)
		}

		return s.recomputeAggregates(ctx, tx, userID, title)
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddAlbum inserts every song of the album that is not already a member, in
// one set-based statement, then recomputes aggregates. Returns how many
// songs were newly added; 0 when the caller does not own the collection,
// every song was already present, or the album has no songs.
func (s *Store) AddAlbum(ctx context.Context, userID int64, title string, albumID int64) (int, error) {
	var added int64

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
			INSERT INTO collection_songs (user_id, title, song_id)
			SELECT $1, $2, als.song_id
			FROM album_songs als
			WHERE als.album_id = $3
			  AND NOT EXISTS (
				SELECT 1 FROM collection_songs cs
				WHERE cs.user_id = $1 AND cs.title = $2 AND cs.song_id = als.song_id
			  )
		`, userID, title, albumID)
		if err != nil {
			return fmt.Errorf("insert album songs: %w", err)
		}

		added, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if added == 0 {
			return errNoChange
		}

		return s.recomputeAggregates(ctx, tx, userID, title)
	})
	if errors.Is(err, errNoChange) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int(added), nil
}

// RemoveSong deletes a membership row and recomputes aggregates only when a
// row was actually deleted.
func (s *Store) RemoveSong(ctx context.Context, userID int64, title string, songID int64) (bool, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM collection_songs
			WHERE user_id = $1 AND title = $2 AND song_id = $3
		`, userID, title, songID)
		if err != nil {
			return fmt.Errorf("delete collection song: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return errNoChange
		}

		return s.recomputeAggregates(ctx, tx, userID, title)
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// recomputeAggregates refreshes song_count and total_length from the current
// membership set. Recomputing from scratch (rather than incrementing) keeps
// the cached values self-healing after any earlier partial failure.
func (s *Store) recomputeAggregates(ctx context.Context, tx *sql.Tx, userID int64, title string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE collections c
		SET song_count = m.song_count, total_length = m.total_length
		FROM (
			SELECT COUNT(*) AS song_count, COALESCE(SUM(s.duration), 0) AS total_length
			FROM collection_songs cs
			JOIN songs s ON s.id = cs.song_id
			WHERE cs.user_id = $1 AND cs.title = $2
		) m
		WHERE c.user_id = $1 AND c.title = $2
	`, userID, title); err != nil {
		return fmt.Errorf("recompute aggregates: %w", err)
	}
	return nil
}
