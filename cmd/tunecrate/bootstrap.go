package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tunecrate/internal/store"
)

func bootstrapDemoData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	if err := ensureDemoUser(ctx, dataStore); err != nil {
		return err
	}
	if err := ensureDemoCatalog(ctx, db); err != nil {
		return err
	}
	return nil
}

func ensureDemoUser(ctx context.Context, dataStore *store.Store) error {
	_, err := dataStore.CreateUser(ctx, store.NewUser{
		Username:  "demo",
		Password:  "demo123",
		FirstName: "Demo",
		LastName:  "User",
		Email:     "demo@tunecrate.local",
	})
	if err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	return nil
}

func ensureDemoCatalog(ctx context.Context, db *sql.DB) error {
	songsTableExists, err := tableExists(ctx, db, "songs")
	if err != nil {
		return fmt.Errorf("check songs table: %w", err)
	}
	if !songsTableExists {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count); err != nil {
		return fmt.Errorf("count songs: %w", err)
	}
	if count > 0 {
		return nil
	}

	type seedSong struct {
		Title    string
		Duration int
	}

	type seedAlbum struct {
		Artist   string
		Title    string
		Released time.Time
		Genres   []string
		Songs    []seedSong
	}

	date := func(year int, month time.Month, day int) time.Time {
		return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	}

	albums := []seedAlbum{
		{
			Artist:   "Boards of Canada",
			Title:    "Music Has the Right to Children",
			Released: date(1998, time.April, 20),
			Genres:   []string{"Electronic", "Ambient"},
			Songs: []seedSong{
				{"Turquoise Hexagon Sun", 309},
				{"Roygbiv", 151},
				{"Aquarius", 358},
			},
		},
		{
			Artist:   "Massive Attack",
			Title:    "Mezzanine",
			Released: date(1998, time.April, 20),
			Genres:   []string{"Trip Hop"},
			Songs: []seedSong{
				{"Angel", 379},
				{"Teardrop", 330},
				{"Inertia Creeps", 358},
			},
		},
		{
			Artist:   "Portishead",
			Title:    "Dummy",
			Released: date(1994, time.August, 22),
			Genres:   []string{"Trip Hop"},
			Songs: []seedSong{
				{"Mysterons", 306},
				{"Sour Times", 254},
				{"Glory Box", 305},
			},
		},
		{
			Artist:   "Radiohead",
			Title:    "OK Computer",
			Released: date(1997, time.May, 21),
			Genres:   []string{"Alternative Rock"},
			Songs: []seedSong{
				{"Airbag", 284},
				{"Paranoid Android", 383},
				{"No Surprises", 229},
			},
		},
		{
			Artist:   "Bonobo",
			Title:    "Migration",
			Released: date(2017, time.January, 13),
			Genres:   []string{"Electronic", "Downtempo"},
			Songs: []seedSong{
				{"Migration", 326},
				{"Break Apart", 263},
				{"Kerala", 237},
			},
		},
		{
			Artist:   "Thundercat",
			Title:    "Drunk",
			Released: date(2017, time.February, 24),
			Genres:   []string{"Funk", "Jazz"},
			Songs: []seedSong{
				{"Uh Uh", 156},
				{"Them Changes", 187},
				{"Show You The Way", 236},
			},
		},
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	genreIDs := map[string]int64{}
	for _, album := range albums {
		var artistID int64
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO artists (name)
			VALUES ($1)
			RETURNING id
		`, album.Artist).Scan(&artistID); err != nil {
			return fmt.Errorf("insert demo artist %q: %w", album.Artist, err)
		}

		var albumID int64
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO albums (title, release_date)
			VALUES ($1, $2)
			RETURNING id
		`, album.Title, album.Released).Scan(&albumID); err != nil {
			return fmt.Errorf("insert demo album %q: %w", album.Title, err)
		}

		for _, genre := range album.Genres {
			if _, ok := genreIDs[genre]; ok {
				continue
			}
			var genreID int64
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO genres (name)
				VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id
			`, genre).Scan(&genreID); err != nil {
				return fmt.Errorf("insert demo genre %q: %w", genre, err)
			}
			genreIDs[genre] = genreID
		}

		for _, song := range album.Songs {
			var songID int64
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO songs (title, duration, release_date)
				VALUES ($1, $2, $3)
				RETURNING id
			`, song.Title, song.Duration, album.Released).Scan(&songID); err != nil {
				return fmt.Errorf("insert demo song %q: %w", song.Title, err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO song_artists (song_id, artist_id)
				VALUES ($1, $2)
			`, songID, artistID); err != nil {
				return fmt.Errorf("link song %q to artist: %w", song.Title, err)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO album_songs (album_id, song_id)
				VALUES ($1, $2)
			`, albumID, songID); err != nil {
				return fmt.Errorf("link song %q to album: %w", song.Title, err)
			}

			for _, genre := range album.Genres {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO song_genres (song_id, genre_id)
					VALUES ($1, $2)
				`, songID, genreIDs[genre]); err != nil {
					return fmt.Errorf("link song %q to genre %q: %w", song.Title, genre, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	tx = nil

	return nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
