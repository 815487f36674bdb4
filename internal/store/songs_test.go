package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSongByID(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	released := time.Date(1977, time.October, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT s.id, s.title, s.duration, s.release_date,
			COALESCE(STRING_AGG(DISTINCT ar.name, ', ' ORDER BY ar.name), '') AS artists
		FROM songs s
	`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "duration", "release_date", "artists"}).
			AddRow(int64(3), "Heroes", 372, released, "David Bowie"))

	song, err := s.SongByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("SongByID: %v", err)
	}
	if song.Title != "Heroes" || song.Artists != "David Bowie" {
		t.Fatalf("unexpected song: %#v", song)
	}
	if song.ReleaseDate == nil || !song.ReleaseDate.Equal(released) {
		t.Fatalf("unexpected release date: %v", song.ReleaseDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSongByIDNotFound(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT s.id, s.title, s.duration, s.release_date,`)).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "duration", "release_date", "artists"}))

	_, err := s.SongByID(context.Background(), 999)
	if !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}
}

func TestSongsByAlbum(t *testing.T) {
	s, mock, done := newMockStore(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM album_songs als`)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "duration", "release_date", "artists"}).
			AddRow(int64(1), "Breathe", 163, nil, "Pink Floyd").
			AddRow(int64(2), "Time", 413, nil, "Pink Floyd"))

	songs, err := s.SongsByAlbum(context.Background(), 8)
	if err != nil {
		t.Fatalf("SongsByAlbum: %v", err)
	}
	if len(songs) != 2 || songs[0].Title != "Breathe" {
		t.Fatalf("unexpected songs: %#v", songs)
	}
	if songs[0].ReleaseDate != nil {
		t.Fatalf("expected nil release date, got %v", songs[0].ReleaseDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
