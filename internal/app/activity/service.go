package activity

import (
	"context"

	"tunecrate/internal/store"
)

// Store defines the persistence hooks for play logging, ratings, and
// popularity rollups.
type Store interface {
	LogPlay(ctx context.Context, userID, songID int64) (bool, error)
	LogCollectionPlay(ctx context.Context, userID int64, title string) (int, error)
	RateSong(ctx context.Context, userID, songID int64, rating int) (bool, error)
	TopSongsGlobal(ctx context.Context, windowDays int) ([]store.PopularSong, error)
	TopSongsAmongFollowed(ctx context.Context, userID int64) ([]store.PopularSong, error)
	TopGenresThisMonth(ctx context.Context) ([]store.PopularGenre, error)
}

// Service coordinates the activity ledger.
type Service interface {
	PlaySong(ctx context.Context, userID, songID int64) (bool, error)
	PlayCollection(ctx context.Context, userID int64, title string) (int, error)
	Rate(ctx context.Context, userID, songID int64, rating int) (bool, error)
	TopSongs(ctx context.Context, windowDays int) ([]store.PopularSong, error)
	TopSongsFollowed(ctx context.Context, userID int64) ([]store.PopularSong, error)
	TopGenres(ctx context.Context) ([]store.PopularGenre, error)
}

type service struct {
	store Store
}

// New constructs an activity Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) PlaySong(ctx context.Context, userID, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.LogPlay(ctx, userID, songID)
}

func (s *service) PlayCollection(ctx context.Context, userID int64, title string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.LogCollectionPlay(ctx, userID, title)
}

func (s *service) Rate(ctx context.Context, userID, songID int64, rating int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.RateSong(ctx, userID, songID, rating)
}

func (s *service) TopSongs(ctx context.Context, windowDays int) ([]store.PopularSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.TopSongsGlobal(ctx, windowDays)
}

func (s *service) TopSongsFollowed(ctx context.Context, userID int64) ([]store.PopularSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.TopSongsAmongFollowed(ctx, userID)
}

func (s *service) TopGenres(ctx context.Context) ([]store.PopularGenre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.TopGenresThisMonth(ctx)
}
