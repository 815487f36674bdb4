package catalog

import (
	"context"

	"tunecrate/internal/store"
)

// Store defines the persistence hooks for catalog reads and search.
type Store interface {
	SearchSongs(ctx context.Context, viewerID int64, q store.SearchQuery) ([]store.SongResult, error)
	SongByID(ctx context.Context, id int64) (store.Song, error)
	SongsByAlbum(ctx context.Context, albumID int64) ([]store.Song, error)
}

// Service coordinates catalog search and song lookups.
type Service interface {
	Search(ctx context.Context, viewerID int64, q store.SearchQuery) ([]store.SongResult, error)
	Song(ctx context.Context, id int64) (store.Song, error)
	AlbumSongs(ctx context.Context, albumID int64) ([]store.Song, error)
}

type service struct {
	store Store
}

// New constructs a catalog Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Search(ctx context.Context, viewerID int64, q store.SearchQuery) ([]store.SongResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SearchSongs(ctx, viewerID, q)
}

func (s *service) Song(ctx context.Context, id int64) (store.Song, error) {
	if err := ctx.Err(); err != nil {
		return store.Song{}, err
	}
	return s.store.SongByID(ctx, id)
}

func (s *service) AlbumSongs(ctx context.Context, albumID int64) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SongsByAlbum(ctx, albumID)
}
