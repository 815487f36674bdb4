package collections

import (
	"context"

	"tunecrate/internal/store"
)

// Store defines persistence operations for song collections.
type Store interface {
	ListCollections(ctx context.Context, userID int64) ([]store.CollectionSummary, error)
	CreateCollection(ctx context.Context, userID int64, title string) (bool, error)
	CollectionDetails(ctx context.Context, userID int64, title string) (*store.CollectionDetail, error)
	RenameCollection(ctx context.Context, userID int64, oldTitle, newTitle string) (bool, error)
	DeleteCollection(ctx context.Context, userID int64, title string) (bool, error)
	AddSong(ctx context.Context, userID int64, title string, songID int64) (bool, error)
	AddAlbum(ctx context.Context, userID int64, title string, albumID int64) (int, error)
	RemoveSong(ctx context.Context, userID int64, title string, songID int64) (bool, error)
}

// Service coordinates collection CRUD and membership changes.
type Service interface {
	List(ctx context.Context, userID int64) ([]store.CollectionSummary, error)
	Create(ctx context.Context, userID int64, title string) (bool, error)
	Details(ctx context.Context, userID int64, title string) (*store.CollectionDetail, error)
	Rename(ctx context.Context, userID int64, oldTitle, newTitle string) (bool, error)
	Delete(ctx context.Context, userID int64, title string) (bool, error)
	AddSong(ctx context.Context, userID int64, title string, songID int64) (bool, error)
	AddAlbum(ctx context.Context, userID int64, title string, albumID int64) (int, error)
	RemoveSong(ctx context.Context, userID int64, title string, songID int64) (bool, error)
}

type service struct {
	store Store
}

// New constructs a collections Service.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) List(ctx context.Context, userID int64) ([]store.CollectionSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListCollections(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID int64, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.CreateCollection(ctx, userID, title)
}

func (s *service) Details(ctx context.Context, userID int64, title string) (*store.CollectionDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CollectionDetails(ctx, userID, title)
}

func (s *service) Rename(ctx context.Context, userID int64, oldTitle, newTitle string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.RenameCollection(ctx, userID, oldTitle, newTitle)
}

func (s *service) Delete(ctx context.Context, userID int64, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.DeleteCollection(ctx, userID, title)
}

func (s *service) AddSong(ctx context.Context, userID int64, title string, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.AddSong(ctx, userID, title, songID)
}

func (s *service) AddAlbum(ctx context.Context, userID int64, title string, albumID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.AddAlbum(ctx, userID, title, albumID)
}

func (s *service) RemoveSong(ctx context.Context, userID int64, title string, songID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.RemoveSong(ctx, userID, title, songID)
}
