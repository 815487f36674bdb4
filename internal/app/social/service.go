package social

import (
	"context"

	"tunecrate/internal/store"
)

// Store defines the persistence hooks for the follow graph.
type Store interface {
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListOthers(ctx context.Context, viewerID int64) ([]store.UserListing, error)
	SearchByEmail(ctx context.Context, viewerID int64, term string) ([]store.UserListing, error)
}

// Service coordinates follow edges and user discovery.
type Service interface {
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListOthers(ctx context.Context, viewerID int64) ([]store.UserListing, error)
	SearchByEmail(ctx context.Context, viewerID int64, term string) ([]store.UserListing, error)
}

type service struct {
	store Store
}

// New constructs a social Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.Follow(ctx, followerID, followeeID)
}

func (s *service) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.store.Unfollow(ctx, followerID, followeeID)
}

func (s *service) ListOthers(ctx context.Context, viewerID int64) ([]store.UserListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListOthers(ctx, viewerID)
}

func (s *service) SearchByEmail(ctx context.Context, viewerID int64, term string) ([]store.UserListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SearchByEmail(ctx, viewerID, term)
}
