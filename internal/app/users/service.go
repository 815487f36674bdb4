package users

import (
	"context"

	"tunecrate/internal/store"
)

// Store defines the persistence hooks for account workflows.
type Store interface {
	CreateUser(ctx context.Context, u store.NewUser) (int64, error)
	Authenticate(ctx context.Context, username, password string) (*store.UserSummary, error)
}

// Service coordinates registration and login.
type Service interface {
	Register(ctx context.Context, u store.NewUser) (int64, error)
	Login(ctx context.Context, username, password string) (*store.UserSummary, error)
}

type service struct {
	store Store
}

// New constructs a users Service backed by the given Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Register(ctx context.Context, u store.NewUser) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.store.CreateUser(ctx, u)
}

func (s *service) Login(ctx context.Context, username, password string) (*store.UserSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Authenticate(ctx, username, password)
}
