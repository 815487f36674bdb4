package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tunecrate/internal/auth"
)

// dummyPasswordHash keeps the bcrypt work factor constant for unknown
// usernames so login timing does not reveal which accounts exist.
var dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC"

// NewUser carries the fields required to register an account.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

// UserSummary identifies an authenticated user.
type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// CreateUser registers a new account with a bcrypt-hashed secret and returns
// the new user id. A taken username or email yields ErrUserExists.
func (s *Store) CreateUser(ctx context.Context, u NewUser) (int64, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" || u.Password == "" || u.Email == "" {
		return 0, ErrInvalidUser
	}

	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()

	var userID int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, first_name, last_name, email, created_at, last_access_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`, u.Username, hash, u.FirstName, u.LastName, u.Email, now).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	return userID, nil
}

// Authenticate validates credentials by username. Unknown usernames and
// wrong passwords are indistinguishable: both return (nil, nil).
//
// Exactly one legacy path is supported: when the stored secret carries no
// bcrypt prefix it is compared as plaintext and, on match, rewritten as a
// hash inside the same transaction before success is reported. The
// last-access timestamp is updated in that same transaction.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*UserSummary, error) {
	var user *UserSummary

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			u      UserSummary
			secret string
		)
		err := tx.QueryRowContext(ctx, `
			SELECT id, username, first_name, last_name, email, password_hash
			FROM users
			WHERE username = $1
		`, username).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &secret)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
				return nil
			}
			return fmt.Errorf("lookup user: %w", err)
		}

		if auth.IsHashed(secret) {
			if !auth.VerifyPassword(password, secret) {
				return nil
			}
		} else {
			// One-time upgrade-on-login for legacy plaintext secrets.
			if !auth.LegacyMatch(password, secret) {
				return nil
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE users
				SET password_hash = $1
				WHERE id = $2
			`, hash, u.ID); err != nil {
				return fmt.Errorf("upgrade password hash: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE users
			SET last_access_at = $1
			WHERE id = $2
		`, time.Now().UTC(), u.ID); err != nil {
			return fmt.Errorf("update last access: %w", err)
		}

		user = &u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
