package store

import (
	"context"
	"fmt"
)

// UserListing is one row of a user-discovery query, annotated with whether
// the viewer already follows this user.
type UserListing struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Following bool   `json:"following"`
}

// Follow inserts a follow edge. Self-follows are rejected before any storage
// call; following a user twice is a no-op success.
func (s *Store) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if followerID == followeeID {
		return false, nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`, followerID, followeeID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert follow: %w", err)
	}
	return true, nil
}

// Unfollow removes a follow edge. Returns whether an edge was actually
// removed; absence is not an error.
func (s *Store) Unfollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM follows
		WHERE follower_id = $1 AND followee_id = $2
	`, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("delete follow: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListOthers returns every user except the viewer, flagged with whether the
// viewer already follows them.
func (s *Store) ListOthers(ctx context.Context, viewerID int64) ([]UserListing, error) {
	return s.listUsers(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.email,
			(f.follower_id IS NOT NULL) AS following
		FROM users u
		LEFT JOIN follows f ON f.followee_id = u.id AND f.follower_id = $1
		WHERE u.id <> $1
		ORDER BY u.username ASC
	`, viewerID)
}

// SearchByEmail returns users other than the viewer whose email contains the
// term, case-insensitively, with the same following annotation.
func (s *Store) SearchByEmail(ctx context.Context, viewerID int64, term string) ([]UserListing, error) {
	return s.listUsers(ctx, `
		SELECT u.id, u.username, u.first_name, u.last_name, u.email,
			(f.follower_id IS NOT NULL) AS following
		FROM users u
		LEFT JOIN follows f ON f.followee_id = u.id AND f.follower_id = $1
		WHERE u.id <> $1 AND u.email ILIKE $2
		ORDER BY u.username ASC
	`, viewerID, "%"+term+"%")
}

func (s *Store) listUsers(ctx context.Context, query string, args ...interface{}) ([]UserListing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]UserListing, 0)
	for rows.Next() {
		var u UserListing
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Following); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
