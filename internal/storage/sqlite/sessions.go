package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"planboard/internal/models"
)

// CreateSession stores a login token for the user.
func (s *Store) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	if token == "" {
		return fmt.Errorf("empty session token")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions(token, user_id, expires_at) VALUES(?, ?, ?)`,
		token, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSessionUser resolves a token to its user. Expired tokens behave
// like missing ones and are cleaned up as a side effect.
func (s *Store) GetSessionUser(ctx context.Context, token string) (models.User, error) {
	var (
		u         models.User
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `SELECT u.id, u.username, u.email, u.password_hash, u.created_at, se.expires_at
        FROM sessions se JOIN users u ON u.id = se.user_id WHERE se.token = ?`, token).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(expiresAt) {
		_ = s.DeleteSession(ctx, token)
		return models.User{}, fmt.Errorf("session expired: %w", ErrNotFound)
	}
	return u, nil
}

// DeleteSession discards a login token. Deleting an unknown token is
// not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
