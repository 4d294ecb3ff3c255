package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AuthSession is a cookie session issued at login.
type AuthSession struct {
	Token     string `db:"token"`
	UserID    int64  `db:"user_id"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// CreateAuthSession stores a new session token for userID valid for ttl.
func (db *DB) CreateAuthSession(ctx context.Context, token string, userID int64, ttl time.Duration) (*AuthSession, error) {
	now := unixNow()
	s := &AuthSession{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now + int64(ttl/time.Second),
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO auth_sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, s.Token, s.UserID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert auth session: %w", err)
	}
	return s, nil
}

// GetAuthSession returns a live session by token. Missing and expired
// sessions both return nil.
func (db *DB) GetAuthSession(ctx context.Context, token string) (*AuthSession, error) {
	var s AuthSession
	err := db.GetContext(ctx, &s, `
		SELECT token, user_id, created_at, expires_at
		FROM auth_sessions WHERE token = ?
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get auth session: %w", err)
	}
	if s.Expired(time.Now()) {
		return nil, nil
	}
	return &s, nil
}

// DeleteAuthSession removes a session (logout). Deleting an unknown token
// is not an error.
func (db *DB) DeleteAuthSession(ctx context.Context, token string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete auth session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions deletes sessions that expired before now and
// returns how many were removed.
func (db *DB) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return result.RowsAffected()
}
