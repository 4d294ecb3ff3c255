package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// User is an account row including its streak anchors.
type User struct {
	ID                int64  `db:"id"`
	Username          string `db:"username"`
	PasswordHash      string `db:"password_hash"`
	StreakStartDate   *int64 `db:"streak_start_date"`
	StreakLastUpdated *int64 `db:"streak_last_updated"`
	CreatedAt         int64  `db:"created_at"`
}

// Streak is the persisted pair of streak anchors.
type Streak struct {
	StartDate   *int64 `db:"streak_start_date"`
	LastUpdated *int64 `db:"streak_last_updated"`
}

const userColumns = `id, username, password_hash, streak_start_date, streak_last_updated, created_at`

// CreateUser inserts a new account with empty streak anchors.
// Returns ErrDuplicate if the username is taken.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	now := unixNow()
	result, err := db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)
	`, username, passwordHash, now)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user %q: %w", username, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := result.LastInsertId()
	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}, nil
}

// GetUser returns a user by id, or nil if none exists.
func (db *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	err := db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetUserByName returns a user by case-insensitive username, or nil.
func (db *DB) GetUserByName(ctx context.Context, username string) (*User, error) {
	var u User
	err := db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by name: %w", err)
	}
	return &u, nil
}

// DeleteUser removes an account. Sessions, sets, cards and progress go
// with it via foreign key cascades.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no user with id %d", id)
	}
	return nil
}

// GetStreak returns the user's streak anchors, or nil if the user does
// not exist.
func (db *DB) GetStreak(ctx context.Context, userID int64) (*Streak, error) {
	var s Streak
	err := db.GetContext(ctx, &s, `
		SELECT streak_start_date, streak_last_updated FROM users WHERE id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	return &s, nil
}

// CompareAndSwapStreak writes next only if the stored anchors still equal
// prev. Returns ErrConflict when another writer got there first.
func (db *DB) CompareAndSwapStreak(ctx context.Context, userID int64, prev, next Streak) error {
	result, err := db.ExecContext(ctx, `
		UPDATE users SET streak_start_date = ?, streak_last_updated = ?
		WHERE id = ? AND streak_start_date IS ? AND streak_last_updated IS ?
	`, next.StartDate, next.LastUpdated, userID, prev.StartDate, prev.LastUpdated)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConflict
	}
	return nil
}
