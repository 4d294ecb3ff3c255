package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// Set is a named collection of cards owned by one user.
type Set struct {
	ID          string `db:"id" json:"id"`
	OwnerID     int64  `db:"owner_id" json:"owner_id"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	CardCount   int    `db:"card_count" json:"card_count"`
	CreatedAt   int64  `db:"created_at" json:"created_at"`
	UpdatedAt   int64  `db:"updated_at" json:"updated_at"`
}

const setSelect = `
	SELECT s.id, s.owner_id, s.title, s.description, s.created_at, s.updated_at,
	       (SELECT COUNT(*) FROM cards c WHERE c.set_id = s.id) AS card_count
	FROM sets s`

// CreateSet inserts a set and fills in its generated id and timestamps.
func (db *DB) CreateSet(ctx context.Context, set *Set) error {
	now := unixNow()
	set.CreatedAt = now
	set.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		set.ID = db.IDs.NewID()
		_, err := db.NamedExecContext(ctx, `
			INSERT INTO sets (id, owner_id, title, description, created_at, updated_at)
			VALUES (:id, :owner_id, :title, :description, :created_at, :updated_at)
		`, set)
		if isUniqueViolation(err) && attempt < maxIDAttempts {
			log.Printf("store: set id %s already taken, retrying", set.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("insert set: %w", err)
		}
		return nil
	}
}

// GetSet returns a set by id, or nil if none exists.
func (db *DB) GetSet(ctx context.Context, id string) (*Set, error) {
	var s Set
	err := db.GetContext(ctx, &s, setSelect+` WHERE s.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get set: %w", err)
	}
	return &s, nil
}

// ListSetsByOwner returns a user's sets, most recently updated first.
func (db *DB) ListSetsByOwner(ctx context.Context, ownerID int64) ([]Set, error) {
	var sets []Set
	if err := db.SelectContext(ctx, &sets, setSelect+` WHERE s.owner_id = ? ORDER BY s.updated_at DESC, s.id DESC`, ownerID); err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return sets, nil
}

// ListAllSets returns every set. Used as the search corpus.
func (db *DB) ListAllSets(ctx context.Context) ([]Set, error) {
	var sets []Set
	if err := db.SelectContext(ctx, &sets, setSelect+` ORDER BY s.title`); err != nil {
		return nil, fmt.Errorf("list all sets: %w", err)
	}
	return sets, nil
}

// UpdateSet rewrites a set's title and description.
func (db *DB) UpdateSet(ctx context.Context, set *Set) error {
	set.UpdatedAt = unixNow()
	result, err := db.NamedExecContext(ctx, `
		UPDATE sets SET title = :title, description = :description, updated_at = :updated_at
		WHERE id = :id
	`, set)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no set with id %s", set.ID)
	}
	return nil
}

// DeleteSet removes a set along with its cards and their progress rows.
func (db *DB) DeleteSet(ctx context.Context, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM sets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}

// touchSet bumps a set's updated_at after a card change. The card write
// has already committed, so a failure here is logged, not returned.
func (db *DB) touchSet(ctx context.Context, id string) {
	if _, err := db.ExecContext(ctx, `UPDATE sets SET updated_at = ? WHERE id = ?`, unixNow(), id); err != nil {
		log.Printf("store: touch set %s: %v", id, err)
	}
}
