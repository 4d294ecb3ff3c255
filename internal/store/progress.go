package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Progress is a user's mastery of one card. Rows exist only for cards the
// user has studied at least once.
type Progress struct {
	OwnerID      int64  `db:"owner_id"`
	CardID       string `db:"card_id"`
	Points       int    `db:"points"`
	LastReviewed int64  `db:"last_reviewed"`
}

// GetProgress returns the progress row for (ownerID, cardID), or nil if
// the card has never been studied by that user.
func (db *DB) GetProgress(ctx context.Context, ownerID int64, cardID string) (*Progress, error) {
	var p Progress
	err := db.GetContext(ctx, &p, `
		SELECT owner_id, card_id, points, last_reviewed
		FROM card_progress WHERE owner_id = ? AND card_id = ?
	`, ownerID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &p, nil
}

// ListProgressForSet returns the user's progress rows for cards in a set,
// keyed by card id.
func (db *DB) ListProgressForSet(ctx context.Context, ownerID int64, setID string) (map[string]Progress, error) {
	var rows []Progress
	if err := db.SelectContext(ctx, &rows, `
		SELECT p.owner_id, p.card_id, p.points, p.last_reviewed
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.owner_id = ? AND c.set_id = ?
	`, ownerID, setID); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	out := make(map[string]Progress, len(rows))
	for _, p := range rows {
		out[p.CardID] = p
	}
	return out, nil
}

// UpdateProgress runs a read-modify-write of one progress row inside a
// transaction. fn receives the current row (nil if never studied) and
// returns the row to store.
func (db *DB) UpdateProgress(ctx context.Context, ownerID int64, cardID string, fn func(cur *Progress) Progress) (*Progress, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin progress update: %w", err)
	}
	defer tx.Rollback()

	next, err := updateProgressTx(ctx, tx, ownerID, cardID, fn)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit progress: %w", err)
	}
	return next, nil
}

// RecordReview updates a card's progress row and the owner's streak
// anchors in one transaction, so either both change or neither does.
// Returns ErrNoUser if the owner does not exist.
func (db *DB) RecordReview(ctx context.Context, ownerID int64, cardID string,
	progress func(cur *Progress) Progress, streak func(cur Streak) Streak) (*Progress, *Streak, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin review: %w", err)
	}
	defer tx.Rollback()

	var cur Streak
	err = tx.GetContext(ctx, &cur, `
		SELECT streak_start_date, streak_last_updated FROM users WHERE id = ?
	`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("user %d: %w", ownerID, ErrNoUser)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read streak: %w", err)
	}

	saved, err := updateProgressTx(ctx, tx, ownerID, cardID, progress)
	if err != nil {
		return nil, nil, err
	}

	next := streak(cur)
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET streak_start_date = ?, streak_last_updated = ? WHERE id = ?
	`, next.StartDate, next.LastUpdated, ownerID); err != nil {
		return nil, nil, fmt.Errorf("write streak: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit review: %w", err)
	}
	return saved, &next, nil
}

func updateProgressTx(ctx context.Context, tx *sqlx.Tx, ownerID int64, cardID string, fn func(cur *Progress) Progress) (*Progress, error) {
	var cur *Progress
	var p Progress
	err := tx.GetContext(ctx, &p, `
		SELECT owner_id, card_id, points, last_reviewed
		FROM card_progress WHERE owner_id = ? AND card_id = ?
	`, ownerID, cardID)
	switch {
	case err == nil:
		cur = &p
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("read progress: %w", err)
	}

	next := fn(cur)
	next.OwnerID = ownerID
	next.CardID = cardID
	if next.Points < 0 {
		next.Points = 0
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO card_progress (owner_id, card_id, points, last_reviewed)
		VALUES (:owner_id, :card_id, :points, :last_reviewed)
		ON CONFLICT (owner_id, card_id) DO UPDATE
		SET points = excluded.points, last_reviewed = excluded.last_reviewed
	`, next); err != nil {
		return nil, fmt.Errorf("write progress: %w", err)
	}
	return &next, nil
}
