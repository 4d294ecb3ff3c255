package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// Card is one front/back pair in a set.
type Card struct {
	ID        string `db:"id" json:"id"`
	SetID     string `db:"set_id" json:"set_id"`
	Front     string `db:"front" json:"front"`
	Back      string `db:"back" json:"back"`
	Position  int    `db:"position" json:"position"`
	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt int64  `db:"updated_at" json:"updated_at"`
}

const cardColumns = `id, set_id, front, back, position, created_at, updated_at`

// CreateCard appends a card to the end of its set.
func (db *DB) CreateCard(ctx context.Context, card *Card) error {
	now := unixNow()
	card.CreatedAt = now
	card.UpdatedAt = now

	for attempt := 1; ; attempt++ {
		card.ID = db.IDs.NewID()
		err := db.insertCard(ctx, card)
		if isUniqueViolation(err) && attempt < maxIDAttempts {
			log.Printf("store: card id %s already taken, retrying", card.ID)
			continue
		}
		if err != nil {
			return err
		}
		db.touchSet(ctx, card.SetID)
		return nil
	}
}

func (db *DB) insertCard(ctx context.Context, card *Card) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create card: %w", err)
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, &card.Position, `
		SELECT COALESCE(MAX(position), 0) + 1 FROM cards WHERE set_id = ?
	`, card.SetID); err != nil {
		return fmt.Errorf("next card position: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO cards (id, set_id, front, back, position, created_at, updated_at)
		VALUES (:id, :set_id, :front, :back, :position, :created_at, :updated_at)
	`, card); err != nil {
		return fmt.Errorf("insert card: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit card: %w", err)
	}
	return nil
}

// GetCard returns a card by id, or nil if none exists.
func (db *DB) GetCard(ctx context.Context, id string) (*Card, error) {
	var c Card
	err := db.GetContext(ctx, &c, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return &c, nil
}

// ListCards returns a set's cards in position order.
func (db *DB) ListCards(ctx context.Context, setID string) ([]Card, error) {
	var cards []Card
	if err := db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+` FROM cards WHERE set_id = ? ORDER BY position
	`, setID); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// UpdateCard rewrites a card's front and back. Progress is kept.
func (db *DB) UpdateCard(ctx context.Context, card *Card) error {
	card.UpdatedAt = unixNow()
	result, err := db.NamedExecContext(ctx, `
		UPDATE cards SET front = :front, back = :back, updated_at = :updated_at
		WHERE id = :id
	`, card)
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("no card with id %s", card.ID)
	}
	db.touchSet(ctx, card.SetID)
	return nil
}

// DeleteCard removes a card and every user's progress on it.
func (db *DB) DeleteCard(ctx context.Context, card *Card) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, card.ID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	db.touchSet(ctx, card.SetID)
	return nil
}
