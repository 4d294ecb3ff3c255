package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/lazypower/flashdeck/internal/store"
)

// ErrNotFound is returned when a user, set or card the caller named does
// not exist.
var ErrNotFound = errors.New("not found")

// maxStreakAttempts bounds the optimistic retry loop in RecordStudy.
const maxStreakAttempts = 5

// Engine applies the decay, due and streak rules to stored rows.
// It holds no mutable state of its own.
type Engine struct {
	DB        *store.DB
	Clock     Clock
	Policy    StreakPolicy
	MaxPoints int
}

// New creates an Engine with the wall clock, the default streak policy and
// the default mastery cap.
func New(db *store.DB) *Engine {
	return &Engine{
		DB:        db,
		Clock:     SystemClock,
		Policy:    DefaultStreakPolicy(),
		MaxPoints: DefaultMaxPoints,
	}
}

func (e *Engine) now() int64 {
	return e.Clock.Now().Unix()
}

// CardStatus is a card with the reader's derived progress.
type CardStatus struct {
	Card         store.Card
	Studied      bool
	StoredPoints int
	Points       int
	LastReviewed *int64
	DaysSince    float64
	Due          bool
}

// Evaluate derives the decayed points and due-ness of one progress row at
// now. A nil row is a card never studied: 0 points and due.
func (e *Engine) Evaluate(p *store.Progress, now int64, offset float64) CardStatus {
	if p == nil {
		return CardStatus{Due: true}
	}

	stored := ClampPoints(p.Points, e.MaxPoints)
	days := DaysSince(p.LastReviewed, now)
	last := p.LastReviewed
	return CardStatus{
		Studied:      true,
		StoredPoints: stored,
		Points:       DecayPoints(stored, days),
		LastReviewed: &last,
		DaysSince:    days,
		Due:          IsDueForStudy(stored, days, offset),
	}
}

// SetStatus returns every card in a set with the user's derived progress,
// projected offset days ahead for due-ness.
func (e *Engine) SetStatus(ctx context.Context, userID int64, setID string, offset float64) ([]CardStatus, error) {
	set, err := e.DB.GetSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	if set == nil {
		return nil, fmt.Errorf("set %s: %w", setID, ErrNotFound)
	}

	cards, err := e.DB.ListCards(ctx, setID)
	if err != nil {
		return nil, err
	}
	progress, err := e.DB.ListProgressForSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	out := make([]CardStatus, len(cards))
	for i, c := range cards {
		var p *store.Progress
		if row, ok := progress[c.ID]; ok {
			p = &row
		}
		st := e.Evaluate(p, now, offset)
		st.Card = c
		out[i] = st
	}
	return out, nil
}

// DueCards returns the cards in a set that are due offset days from now.
func (e *Engine) DueCards(ctx context.Context, userID int64, setID string, offset float64) ([]CardStatus, error) {
	all, err := e.SetStatus(ctx, userID, setID, offset)
	if err != nil {
		return nil, err
	}
	due := make([]CardStatus, 0, len(all))
	for _, st := range all {
		if st.Due {
			due = append(due, st)
		}
	}
	return due, nil
}

// ReviewResult is the outcome of one study submission.
type ReviewResult struct {
	CardID         string
	PreviousPoints int
	Points         int
	LastReviewed   int64
	Streak         StreakState
	StreakDays     int
}

// Review records an answer for a card. The new level starts from the
// decayed level: a correct answer adds a point up to MaxPoints, a wrong
// answer drops the card to 0. The review also counts as a study event
// for the user's streak; points and streak commit together or not at all.
func (e *Engine) Review(ctx context.Context, userID int64, cardID string, correct bool) (*ReviewResult, error) {
	card, err := e.DB.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
	}

	now := e.now()
	var previous int
	saved, streak, err := e.DB.RecordReview(ctx, userID, cardID,
		func(cur *store.Progress) store.Progress {
			previous = e.Evaluate(cur, now, 0).Points
			return store.Progress{
				Points:       e.score(previous, correct),
				LastReviewed: now,
			}
		},
		func(cur store.Streak) store.Streak {
			next := e.Policy.RecordStudyEvent(StreakState{StartDate: cur.StartDate, LastUpdated: cur.LastUpdated}, now)
			return store.Streak{StartDate: next.StartDate, LastUpdated: next.LastUpdated}
		})
	if errors.Is(err, store.ErrNoUser) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("review card %s: %w", cardID, err)
	}

	state := StreakState{StartDate: streak.StartDate, LastUpdated: streak.LastUpdated}
	return &ReviewResult{
		CardID:         cardID,
		PreviousPoints: previous,
		Points:         saved.Points,
		LastReviewed:   saved.LastReviewed,
		Streak:         state,
		StreakDays:     e.Policy.CurrentStreak(state, now),
	}, nil
}

func (e *Engine) score(decayed int, correct bool) int {
	if !correct {
		return 0
	}
	return ClampPoints(decayed+1, e.MaxPoints)
}

// RecordStudy applies a study event to the user's streak anchors and
// returns the stored result.
func (e *Engine) RecordStudy(ctx context.Context, userID int64) (StreakState, error) {
	return e.recordStudyAt(ctx, userID, e.now())
}

// recordStudyAt is an optimistic read-modify-write: read the anchors,
// compute the transition, and write only if nobody changed them since.
func (e *Engine) recordStudyAt(ctx context.Context, userID int64, now int64) (StreakState, error) {
	for attempt := 1; attempt <= maxStreakAttempts; attempt++ {
		cur, err := e.DB.GetStreak(ctx, userID)
		if err != nil {
			return StreakState{}, err
		}
		if cur == nil {
			return StreakState{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}

		next := e.Policy.RecordStudyEvent(StreakState{StartDate: cur.StartDate, LastUpdated: cur.LastUpdated}, now)
		err = e.DB.CompareAndSwapStreak(ctx, userID, *cur, store.Streak{
			StartDate:   next.StartDate,
			LastUpdated: next.LastUpdated,
		})
		if errors.Is(err, store.ErrConflict) {
			log.Printf("streak: user %d lost update race (attempt %d), retrying", userID, attempt)
			continue
		}
		if err != nil {
			return StreakState{}, err
		}
		return next, nil
	}
	return StreakState{}, fmt.Errorf("record study for user %d: %w", userID, store.ErrConflict)
}

// Streak returns the user's displayed streak length and stored anchors.
func (e *Engine) Streak(ctx context.Context, userID int64) (int, StreakState, error) {
	cur, err := e.DB.GetStreak(ctx, userID)
	if err != nil {
		return 0, StreakState{}, err
	}
	if cur == nil {
		return 0, StreakState{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	state := StreakState{StartDate: cur.StartDate, LastUpdated: cur.LastUpdated}
	return e.Policy.CurrentStreak(state, e.now()), state, nil
}
