package engine

import "time"

// Default streak windows. A study event within the continuation window of
// the last counted event extends the streak; past the expiry window a
// stale streak reads as 0 even before the next event resets it.
const (
	DefaultContinuationWindow = 36 * time.Hour
	DefaultExpiryWindow       = 36 * time.Hour
)

// StreakState holds a user's streak anchors as unix seconds. A nil
// StartDate means the user has no streak.
type StreakState struct {
	StartDate   *int64 `json:"streak_start_date"`
	LastUpdated *int64 `json:"streak_last_updated"`
}

// StreakPolicy holds the two windows that drive the streak state machine.
type StreakPolicy struct {
	Continuation time.Duration
	Expiry       time.Duration
}

// DefaultStreakPolicy returns the 36h/36h policy.
func DefaultStreakPolicy() StreakPolicy {
	return StreakPolicy{
		Continuation: DefaultContinuationWindow,
		Expiry:       DefaultExpiryWindow,
	}
}

// Active reports whether the state has anchors at all.
func (s StreakState) Active() bool {
	return s.StartDate != nil
}

// anchors returns the start and last-updated seconds, repairing a missing
// or out-of-order last anchor so that last >= start.
func (s StreakState) anchors() (start, last int64) {
	start = *s.StartDate
	last = start
	if s.LastUpdated != nil && *s.LastUpdated > start {
		last = *s.LastUpdated
	}
	return start, last
}

func newStreakState(start, last int64) StreakState {
	return StreakState{StartDate: &start, LastUpdated: &last}
}

// RecordStudyEvent applies one study event at now and returns the new
// anchors. The input state is not modified.
func (p StreakPolicy) RecordStudyEvent(state StreakState, now int64) StreakState {
	if !state.Active() {
		return newStreakState(now, now)
	}

	start, last := state.anchors()
	if elapsedSeconds(last, now) > int64(p.Continuation/time.Second) {
		return newStreakState(now, now)
	}

	// Skewed clocks never move an anchor backwards.
	if now < last {
		now = last
	}
	return newStreakState(start, now)
}

// CurrentStreak returns the number of calendar-length days spanned by the
// streak at now, inclusive of the start day, or 0 when there is no streak
// or it has expired.
func (p StreakPolicy) CurrentStreak(state StreakState, now int64) int {
	if !state.Active() {
		return 0
	}

	start, last := state.anchors()
	if elapsedSeconds(last, now) > int64(p.Expiry/time.Second) {
		return 0
	}
	return int(elapsedSeconds(start, now)/SecondsPerDay) + 1
}

// RecordStudyEvent applies the default policy.
func RecordStudyEvent(state StreakState, now int64) StreakState {
	return DefaultStreakPolicy().RecordStudyEvent(state, now)
}

// CurrentStreak applies the default policy.
func CurrentStreak(state StreakState, now int64) int {
	return DefaultStreakPolicy().CurrentStreak(state, now)
}

func elapsedSeconds(from, to int64) int64 {
	if to < from {
		return 0
	}
	return to - from
}
