// Package ident generates set and card identifiers from a timestamp and a
// per-millisecond sequence number.
package ident

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// State is the last issued (millis, seq) pair.
type State struct {
	LastMillis int64
	Seq        int64
}

// Next returns the identifier for nowMillis given the previous state, and
// the state to carry forward. Identifiers are strictly increasing in
// (millis, seq) even when the clock stalls or steps backwards.
func Next(state State, nowMillis int64) (string, State) {
	if nowMillis > state.LastMillis {
		state = State{LastMillis: nowMillis}
	} else {
		state.Seq++
	}
	return Format(state), state
}

// Format renders a state as "<millis base36>-<seq base36>".
func Format(s State) string {
	return strconv.FormatInt(s.LastMillis, 36) + "-" + strconv.FormatInt(s.Seq, 36)
}

// Parse reads an identifier produced by Format back into its state.
func Parse(id string) (State, bool) {
	millis, seq, ok := strings.Cut(id, "-")
	if !ok {
		return State{}, false
	}
	m, err := strconv.ParseInt(millis, 36, 64)
	if err != nil || m < 0 {
		return State{}, false
	}
	n, err := strconv.ParseInt(seq, 36, 64)
	if err != nil || n < 0 {
		return State{}, false
	}
	return State{LastMillis: m, Seq: n}, true
}

// after reports whether s orders after o.
func (s State) after(o State) bool {
	return s.LastMillis > o.LastMillis || (s.LastMillis == o.LastMillis && s.Seq > o.Seq)
}

// Generator owns a State and a time source. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	state State
	now   func() time.Time
}

// NewGenerator creates a Generator reading time from now.
// A nil now uses time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// NewID issues the next identifier.
func (g *Generator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, next := Next(g.state, g.now().UnixMilli())
	g.state = next
	return id
}

// Observe moves the generator past s if s is ahead of its current state,
// so ids issued earlier (by another process, or before a clock step back)
// are never reissued.
func (g *Generator) Observe(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s.after(g.state) {
		g.state = s
	}
}

// State returns a copy of the generator's current state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
