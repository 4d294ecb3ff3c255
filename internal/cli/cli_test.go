package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/lazypower/flashdeck/internal/deck"
	"github.com/lazypower/flashdeck/internal/engine"
	"github.com/lazypower/flashdeck/internal/store"
)

func TestImportDeck(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "ada", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	d := &deck.Deck{
		Title:   "  Capitals ",
		Skipped: 1,
		Cards: []deck.Card{
			{Front: "France", Back: "Paris"},
			{Front: "Peru", Back: "Lima"},
			{Front: "   ", Back: "nowhere"},
		},
	}
	set, skipped, err := importDeck(ctx, db, u.ID, d)
	if err != nil {
		t.Fatalf("importDeck: %v", err)
	}
	if set.Title != "Capitals" {
		t.Errorf("Title = %q, want Capitals", set.Title)
	}
	if set.CardCount != 2 || skipped != 2 {
		t.Errorf("cards = %d, skipped = %d; want 2, 2", set.CardCount, skipped)
	}

	cards, _ := db.ListCards(ctx, set.ID)
	if len(cards) != 2 || cards[0].Front != "France" {
		t.Errorf("stored cards = %+v", cards)
	}

	if _, _, err := importDeck(ctx, db, u.ID, &deck.Deck{Title: " "}); err == nil {
		t.Error("untitled deck: expected error")
	}
}

func TestPrintDue(t *testing.T) {
	var buf bytes.Buffer
	printDue(&buf, nil, 0)
	if got := buf.String(); got != "nothing due\n" {
		t.Errorf("empty = %q", got)
	}

	buf.Reset()
	last := int64(1_700_000_000)
	printDue(&buf, []engine.CardStatus{
		{Card: store.Card{ID: "a", Front: "France"}, Due: true},
		{Card: store.Card{ID: "b", Front: "Peru"}, Studied: true, Points: 2, LastReviewed: &last, Due: true},
	}, 3)
	out := buf.String()
	for _, want := range []string{"2 cards due within 3 days", "[a] France", "never studied", "[b] Peru", "2 pts", "reviewed "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, true)
	if buf.String() != Version+"\n" {
		t.Errorf("short = %q, want %q", buf.String(), Version)
	}

	buf.Reset()
	printVersion(&buf, false)
	for _, want := range []string{"flashdeck " + Version, "commit:", "runtime:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("version output missing %q:\n%s", want, buf.String())
		}
	}

	if got := VersionString(); got != "dev" {
		t.Errorf("VersionString() = %q, want dev for an unstamped build", got)
	}
}
