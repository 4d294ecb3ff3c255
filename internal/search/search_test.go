package search

import (
	"testing"

	"github.com/lazypower/flashdeck/internal/store"
)

func corpus() []store.Set {
	return []store.Set{
		{ID: "1", Title: "Spanish Verbs", Description: "irregular preterite"},
		{ID: "2", Title: "French Vocabulary", Description: "kitchen words"},
		{ID: "3", Title: "Organic Chemistry", Description: "functional groups and spanish names"},
		{ID: "4", Title: "Capitals of Europe", Description: ""},
	}
}

func TestSetsTitleMatchFirst(t *testing.T) {
	results := Sets(corpus(), "spanish", 10)
	if len(results) != 2 {
		t.Fatalf("len = %d, want 2", len(results))
	}
	if results[0].Set.ID != "1" {
		t.Errorf("first = %s, want title match 1", results[0].Set.ID)
	}
	if results[1].Set.ID != "3" {
		t.Errorf("second = %s, want description match 3", results[1].Set.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("title score %d should beat description score %d", results[0].Score, results[1].Score)
	}
}

func TestSetsFuzzy(t *testing.T) {
	results := Sets(corpus(), "frvoc", 10)
	if len(results) == 0 || results[0].Set.ID != "2" {
		t.Errorf("results = %+v, want French Vocabulary first", results)
	}
}

func TestSetsEmptyQuerySortsByTitle(t *testing.T) {
	results := Sets(corpus(), "  ", 3)
	if len(results) != 3 {
		t.Fatalf("len = %d, want 3", len(results))
	}
	want := []string{"4", "2", "3"}
	for i, id := range want {
		if results[i].Set.ID != id {
			t.Errorf("results[%d] = %s, want %s", i, results[i].Set.ID, id)
		}
	}
}

func TestSetsNoMatch(t *testing.T) {
	if results := Sets(corpus(), "zzzz", 10); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestSetsLimit(t *testing.T) {
	if results := Sets(corpus(), "e", 2); len(results) != 2 {
		t.Errorf("len = %d, want 2", len(results))
	}
}
