// Package search ranks flashcard sets against a free-text query.
package search

import (
	"sort"
	"strings"

	"github.com/lazypower/flashdeck/internal/store"
	"github.com/sahilm/fuzzy"
)

// DefaultLimit caps results when the caller passes no limit.
const DefaultLimit = 20

// Result is one ranked set.
type Result struct {
	Set   store.Set
	Score int
}

// setSource adapts a slice of sets to fuzzy.Source over the given field.
type setSource struct {
	sets  []store.Set
	field func(store.Set) string
}

func (s setSource) String(i int) string { return normalize(s.field(s.sets[i])) }
func (s setSource) Len() int            { return len(s.sets) }

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Sets ranks sets by fuzzy match on title, then appends description-only
// matches below every title match. An empty query returns sets by title.
func Sets(sets []store.Set, query string, limit int) []Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query = normalize(query)
	if query == "" {
		sorted := append([]store.Set(nil), sets...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
		})
		out := make([]Result, 0, min(limit, len(sorted)))
		for _, s := range sorted {
			if len(out) == limit {
				break
			}
			out = append(out, Result{Set: s})
		}
		return out
	}

	seen := make(map[string]bool)
	var out []Result

	titles := fuzzy.FindFrom(query, setSource{sets, func(s store.Set) string { return s.Title }})
	for _, m := range titles {
		set := sets[m.Index]
		seen[set.ID] = true
		out = append(out, Result{Set: set, Score: m.Score})
	}

	descs := fuzzy.FindFrom(query, setSource{sets, func(s store.Set) string { return s.Description }})
	for _, m := range descs {
		set := sets[m.Index]
		if seen[set.ID] {
			continue
		}
		seen[set.ID] = true
		// Description hits rank below all title hits.
		out = append(out, Result{Set: set, Score: m.Score - 1_000_000})
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
