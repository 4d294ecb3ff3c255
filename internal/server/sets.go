package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/flashdeck/internal/engine"
	"github.com/lazypower/flashdeck/internal/search"
	"github.com/lazypower/flashdeck/internal/store"
)

// cardView is a card as one reader sees it.
type cardView struct {
	ID           string  `json:"id"`
	Front        string  `json:"front"`
	Back         string  `json:"back"`
	Position     int     `json:"position"`
	Studied      bool    `json:"studied"`
	Points       int     `json:"points"`
	StoredPoints int     `json:"stored_points"`
	LastReviewed *int64  `json:"last_reviewed"`
	DaysSince    float64 `json:"days_since"`
	Due          bool    `json:"due"`
}

func newCardView(st engine.CardStatus) cardView {
	return cardView{
		ID:           st.Card.ID,
		Front:        st.Card.Front,
		Back:         st.Card.Back,
		Position:     st.Card.Position,
		Studied:      st.Studied,
		Points:       st.Points,
		StoredPoints: st.StoredPoints,
		LastReviewed: st.LastReviewed,
		DaysSince:    st.DaysSince,
		Due:          st.Due,
	}
}

type setView struct {
	Set        store.Set  `json:"set"`
	Owned      bool       `json:"owned"`
	DueFilter  bool       `json:"due_filter"`
	OffsetDays float64    `json:"offset_days"`
	DueCount   int        `json:"due_count"`
	Cards      []cardView `json:"cards"`
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.db.ListSetsByOwner(r.Context(), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	if sets == nil {
		sets = []store.Set{}
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	var in engine.SetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in, err := in.Validate()
	if err != nil {
		fail(w, err)
		return
	}

	set := &store.Set{OwnerID: userID(r), Title: in.Title, Description: in.Description}
	if err := s.db.CreateSet(r.Context(), set); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleSearchSets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := search.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sets, err := s.db.ListAllSets(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	results := search.Sets(sets, q, limit)
	out := make([]store.Set, len(results))
	for i, res := range results {
		out[i] = res.Set
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetSet returns a set with the reader's progress on every card.
// ?due=true keeps only cards due now; ?due=<days> looks that many days
// ahead.
func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	setID := chi.URLParam(r, "setID")
	offset, filter, err := engine.ParsePlanningOffset(r.URL.Query().Get("due"))
	if err != nil {
		fail(w, err)
		return
	}

	set, err := s.db.GetSet(r.Context(), setID)
	if err != nil {
		fail(w, err)
		return
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "set not found")
		return
	}

	statuses, err := s.engine.SetStatus(r.Context(), userID(r), setID, offset)
	if err != nil {
		fail(w, err)
		return
	}

	view := setView{
		Set:        *set,
		Owned:      set.OwnerID == userID(r),
		DueFilter:  filter,
		OffsetDays: offset,
		Cards:      make([]cardView, 0, len(statuses)),
	}
	for _, st := range statuses {
		if st.Due {
			view.DueCount++
		}
		if filter && !st.Due {
			continue
		}
		view.Cards = append(view.Cards, newCardView(st))
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	set := s.ownedSet(w, r, chi.URLParam(r, "setID"))
	if set == nil {
		return
	}
	var in engine.SetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in, err := in.Validate()
	if err != nil {
		fail(w, err)
		return
	}

	set.Title = in.Title
	set.Description = in.Description
	if err := s.db.UpdateSet(r.Context(), set); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	set := s.ownedSet(w, r, chi.URLParam(r, "setID"))
	if set == nil {
		return
	}
	if err := s.db.DeleteSet(r.Context(), set.ID); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	set := s.ownedSet(w, r, chi.URLParam(r, "setID"))
	if set == nil {
		return
	}
	var in engine.CardInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in, err := in.Validate()
	if err != nil {
		fail(w, err)
		return
	}

	card := &store.Card{SetID: set.ID, Front: in.Front, Back: in.Back}
	if err := s.db.CreateCard(r.Context(), card); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// ownedCard loads a card and checks the requester owns its set.
func (s *Server) ownedCard(w http.ResponseWriter, r *http.Request) *store.Card {
	card, err := s.db.GetCard(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		fail(w, err)
		return nil
	}
	if card == nil {
		writeError(w, http.StatusNotFound, "card not found")
		return nil
	}
	if s.ownedSet(w, r, card.SetID) == nil {
		return nil
	}
	return card
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	card := s.ownedCard(w, r)
	if card == nil {
		return
	}
	var in engine.CardInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in, err := in.Validate()
	if err != nil {
		fail(w, err)
		return
	}

	card.Front = in.Front
	card.Back = in.Back
	if err := s.db.UpdateCard(r.Context(), card); err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	card := s.ownedCard(w, r)
	if card == nil {
		return
	}
	if err := s.db.DeleteCard(r.Context(), card); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
