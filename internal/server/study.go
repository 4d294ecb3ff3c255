package server

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/lazypower/flashdeck/internal/engine"
	"golang.org/x/sync/errgroup"
)

// maxSummarySets caps the sets listed on the dashboard.
const maxSummarySets = 15

type streakResponse struct {
	Days   int                `json:"days"`
	Active bool               `json:"active"`
	Streak engine.StreakState `json:"streak"`
}

type studyResponse struct {
	CardID         string         `json:"card_id"`
	PreviousPoints int            `json:"previous_points"`
	Points         int            `json:"points"`
	LastReviewed   int64          `json:"last_reviewed"`
	Streak         streakResponse `json:"streak"`
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	var in engine.ReviewInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		fail(w, err)
		return
	}

	res, err := s.engine.Review(r.Context(), userID(r), chi.URLParam(r, "cardID"), *in.Correct)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, studyResponse{
		CardID:         res.CardID,
		PreviousPoints: res.PreviousPoints,
		Points:         res.Points,
		LastReviewed:   res.LastReviewed,
		Streak: streakResponse{
			Days:   res.StreakDays,
			Active: res.StreakDays > 0,
			Streak: res.Streak,
		},
	})
}

func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	days, state, err := s.engine.Streak(r.Context(), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streakResponse{Days: days, Active: days > 0, Streak: state})
}

// handleRecordStreak records a study event without a card review, for
// clients that study offline and report once.
func (s *Server) handleRecordStreak(w http.ResponseWriter, r *http.Request) {
	if _, err := s.engine.RecordStudy(r.Context(), userID(r)); err != nil {
		fail(w, err)
		return
	}
	s.handleGetStreak(w, r)
}

type setSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CardCount  int     `json:"card_count"`
	DueCount   int     `json:"due_count"`
	Unstudied  int     `json:"unstudied"`
	UpdatedAt  int64   `json:"updated_at"`
	MeanPoints float64 `json:"mean_points"`
}

type summaryResponse struct {
	Streak   streakResponse `json:"streak"`
	DueTotal int            `json:"due_total"`
	Sets     []setSummary   `json:"sets"`
}

// handleSummary builds the dashboard: the streak plus the reader's own
// sets ranked by how many cards are due, most due first.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := userID(r)

	days, state, err := s.engine.Streak(ctx, uid)
	if err != nil {
		fail(w, err)
		return
	}
	sets, err := s.db.ListSetsByOwner(ctx, uid)
	if err != nil {
		fail(w, err)
		return
	}

	summaries := make([]setSummary, len(sets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, set := range sets {
		g.Go(func() error {
			statuses, err := s.engine.SetStatus(gctx, uid, set.ID, 0)
			if err != nil {
				return err
			}
			sum := setSummary{
				ID:        set.ID,
				Title:     set.Title,
				CardCount: len(statuses),
				UpdatedAt: set.UpdatedAt,
			}
			var points int
			for _, st := range statuses {
				if st.Due {
					sum.DueCount++
				}
				if !st.Studied {
					sum.Unstudied++
				}
				points += st.Points
			}
			if len(statuses) > 0 {
				sum.MeanPoints = float64(points) / float64(len(statuses))
			}
			summaries[i] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fail(w, err)
		return
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].DueCount != summaries[j].DueCount {
			return summaries[i].DueCount > summaries[j].DueCount
		}
		return summaries[i].UpdatedAt > summaries[j].UpdatedAt
	})

	resp := summaryResponse{
		Streak: streakResponse{Days: days, Active: days > 0, Streak: state},
		Sets:   summaries,
	}
	for _, sum := range summaries {
		resp.DueTotal += sum.DueCount
	}
	if len(resp.Sets) > maxSummarySets {
		resp.Sets = resp.Sets[:maxSummarySets]
	}
	writeJSON(w, http.StatusOK, resp)
}
