package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/lazypower/flashdeck/internal/auth"
	"github.com/lazypower/flashdeck/internal/engine"
	"github.com/lazypower/flashdeck/internal/store"
)

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type meResponse struct {
	accountResponse
	CreatedAt  int64              `json:"created_at"`
	StreakDays int                `json:"streak_days"`
	Streak     engine.StreakState `json:"streak"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	creds, err := in.Validate()
	if err != nil {
		fail(w, err)
		return
	}

	hash, err := auth.HashPassword(creds.Password, s.opts.BcryptCost)
	if err != nil {
		fail(w, err)
		return
	}
	user, err := s.db.CreateUser(r.Context(), creds.Username, hash)
	if err != nil {
		fail(w, err)
		return
	}
	if err := s.startSession(w, r, user.ID); err != nil {
		fail(w, err)
		return
	}

	log.Printf("accounts: registered %s (id %d)", user.Username, user.ID)
	writeJSON(w, http.StatusCreated, accountResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}
	name := strings.TrimSpace(in.Username)
	if name == "" || in.Password == "" {
		fail(w, auth.ErrBadCredentials)
		return
	}

	user, err := s.db.GetUserByName(r.Context(), name)
	if err != nil {
		fail(w, err)
		return
	}
	if user == nil {
		fail(w, auth.ErrBadCredentials)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, in.Password); err != nil {
		fail(w, err)
		return
	}
	if err := s.startSession(w, r, user.ID); err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	token := auth.NewSessionToken()
	sess, err := s.db.CreateAuthSession(r.Context(), token, userID, s.opts.SessionTTL)
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.sessions.Add(token, cachedSession{userID: userID, expiresAt: sess.ExpiresAt})
	s.setSessionCookie(w, token)
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.opts.CookieName); err == nil {
		s.sessions.Remove(cookie.Value)
		if err := s.db.DeleteAuthSession(r.Context(), cookie.Value); err != nil {
			fail(w, err)
			return
		}
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUser(r.Context(), userID(r))
	if err != nil {
		fail(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "account no longer exists")
		return
	}
	days, streak, err := s.engine.Streak(r.Context(), user.ID)
	if err != nil {
		fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		accountResponse: accountResponse{ID: user.ID, Username: user.Username},
		CreatedAt:       user.CreatedAt,
		StreakDays:      days,
		Streak:          streak,
	})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := userID(r)
	if err := s.db.DeleteUser(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	// Other devices may hold cached tokens for this user.
	s.sessions.Purge()
	s.clearSessionCookie(w)

	log.Printf("accounts: deleted user %d", id)
	w.WriteHeader(http.StatusNoContent)
}

// ownedSet loads a set and checks that the requester owns it. It writes
// the error response itself and returns nil when the caller should stop.
func (s *Server) ownedSet(w http.ResponseWriter, r *http.Request, setID string) *store.Set {
	set, err := s.db.GetSet(r.Context(), setID)
	if err != nil {
		fail(w, err)
		return nil
	}
	if set == nil {
		writeError(w, http.StatusNotFound, "set not found")
		return nil
	}
	if set.OwnerID != userID(r) {
		writeError(w, http.StatusForbidden, "only the owner can change this set")
		return nil
	}
	return set
}
