package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru"
	"github.com/lazypower/flashdeck/internal/auth"
	"github.com/lazypower/flashdeck/internal/engine"
	"github.com/lazypower/flashdeck/internal/store"
)

const maxBodyBytes = 1 << 20

// Options configures cookie sessions.
type Options struct {
	CookieName   string
	SessionTTL   time.Duration
	SecureCookie bool
	BcryptCost   int
	CacheSize    int
}

// DefaultOptions returns the options used when the caller has no config.
func DefaultOptions() Options {
	return Options{
		CookieName: "flashdeck_session",
		SessionTTL: 14 * 24 * time.Hour,
		BcryptCost: 10,
		CacheSize:  1024,
	}
}

// Server is the flashdeck HTTP API server.
type Server struct {
	db       *store.DB
	engine   *engine.Engine
	router   chi.Router
	opts     Options
	sessions *lru.Cache
	version  string
	started  time.Time
}

// New creates a new Server over the given database and engine.
func New(db *store.DB, eng *engine.Engine, version string, opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultOptions().CookieName
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultOptions().SessionTTL
	}
	cache, _ := lru.New(opts.CacheSize) // only errors on a non-positive size

	s := &Server{
		db:       db,
		engine:   eng,
		opts:     opts,
		sessions: cache,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/accounts", s.handleRegister)
		r.Post("/sessions", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Delete("/sessions", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.Delete("/accounts/me", s.handleDeleteAccount)

			r.Get("/sets", s.handleListSets)
			r.Post("/sets", s.handleCreateSet)
			r.Get("/sets/search", s.handleSearchSets)
			r.Get("/sets/{setID}", s.handleGetSet)
			r.Patch("/sets/{setID}", s.handleUpdateSet)
			r.Delete("/sets/{setID}", s.handleDeleteSet)
			r.Post("/sets/{setID}/cards", s.handleCreateCard)

			r.Patch("/cards/{cardID}", s.handleUpdateCard)
			r.Delete("/cards/{cardID}", s.handleDeleteCard)
			r.Post("/cards/{cardID}/study", s.handleStudy)

			r.Get("/streak", s.handleGetStreak)
			r.Post("/streak", s.handleRecordStreak)
			r.Get("/summary", s.handleSummary)
		})
	})

	r.Handle("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.PingContext(r.Context()); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

// --- session middleware ---

type ctxKey int

const userIDKey ctxKey = iota

type cachedSession struct {
	userID    int64
	expiresAt int64
}

// requireSession resolves the session cookie to a user id, consulting the
// LRU before the database.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.opts.CookieName)
		if err != nil || cookie.Value == "" {
			writeError(w, http.StatusUnauthorized, "login required")
			return
		}

		userID, ok := s.lookupSession(r.Context(), cookie.Value)
		if !ok {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) lookupSession(ctx context.Context, token string) (int64, bool) {
	now := time.Now().Unix()
	if v, ok := s.sessions.Get(token); ok {
		cs := v.(cachedSession)
		if now < cs.expiresAt {
			return cs.userID, true
		}
		s.sessions.Remove(token)
		return 0, false
	}

	sess, err := s.db.GetAuthSession(ctx, token)
	if err != nil {
		log.Printf("session lookup: %v", err)
		return 0, false
	}
	if sess == nil {
		return 0, false
	}
	s.sessions.Add(token, cachedSession{userID: sess.UserID, expiresAt: sess.ExpiresAt})
	return sess.UserID, true
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// fail maps a domain error to a status code. Unknown errors are logged
// and reported as 500 without their text.
func fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidInput), errors.Is(err, auth.ErrWeakInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
