package store

import (
	"context"
	"testing"
	"time"
)

const sessionTTL = 24 * time.Hour

func TestAuthSessionLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "ada", "hash")

	s, err := db.CreateAuthSession(ctx, "tok-1", u.ID, sessionTTL)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if s.ExpiresAt-s.CreatedAt != int64(sessionTTL/time.Second) {
		t.Errorf("lifetime = %ds, want %ds", s.ExpiresAt-s.CreatedAt, int64(sessionTTL/time.Second))
	}

	got, err := db.GetAuthSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if got == nil || got.UserID != u.ID {
		t.Fatalf("GetAuthSession = %+v, want user %d", got, u.ID)
	}

	if err := db.DeleteAuthSession(ctx, "tok-1"); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	if got, _ := db.GetAuthSession(ctx, "tok-1"); got != nil {
		t.Error("session still present after delete")
	}
	if err := db.DeleteAuthSession(ctx, "never-existed"); err != nil {
		t.Errorf("deleting unknown token: %v", err)
	}
}

func TestExpiredSessions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u, _ := db.CreateUser(ctx, "ada", "hash")

	// Insert an already-expired session directly.
	if _, err := db.Exec(`
		INSERT INTO auth_sessions (token, user_id, created_at, expires_at)
		VALUES ('old', ?, 100, 200)
	`, u.ID); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := db.CreateAuthSession(ctx, "fresh", u.ID, sessionTTL); err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	if got, _ := db.GetAuthSession(ctx, "old"); got != nil {
		t.Error("expired session returned")
	}

	n, err := db.PurgeExpiredSessions(ctx, time.Now())
	if err != nil {
		t.Fatalf("PurgeExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if got, _ := db.GetAuthSession(ctx, "fresh"); got == nil {
		t.Error("live session purged")
	}
}

func TestAuthSessionExpired(t *testing.T) {
	s := &AuthSession{ExpiresAt: 1000}
	if s.Expired(time.Unix(999, 0)) {
		t.Error("expired one second early")
	}
	if !s.Expired(time.Unix(1000, 0)) {
		t.Error("not expired at ExpiresAt")
	}
}
