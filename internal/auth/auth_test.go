package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash equals plaintext")
	}
	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("CheckPassword(correct): %v", err)
	}
	if err := CheckPassword(hash, "wrong horse"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("CheckPassword(wrong) = %v, want ErrBadCredentials", err)
	}
}

func TestCredentialsValidate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr bool
	}{
		{"ok", Credentials{"ada", "password1"}, false},
		{"trimmed", Credentials{"  ada  ", "password1"}, false},
		{"empty user", Credentials{"", "password1"}, true},
		{"bad chars", Credentials{"ada lovelace", "password1"}, true},
		{"long user", Credentials{strings.Repeat("a", 33), "password1"}, true},
		{"short password", Credentials{"ada", "short"}, true},
		{"long password", Credentials{"ada", strings.Repeat("p", 73)}, true},
	}

	for _, tt := range tests {
		c, err := tt.creds.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrWeakInput) {
			t.Errorf("%s: err = %v, want ErrWeakInput", tt.name, err)
		}
		if err == nil && c.Username != "ada" {
			t.Errorf("%s: username = %q, want ada", tt.name, c.Username)
		}
	}
}

func TestNewSessionTokenUnique(t *testing.T) {
	a, b := NewSessionToken(), NewSessionToken()
	if a == "" || a == b {
		t.Errorf("tokens not unique: %q %q", a, b)
	}
}
