// Package auth hashes account passwords and issues session tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordChars = 8
	maxPasswordBytes = 72 // bcrypt ignores anything past this
	maxUsernameChars = 32
)

var (
	// ErrBadCredentials is returned for an unknown user or wrong password.
	ErrBadCredentials = errors.New("invalid username or password")
	// ErrWeakInput is returned when a username or password fails the rules.
	ErrWeakInput = errors.New("invalid credentials")
)

// Credentials is the validated body of a register or login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate normalizes the username and checks both fields.
func (c Credentials) Validate() (Credentials, error) {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" || len(c.Username) > maxUsernameChars {
		return c, fmt.Errorf("%w: username must be 1-%d characters", ErrWeakInput, maxUsernameChars)
	}
	for _, r := range c.Username {
		if !validUsernameChar(r) {
			return c, fmt.Errorf("%w: username may contain letters, digits, '-', '_' and '.'", ErrWeakInput)
		}
	}
	if len(c.Password) < minPasswordChars {
		return c, fmt.Errorf("%w: password must be at least %d characters", ErrWeakInput, minPasswordChars)
	}
	if len(c.Password) > maxPasswordBytes {
		return c, fmt.Errorf("%w: password must be at most %d bytes", ErrWeakInput, maxPasswordBytes)
	}
	return c, nil
}

func validUsernameChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.'
}

// HashPassword returns the bcrypt hash of password at the given cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash with a candidate password.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadCredentials
	}
	return nil
}

// NewSessionToken returns a random session token.
func NewSessionToken() string {
	return uuid.NewString()
}
