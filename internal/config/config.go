package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all flashdeck configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Study    StudyConfig    `toml:"study"`
	Auth     AuthConfig     `toml:"auth"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// StudyConfig tunes the progress engine. The streak windows are one pair:
// expiry may not be shorter than continuation.
type StudyConfig struct {
	MaxPoints         int `toml:"max_points"`
	ContinuationHours int `toml:"continuation_hours"`
	ExpiryHours       int `toml:"expiry_hours"`
}

type AuthConfig struct {
	CookieName       string `toml:"cookie_name"`
	SessionTTLHours  int    `toml:"session_ttl_hours"`
	SecureCookie     bool   `toml:"secure_cookie"`
	BcryptCost       int    `toml:"bcrypt_cost"`
	SessionCacheSize int    `toml:"session_cache_size"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Study: StudyConfig{
			MaxPoints:         10,
			ContinuationHours: 36,
			ExpiryHours:       36,
		},
		Auth: AuthConfig{
			CookieName:       "flashdeck_session",
			SessionTTLHours:  24 * 14,
			BcryptCost:       10,
			SessionCacheSize: 1024,
		},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv loads a .env file from the working directory if present, then
// applies FLASHDECK_* overrides.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v := os.Getenv("FLASHDECK_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("FLASHDECK_BIND"); v != "" {
		c.Server.Bind = v
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"FLASHDECK_PORT", &c.Server.Port},
		{"FLASHDECK_MAX_POINTS", &c.Study.MaxPoints},
		{"FLASHDECK_CONTINUATION_HOURS", &c.Study.ContinuationHours},
		{"FLASHDECK_EXPIRY_HOURS", &c.Study.ExpiryHours},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	if v := os.Getenv("FLASHDECK_SECURE_COOKIE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FLASHDECK_SECURE_COOKIE: %w", err)
		}
		c.Auth.SecureCookie = b
	}
	return c.Validate()
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Study.MaxPoints < 1 || c.Study.MaxPoints > 30 {
		return fmt.Errorf("study.max_points must be 1-30, got %d", c.Study.MaxPoints)
	}
	if c.Study.ContinuationHours <= 0 {
		return fmt.Errorf("study.continuation_hours must be positive")
	}
	if c.Study.ExpiryHours < c.Study.ContinuationHours {
		return fmt.Errorf("study.expiry_hours (%d) must be >= continuation_hours (%d)",
			c.Study.ExpiryHours, c.Study.ContinuationHours)
	}
	if c.Auth.SessionTTLHours <= 0 {
		return fmt.Errorf("auth.session_ttl_hours must be positive")
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// ContinuationWindow returns the streak continuation window.
func (c *Config) ContinuationWindow() time.Duration {
	return time.Duration(c.Study.ContinuationHours) * time.Hour
}

// ExpiryWindow returns the streak expiry window.
func (c *Config) ExpiryWindow() time.Duration {
	return time.Duration(c.Study.ExpiryHours) * time.Hour
}

// SessionTTL returns how long a login session lives.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionTTLHours) * time.Hour
}
