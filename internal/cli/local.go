package cli

import (
	"context"
	"fmt"

	"github.com/lazypower/flashdeck/internal/config"
	"github.com/lazypower/flashdeck/internal/engine"
	"github.com/lazypower/flashdeck/internal/store"
)

// loadConfig reads --config, applies .env and FLASHDECK_* overrides, then
// the --db flag.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if cfg.Database.Path == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return cfg, fmt.Errorf("resolve db path: %w", err)
		}
		cfg.Database.Path = p
	}
	return cfg, nil
}

// newEngine builds an engine with the configured study rules.
func newEngine(db *store.DB, cfg config.Config) *engine.Engine {
	eng := engine.New(db)
	eng.MaxPoints = cfg.Study.MaxPoints
	eng.Policy = engine.StreakPolicy{
		Continuation: cfg.ContinuationWindow(),
		Expiry:       cfg.ExpiryWindow(),
	}
	return eng
}

// openLocal loads config and opens the database for commands that work
// without a running server.
func openLocal() (*store.DB, *engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, newEngine(db, cfg), nil
}

func lookupUser(ctx context.Context, db *store.DB, name string) (*store.User, error) {
	if name == "" {
		return nil, fmt.Errorf("--user is required")
	}
	u, err := db.GetUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("no user named %q", name)
	}
	return u, nil
}
