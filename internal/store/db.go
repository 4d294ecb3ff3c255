package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lazypower/flashdeck/internal/ident"
	_ "modernc.org/sqlite"
)

var (
	// ErrConflict is returned when a compare-and-swap lost to a concurrent write.
	ErrConflict = errors.New("concurrent update")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrNoUser is returned by writes that need an existing user row.
	ErrNoUser = errors.New("no such user")
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps a sqlx connection to the flashdeck SQLite database.
type DB struct {
	*sqlx.DB
	Path string
	IDs  *ident.Generator
}

// DefaultDBPath returns the default database path: ~/.flashdeck/flashdeck.db
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".flashdeck", "flashdeck.db"), nil
}

// Open opens (or creates) the SQLite database at the given path,
// configures pragmas, and runs migrations.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	sqlDB, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return setup(sqlDB, path)
}

// OpenMemory opens an in-memory SQLite database for testing.
func OpenMemory() (*DB, error) {
	sqlDB, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return setup(sqlDB, ":memory:")
}

func setup(sqlDB *sqlx.DB, path string) (*DB, error) {
	// One connection: pragmas are per-connection, an in-memory database
	// exists only on the connection that created it, and SQLite has a
	// single writer anyway.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{DB: sqlDB, Path: path, IDs: ident.NewGenerator(time.Now)}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := db.seedIDs(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// seedIDs moves the id generator past the newest stored set or card id,
// so a restarted process never reissues one.
func (db *DB) seedIDs() error {
	var latest string
	err := db.Get(&latest, `
		SELECT id FROM (SELECT id FROM sets UNION ALL SELECT id FROM cards)
		ORDER BY length(substr(id, 1, instr(id, '-') - 1)) DESC,
		         substr(id, 1, instr(id, '-') - 1) DESC,
		         length(id) DESC, id DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed ids: %w", err)
	}
	if s, ok := ident.Parse(latest); ok {
		db.IDs.Observe(s)
	}
	return nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

// maxIDAttempts bounds inserts retried after a generated id collided with
// one issued by another process sharing the database file.
const maxIDAttempts = 3

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func unixNow() int64 {
	return time.Now().Unix()
}
