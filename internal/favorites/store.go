// Package favorites persists the user's favorite station IDs in a small
// string-keyed store and exposes them as an ordered set.
package favorites

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	_ "modernc.org/sqlite"
)

// ErrNotFound reports a missing key.
var ErrNotFound = errors.New("favorites: key not found")

// Store is an opaque persistent string-keyed store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// PreferencesStore keeps values in the fyne application preferences.
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore wraps the preferences of a fyne app.
func NewPreferencesStore(prefs fyne.Preferences) *PreferencesStore {
	return &PreferencesStore{prefs: prefs}
}

// Get returns the stored value or ErrNotFound when it is empty or absent.
func (s *PreferencesStore) Get(key string) (string, error) {
	if s.prefs == nil {
		return "", ErrNotFound
	}
	v := s.prefs.String(key)
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// Set writes value under key.
func (s *PreferencesStore) Set(key, value string) error {
	if s.prefs == nil {
		return errors.New("favorites: preferences unavailable")
	}
	s.prefs.SetString(key, value)
	return nil
}

// SQLiteStore keeps values in a single key/value table of a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// OpenSQLite opens or creates favorites.db inside dir.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create favorites dir: %w", err)
	}
	path := filepath.Join(dir, "favorites.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open favorites database: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure favorites database: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Path reports the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Get returns the value for key or ErrNotFound.
func (s *SQLiteStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// Set upserts value under key.
func (s *SQLiteStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
