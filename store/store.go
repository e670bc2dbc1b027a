// Package store persists captured feedback profiles in SQLite, keyed by
// function name. Profiles are stored as canonical CBOR blobs; the database
// holds the latest snapshot per function.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/sybil/feedback/snapshot"
)

// ErrProfileNotFound indicates no profile exists for the requested function.
var ErrProfileNotFound = errors.New("profile not found")

// Store is a SQLite-backed profile archive. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (creating if needed) the profile database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Busy timeout for concurrent access.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS profiles (
		function    TEXT PRIMARY KEY,
		captured_at INTEGER NOT NULL,
		data        BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, dbPath: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes the profile, replacing any earlier snapshot for the same
// function.
func (s *Store) Save(p *snapshot.FunctionProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := snapshot.MarshalProfile(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO profiles (function, captured_at, data) VALUES (?, ?, ?)",
		p.Function, p.CapturedAt, data,
	)
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// Load retrieves the stored profile for a function, or ErrProfileNotFound.
func (s *Store) Load(function string) (*snapshot.FunctionProfile, error) {
	var data []byte
	err := s.db.QueryRow(
		"SELECT data FROM profiles WHERE function = ?", function,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return snapshot.UnmarshalProfile(data)
}

// Delete removes a function's profile. Deleting a missing profile is not an
// error.
func (s *Store) Delete(function string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM profiles WHERE function = ?", function); err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	return nil
}

// List returns the names of all profiled functions in sorted order.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query("SELECT function FROM profiles ORDER BY function")
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var functions []string
	for rows.Next() {
		var fn string
		if err := rows.Scan(&fn); err != nil {
			return nil, fmt.Errorf("scanning function name: %w", err)
		}
		functions = append(functions, fn)
	}
	return functions, rows.Err()
}
