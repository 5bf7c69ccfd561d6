package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the persistence layer: fetched calendar and timesheet records for
// the billing period, plus the classification rules remembered across runs.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS calendar (
		calendar  TEXT NOT NULL,
		title     TEXT NOT NULL,
		start     TEXT NOT NULL,
		end       TEXT NOT NULL,
		all_day   INTEGER NOT NULL DEFAULT 0,
		duration  INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_calendar_start ON calendar(start);

	CREATE TABLE IF NOT EXISTS timesheet (
		date        TEXT NOT NULL,
		hours       REAL NOT NULL,
		description TEXT NOT NULL,
		project     TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_timesheet_date ON timesheet(date);

	CREATE TABLE IF NOT EXISTS gcal_ignore (
		calendar TEXT NOT NULL,
		title    TEXT NOT NULL,
		flag     INTEGER NOT NULL,
		PRIMARY KEY (calendar, title)
	);

	CREATE TABLE IF NOT EXISTS gcal_xref (
		calendar  TEXT NOT NULL,
		title     TEXT NOT NULL,
		inv_title TEXT NOT NULL,
		PRIMARY KEY (calendar, title)
	);

	CREATE TABLE IF NOT EXISTS ppm_ignore (
		project     TEXT NOT NULL,
		description TEXT NOT NULL,
		flag        INTEGER NOT NULL,
		PRIMARY KEY (project, description)
	);

	CREATE TABLE IF NOT EXISTS ppm_xref (
		project     TEXT NOT NULL PRIMARY KEY,
		inv_project TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.invrec/invrec.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".invrec", "invrec.db"), nil
}
