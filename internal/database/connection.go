package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/example/noteprogress/internal/config"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("database: not found")

// Connect opens the configured database and creates the schema if needed.
func Connect(cfg config.DBConfig) (*sqlx.DB, error) {
	switch cfg.Type {
	case "postgres":
		db, err := sqlx.Connect("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := initializeSchema(db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case "sqlite", "":
		return ConnectSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}
}

// ConnectSQLite opens a sqlite database at path. ":memory:" is accepted.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers; a single connection also keeps
	// one shared ":memory:" database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"flashcards", `
			CREATE TABLE IF NOT EXISTS flashcards (
				id TEXT PRIMARY KEY,
				deck TEXT NOT NULL DEFAULT '',
				tags TEXT NOT NULL DEFAULT '[]',
				total_reviews INTEGER NOT NULL DEFAULT 0,
				correct_count REAL NOT NULL DEFAULT 0,
				average_time REAL NOT NULL DEFAULT 0,
				last_review BIGINT NOT NULL DEFAULT 0,
				difficulty REAL NOT NULL DEFAULT 0.3,
				interval_days REAL NOT NULL DEFAULT 0,
				ease REAL NOT NULL DEFAULT 2.5,
				due_at BIGINT NOT NULL DEFAULT 0,
				lapses INTEGER NOT NULL DEFAULT 0,
				reps INTEGER NOT NULL DEFAULT 0,
				state TEXT NOT NULL DEFAULT 'new'
			)`},
		{"review_events", `
			CREATE TABLE IF NOT EXISTS review_events (
				id ` + idColumn + `,
				flashcard_id TEXT NOT NULL,
				reviewed_at BIGINT NOT NULL,
				outcome TEXT NOT NULL,
				response_time REAL NOT NULL DEFAULT 0
			)`},
		{"progression_state", `
			CREATE TABLE IF NOT EXISTS progression_state (
				id INTEGER PRIMARY KEY,
				document TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"reports", `
			CREATE TABLE IF NOT EXISTS reports (
				id TEXT PRIMARY KEY,
				days INTEGER NOT NULL,
				body TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.table, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_review_events_card ON review_events (flashcard_id)`,
		// One row per review; re-importing the same history must not duplicate it.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_review_events_unique ON review_events (flashcard_id, reviewed_at, outcome)`,
	}
	for _, ddl := range indexes {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create review_events index: %w", err)
		}
	}
	return nil
}
