package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// progressionRowID is the id of the single progression document row.
const progressionRowID = 1

// ProgressionRepository stores the progression document of the installation
type ProgressionRepository struct {
	db *sqlx.DB
}

// NewProgressionRepository creates a new repository instance
func NewProgressionRepository(db *sqlx.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// Load returns the stored document, or nil if none was saved yet
func (r *ProgressionRepository) Load(ctx context.Context) ([]byte, error) {
	var doc string
	err := r.db.GetContext(ctx, &doc, r.db.Rebind(`SELECT document FROM progression_state WHERE id = ?`), progressionRowID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progression state: %w", err)
	}
	return []byte(doc), nil
}

// Save replaces the stored document
func (r *ProgressionRepository) Save(ctx context.Context, doc []byte) error {
	query := r.db.Rebind(`
		INSERT INTO progression_state (id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP
	`)
	if _, err := r.db.ExecContext(ctx, query, progressionRowID, string(doc)); err != nil {
		return fmt.Errorf("failed to save progression state: %w", err)
	}
	return nil
}
