package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/noteprogress/pkg/models"
)

const insertReviewEvent = `
	INSERT INTO review_events (flashcard_id, reviewed_at, outcome, response_time)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (flashcard_id, reviewed_at, outcome) DO NOTHING
`

// ReviewRepository handles database operations for the review event log
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new repository instance
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListReviewEvents returns the whole event log in append order
func (r *ReviewRepository) ListReviewEvents(ctx context.Context) ([]models.ReviewEvent, error) {
	query := `
		SELECT id, flashcard_id, reviewed_at, outcome, response_time
		FROM review_events
		ORDER BY reviewed_at ASC, id ASC
	`
	var events []models.ReviewEvent
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("failed to list review events: %w", err)
	}
	return events, nil
}

// Append adds events to the end of the log. An event already in the log
// (same card, timestamp and outcome) is skipped.
func (r *ReviewRepository) Append(ctx context.Context, events ...models.ReviewEvent) error {
	_, err := r.AppendNew(ctx, events...)
	return err
}

// AppendNew is Append that reports how many events were actually stored.
func (r *ReviewRepository) AppendNew(ctx context.Context, events ...models.ReviewEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := insertEvents(ctx, tx, events)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit review events: %w", err)
	}
	return inserted, nil
}

// ReplaceReviewEvents swaps the whole log for events in one transaction
func (r *ReviewRepository) ReplaceReviewEvents(ctx context.Context, events []models.ReviewEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM review_events"); err != nil {
		return fmt.Errorf("failed to clear review events: %w", err)
	}

	if _, err := insertEvents(ctx, tx, events); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review events: %w", err)
	}
	return nil
}

// insertEvents returns the number of rows written; duplicates count as zero.
func insertEvents(ctx context.Context, tx *sqlx.Tx, events []models.ReviewEvent) (int, error) {
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertReviewEvent))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range events {
		if !e.Outcome.IsValid() {
			return 0, fmt.Errorf("event for card %s: %w", e.FlashcardID, models.ErrInvalidOutcome)
		}
		res, err := stmt.ExecContext(ctx, e.FlashcardID, e.Timestamp, e.Outcome, e.ResponseTime)
		if err != nil {
			return 0, fmt.Errorf("failed to insert review event: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count inserted review events: %w", err)
		}
		inserted += int(n)
	}
	return inserted, nil
}
