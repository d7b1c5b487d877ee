package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/noteprogress/pkg/models"
)

const flashcardColumns = `
	id, deck, tags, total_reviews, correct_count, average_time, last_review,
	difficulty, interval_days, ease, due_at, lapses, reps, state
`

// FlashcardRepository handles database operations for per-card aggregates
type FlashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new repository instance
func NewFlashcardRepository(db *sqlx.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// ListFlashcardAggregates returns every flashcard aggregate
func (r *FlashcardRepository) ListFlashcardAggregates(ctx context.Context) ([]models.FlashcardAggregate, error) {
	query := `SELECT ` + flashcardColumns + ` FROM flashcards ORDER BY id ASC`
	var cards []models.FlashcardAggregate
	if err := r.db.SelectContext(ctx, &cards, query); err != nil {
		return nil, fmt.Errorf("failed to list flashcards: %w", err)
	}
	return cards, nil
}

// GetFlashcardAggregate returns the aggregate for id, or nil if there is none
func (r *FlashcardRepository) GetFlashcardAggregate(ctx context.Context, id string) (*models.FlashcardAggregate, error) {
	query := r.db.Rebind(`SELECT ` + flashcardColumns + ` FROM flashcards WHERE id = ?`)
	var card models.FlashcardAggregate
	err := r.db.GetContext(ctx, &card, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard %s: %w", id, err)
	}
	return &card, nil
}

// UpdateFlashcardAggregate inserts the aggregate or overwrites the stored one
func (r *FlashcardRepository) UpdateFlashcardAggregate(ctx context.Context, card models.FlashcardAggregate) error {
	if card.ID == "" {
		return fmt.Errorf("flashcard id cannot be empty")
	}
	if card.State == "" {
		card.State = models.StateNew
	}

	query := `
		INSERT INTO flashcards (` + flashcardColumns + `) VALUES (
			:id, :deck, :tags, :total_reviews, :correct_count, :average_time, :last_review,
			:difficulty, :interval_days, :ease, :due_at, :lapses, :reps, :state
		)
		ON CONFLICT (id) DO UPDATE SET
			deck = excluded.deck,
			tags = excluded.tags,
			total_reviews = excluded.total_reviews,
			correct_count = excluded.correct_count,
			average_time = excluded.average_time,
			last_review = excluded.last_review,
			difficulty = excluded.difficulty,
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			due_at = excluded.due_at,
			lapses = excluded.lapses,
			reps = excluded.reps,
			state = excluded.state
	`
	if _, err := r.db.NamedExecContext(ctx, query, card); err != nil {
		return fmt.Errorf("failed to update flashcard %s: %w", card.ID, err)
	}
	return nil
}
