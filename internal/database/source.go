package database

import "github.com/jmoiron/sqlx"

// Source exposes the review log and the flashcard aggregates of one database
// as a single event source.
type Source struct {
	*ReviewRepository
	*FlashcardRepository
}

// NewSource creates a Source backed by db
func NewSource(db *sqlx.DB) *Source {
	return &Source{
		ReviewRepository:    NewReviewRepository(db),
		FlashcardRepository: NewFlashcardRepository(db),
	}
}
