package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// CardState is the scheduling stage of a flashcard.
type CardState string

const (
	StateNew        CardState = "new"
	StateLearning   CardState = "learning"
	StateReview     CardState = "review"
	StateRelearning CardState = "relearning"
)

// ParseCardState validates s as a CardState.
func ParseCardState(s string) (CardState, error) {
	switch st := CardState(strings.ToLower(strings.TrimSpace(s))); st {
	case StateNew, StateLearning, StateReview, StateRelearning:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCardState, s)
}

// Tags is a list of tags stored as a JSON array in a single column.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported tags column type %T", src)
	}
	if len(raw) == 0 {
		*t = nil
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	*t = out
	return nil
}

// Default values a flashcard returns to when its statistics are cleared.
const (
	DefaultDifficulty = 0.3
	DefaultEase       = 2.5
)

// FlashcardAggregate holds the per-card review totals and scheduling state
// maintained by the flashcard manager.
type FlashcardAggregate struct {
	ID           string    `json:"id" db:"id"`
	Deck         string    `json:"deck" db:"deck"`
	Tags         Tags      `json:"tags" db:"tags"`
	TotalReviews int       `json:"totalReviews" db:"total_reviews"`
	CorrectCount float64   `json:"correctCount" db:"correct_count"`
	AverageTime  float64   `json:"averageTime" db:"average_time"` // seconds
	LastReview   int64     `json:"lastReview" db:"last_review"`   // epoch milliseconds
	Difficulty   float64   `json:"difficulty" db:"difficulty"`    // 0..1
	IntervalDays float64   `json:"interval" db:"interval_days"`
	Ease         float64   `json:"ease" db:"ease"`
	DueAt        int64     `json:"due" db:"due_at"` // epoch milliseconds
	Lapses       int       `json:"lapses" db:"lapses"`
	Reps         int       `json:"reps" db:"reps"`
	State        CardState `json:"state" db:"state"`
}

// ResetStats returns the card to the fresh statistics and scheduling state,
// due at nowMillis.
func (c *FlashcardAggregate) ResetStats(nowMillis int64) {
	c.TotalReviews = 0
	c.CorrectCount = 0
	c.AverageTime = 0
	c.LastReview = 0
	c.Difficulty = DefaultDifficulty
	c.IntervalDays = 0
	c.Ease = DefaultEase
	c.DueAt = nowMillis
	c.Lapses = 0
	c.Reps = 0
	c.State = StateNew
}
