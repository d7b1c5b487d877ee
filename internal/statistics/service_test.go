package statistics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/noteprogress/pkg/models"
)

// 2026-10-15 is a Thursday; its week started on Sunday 2026-10-11.
var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type memoryStore struct {
	events   []models.ReviewEvent
	cards    []models.FlashcardAggregate
	listErr  error
	writeErr error
	gets     int
}

func (m *memoryStore) ListReviewEvents(context.Context) ([]models.ReviewEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.ReviewEvent(nil), m.events...), nil
}

func (m *memoryStore) ListFlashcardAggregates(context.Context) ([]models.FlashcardAggregate, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.FlashcardAggregate(nil), m.cards...), nil
}

func (m *memoryStore) GetFlashcardAggregate(_ context.Context, id string) (*models.FlashcardAggregate, error) {
	m.gets++
	for i := range m.cards {
		if m.cards[i].ID == id {
			c := m.cards[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memoryStore) ReplaceReviewEvents(_ context.Context, events []models.ReviewEvent) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.events = append([]models.ReviewEvent(nil), events...)
	return nil
}

func (m *memoryStore) UpdateFlashcardAggregate(_ context.Context, card models.FlashcardAggregate) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.cards {
		if m.cards[i].ID == card.ID {
			m.cards[i] = card
			return nil
		}
	}
	m.cards = append(m.cards, card)
	return nil
}

var errBoom = errors.New("boom")

func newTestService(store *memoryStore) *Service {
	return NewService(store, zap.NewNop(),
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC))
}

// at returns a timestamp daysAgo days before now, at the given hour.
func at(daysAgo, hour int) int64 {
	d := now.AddDate(0, 0, -daysAgo)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC).UnixMilli()
}

func event(card string, ts int64, o models.Outcome, seconds float64) models.ReviewEvent {
	return models.ReviewEvent{FlashcardID: card, Timestamp: ts, Outcome: o, ResponseTime: seconds}
}

func ids(cards []models.DifficultCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.FlashcardID
	}
	return out
}
