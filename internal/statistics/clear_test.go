package statistics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/noteprogress/pkg/models"
)

func clearStore() *memoryStore {
	reviewed := func(id, deck string) models.FlashcardAggregate {
		return models.FlashcardAggregate{
			ID: id, Deck: deck, TotalReviews: 5, CorrectCount: 4, AverageTime: 8, LastReview: at(1, 9),
			Difficulty: 0.6, IntervalDays: 12, Ease: 2.1, DueAt: at(-12, 0), Lapses: 1, Reps: 5,
			State: models.StateReview,
		}
	}
	return &memoryStore{
		cards: []models.FlashcardAggregate{reviewed("a", "bio"), reviewed("b", "bio"), reviewed("c", "chem")},
		events: []models.ReviewEvent{
			event("a", at(40, 9), models.Good, 5),
			event("b", at(20, 9), models.Good, 5),
			event("c", at(35, 9), models.Again, 5),
			event("c", at(2, 9), models.Good, 5),
			event("a", at(1, 9), models.Hard, 5),
		},
	}
}

func assertReset(t *testing.T, c models.FlashcardAggregate) {
	t.Helper()
	assert.Zero(t, c.TotalReviews)
	assert.Zero(t, c.CorrectCount)
	assert.Zero(t, c.AverageTime)
	assert.Zero(t, c.LastReview)
	assert.Equal(t, models.DefaultDifficulty, c.Difficulty)
	assert.Zero(t, c.IntervalDays)
	assert.Equal(t, models.DefaultEase, c.Ease)
	assert.Equal(t, now.UnixMilli(), c.DueAt)
	assert.Zero(t, c.Lapses)
	assert.Zero(t, c.Reps)
	assert.Equal(t, models.StateNew, c.State)
}

func TestClearAllStats(t *testing.T) {
	t.Parallel()
	store := clearStore()

	res, err := newTestService(store).ClearAllStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ClearResult{RemovedEvents: 5, ResetCards: 3}, res)
	assert.Empty(t, store.events)
	for _, c := range store.cards {
		assertReset(t, c)
	}
}

func TestClearStatsBeforeDate(t *testing.T) {
	t.Parallel()
	store := clearStore()

	res, err := newTestService(store).ClearStatsBeforeDate(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, res.RemovedEvents)
	assert.Equal(t, 2, res.ResetCards)
	require.Len(t, store.events, 3)
	for _, e := range store.events {
		assert.GreaterOrEqual(t, e.Timestamp, now.AddDate(0, 0, -30).UnixMilli())
	}

	assertReset(t, store.cards[0]) // a lost its 40-day-old review
	assert.Equal(t, 5, store.cards[1].TotalReviews, "b kept all of its history")
	assertReset(t, store.cards[2])
}

func TestClearDeckStats(t *testing.T) {
	t.Parallel()
	store := clearStore()

	res, err := newTestService(store).ClearDeckStats(context.Background(), "bio")
	require.NoError(t, err)

	assert.Equal(t, ClearResult{RemovedEvents: 3, ResetCards: 2}, res)
	require.Len(t, store.events, 2)
	for _, e := range store.events {
		assert.Equal(t, "c", e.FlashcardID)
	}
	assertReset(t, store.cards[0])
	assertReset(t, store.cards[1])
	assert.Equal(t, models.StateReview, store.cards[2].State)
}

func TestClear_Failures(t *testing.T) {
	t.Parallel()

	t.Run("read", func(t *testing.T) {
		store := clearStore()
		store.listErr = errBoom
		_, err := newTestService(store).ClearAllStats(context.Background())
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("write", func(t *testing.T) {
		store := clearStore()
		store.writeErr = errBoom
		_, err := newTestService(store).ClearDeckStats(context.Background(), "chem")
		assert.ErrorIs(t, err, errBoom)
		assert.Len(t, store.events, 5)
	})
}
