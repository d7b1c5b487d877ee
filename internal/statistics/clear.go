package statistics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/noteprogress/pkg/models"
)

// ClearResult reports what a clear operation removed.
type ClearResult struct {
	RemovedEvents int
	ResetCards    int
}

// ClearAllStats wipes the event log and resets every flashcard.
func (s *Service) ClearAllStats(ctx context.Context) (ClearResult, error) {
	return s.clear(ctx, "all", func(models.ReviewEvent, map[string]*models.FlashcardAggregate) bool {
		return false
	}, func(*models.FlashcardAggregate) bool {
		return true
	})
}

// ClearStatsBeforeDate drops events older than days days and resets the
// cards that lost history. days < 1 falls back to DefaultDays.
func (s *Service) ClearStatsBeforeDate(ctx context.Context, days int) (ClearResult, error) {
	if days < 1 {
		days = DefaultDays
	}
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
	return s.clear(ctx, fmt.Sprintf("before %d days", days), func(e models.ReviewEvent, _ map[string]*models.FlashcardAggregate) bool {
		return e.Timestamp >= cutoff
	}, nil)
}

// ClearDeckStats drops the events of one deck's cards and resets those cards.
func (s *Service) ClearDeckStats(ctx context.Context, deck string) (ClearResult, error) {
	return s.clear(ctx, "deck "+deck, func(e models.ReviewEvent, byID map[string]*models.FlashcardAggregate) bool {
		c, ok := byID[e.FlashcardID]
		return !ok || c.Deck != deck
	}, func(c *models.FlashcardAggregate) bool {
		return c.Deck == deck
	})
}

// clear keeps the events for which keep returns true and resets every card
// that lost an event or that reset selects. Source failures are returned.
func (s *Service) clear(
	ctx context.Context,
	scope string,
	keep func(models.ReviewEvent, map[string]*models.FlashcardAggregate) bool,
	reset func(*models.FlashcardAggregate) bool,
) (ClearResult, error) {
	events, err := s.store.ListReviewEvents(ctx)
	if err != nil {
		return ClearResult{}, fmt.Errorf("failed to list review events: %w", err)
	}
	cards, err := s.store.ListFlashcardAggregates(ctx)
	if err != nil {
		return ClearResult{}, fmt.Errorf("failed to list flashcards: %w", err)
	}
	byID := make(map[string]*models.FlashcardAggregate, len(cards))
	for i := range cards {
		byID[cards[i].ID] = &cards[i]
	}

	kept := make([]models.ReviewEvent, 0, len(events))
	affected := make(map[string]bool)
	for _, e := range events {
		if keep(e, byID) {
			kept = append(kept, e)
			continue
		}
		affected[e.FlashcardID] = true
	}
	if reset != nil {
		for i := range cards {
			if reset(&cards[i]) {
				affected[cards[i].ID] = true
			}
		}
	}

	if err := s.store.ReplaceReviewEvents(ctx, kept); err != nil {
		s.log.Error("failed to replace review events", zap.String("scope", scope), zap.Error(err))
		return ClearResult{}, fmt.Errorf("failed to replace review events: %w", err)
	}

	result := ClearResult{RemovedEvents: len(events) - len(kept)}
	now := s.now().UnixMilli()
	for i := range cards {
		if !affected[cards[i].ID] {
			continue
		}
		cards[i].ResetStats(now)
		if err := s.store.UpdateFlashcardAggregate(ctx, cards[i]); err != nil {
			s.log.Error("failed to reset flashcard", zap.String("flashcard_id", cards[i].ID), zap.Error(err))
			return result, fmt.Errorf("failed to reset flashcard %s: %w", cards[i].ID, err)
		}
		result.ResetCards++
	}

	s.log.Info("statistics cleared",
		zap.String("scope", scope),
		zap.Int("removed_events", result.RemovedEvents),
		zap.Int("reset_cards", result.ResetCards))
	return result, nil
}
