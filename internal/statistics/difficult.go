package statistics

import (
	"context"
	"sort"

	"github.com/example/noteprogress/pkg/models"
)

// Thresholds of the difficult-card heuristic.
const (
	difficultyThreshold = 0.7
	minPatternEvents    = 3
	slowAnswerSeconds   = 60
	shortIntervalDays   = 3
	manyLapses          = 2
	recentWindow        = 5
	recentAgainMin      = 3
)

// GetDifficultCards returns the cards with at least one failed review or a
// difficulty of 0.7 and above, ranked by error count, difficulty and most
// recent error. limit < 1 falls back to DefaultLimit.
func (s *Service) GetDifficultCards(ctx context.Context, limit int) []models.DifficultCard {
	return s.difficultCards(s.load(ctx), limit)
}

func (s *Service) difficultCards(d *dataset, limit int) []models.DifficultCard {
	if limit < 1 {
		limit = DefaultLimit
	}

	history := make(map[string][]models.ReviewEvent)
	for _, e := range d.events {
		history[e.FlashcardID] = append(history[e.FlashcardID], e)
	}

	var result []models.DifficultCard
	for i := range d.cards {
		card := &d.cards[i]
		events := history[card.ID]

		failures := 0
		var lastError int64
		for _, e := range events {
			if e.Outcome != models.Again {
				continue
			}
			failures++
			if e.Timestamp > lastError {
				lastError = e.Timestamp
			}
		}
		if failures == 0 && card.Difficulty < difficultyThreshold {
			continue
		}

		result = append(result, models.DifficultCard{
			FlashcardID:  card.ID,
			Deck:         card.Deck,
			ErrorCount:   failures,
			LastError:    lastError,
			Difficulty:   card.Difficulty,
			TotalReviews: card.TotalReviews,
			Pattern:      classify(card, events),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.ErrorCount != b.ErrorCount {
			return a.ErrorCount > b.ErrorCount
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		if a.LastError != b.LastError {
			return a.LastError > b.LastError
		}
		return a.FlashcardID < b.FlashcardID
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

// classify assigns the first matching error pattern. events is the card's
// history in log order.
func classify(card *models.FlashcardAggregate, events []models.ReviewEvent) models.ErrorPattern {
	if len(events) < minPatternEvents {
		return models.PatternUnknown
	}
	if card.AverageTime > slowAnswerSeconds {
		return models.PatternCalculation
	}
	if card.IntervalDays < shortIntervalDays && card.Lapses > manyLapses {
		return models.PatternMemory
	}

	recent := make([]models.ReviewEvent, len(events))
	copy(recent, events)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp > recent[j].Timestamp
	})
	if len(recent) > recentWindow {
		recent = recent[:recentWindow]
	}
	again := 0
	for _, e := range recent {
		if e.Outcome == models.Again {
			again++
		}
	}
	if again >= recentAgainMin {
		return models.PatternConcept
	}
	return models.PatternUnknown
}
