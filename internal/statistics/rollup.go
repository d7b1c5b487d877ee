package statistics

import (
	"context"
	"sort"

	"github.com/example/noteprogress/pkg/models"
)

// group accumulates the card-level totals shared by deck and tag rollups.
type group struct {
	cards    int
	due      int
	fresh    int
	reviews  int
	correct  float64
	interval float64
}

func (g *group) add(c *models.FlashcardAggregate, nowMillis int64) {
	g.cards++
	if c.DueAt <= nowMillis {
		g.due++
	}
	if c.State == models.StateNew {
		g.fresh++
	}
	g.reviews += c.TotalReviews
	g.correct += c.CorrectCount
	g.interval += c.IntervalDays
}

func (g *group) averageInterval() float64 {
	if g.cards == 0 {
		return 0
	}
	return g.interval / float64(g.cards)
}

// GetDeckStats rolls flashcards up by deck, largest deck first.
func (s *Service) GetDeckStats(ctx context.Context) []models.DeckStat {
	return s.deckStats(s.cards(ctx))
}

func (s *Service) deckStats(cards []models.FlashcardAggregate) []models.DeckStat {
	now := s.now().UnixMilli()
	groups := make(map[string]*group)
	for i := range cards {
		g, ok := groups[cards[i].Deck]
		if !ok {
			g = &group{}
			groups[cards[i].Deck] = g
		}
		g.add(&cards[i], now)
	}

	stats := make([]models.DeckStat, 0, len(groups))
	for deck, g := range groups {
		stats = append(stats, models.DeckStat{
			Deck:            deck,
			TotalCards:      g.cards,
			DueCards:        g.due,
			NewCards:        g.fresh,
			TotalReviews:    g.reviews,
			CorrectRate:     rate(g.correct, g.reviews),
			AverageInterval: g.averageInterval(),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalCards != stats[j].TotalCards {
			return stats[i].TotalCards > stats[j].TotalCards
		}
		return stats[i].Deck < stats[j].Deck
	})
	return stats
}

// GetTagStats rolls flashcards up by tag, most used tag first. A card counts
// once for each of its tags; untagged cards are left out.
func (s *Service) GetTagStats(ctx context.Context) []models.TagStat {
	return s.tagStats(s.cards(ctx))
}

func (s *Service) tagStats(cards []models.FlashcardAggregate) []models.TagStat {
	now := s.now().UnixMilli()
	groups := make(map[string]*group)
	for i := range cards {
		for _, tag := range cards[i].Tags {
			g, ok := groups[tag]
			if !ok {
				g = &group{}
				groups[tag] = g
			}
			g.add(&cards[i], now)
		}
	}

	stats := make([]models.TagStat, 0, len(groups))
	for tag, g := range groups {
		stats = append(stats, models.TagStat{
			Tag:             tag,
			Count:           g.cards,
			DueCards:        g.due,
			NewCards:        g.fresh,
			CorrectRate:     rate(g.correct, g.reviews),
			AverageInterval: g.averageInterval(),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Tag < stats[j].Tag
	})
	return stats
}
