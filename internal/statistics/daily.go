package statistics

import (
	"context"

	"github.com/example/noteprogress/pkg/models"
)

// GetDailyStats returns one entry per calendar day for the last days days,
// ending today, sorted ascending. Days without reviews are zero-valued.
// days < 1 falls back to DefaultDays.
func (s *Service) GetDailyStats(ctx context.Context, days int) []models.DailyStat {
	return s.dailyStats(s.events(ctx), days, s.lookup(ctx))
}

func (s *Service) dailyStats(events []models.ReviewEvent, days int, card func(string) *models.FlashcardAggregate) []models.DailyStat {
	if days < 1 {
		days = DefaultDays
	}

	today := s.today()
	stats := make([]models.DailyStat, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(dateLayout)
		stats[i] = models.DailyStat{Date: date}
		index[date] = i
	}

	for _, e := range events {
		i, ok := index[s.dayKey(e)]
		if !ok {
			continue
		}
		st := &stats[i]
		st.Reviewed++
		st.TimeSpent += e.ResponseTime
		st.CorrectCount += e.Outcome.Credit()
		if c := card(e.FlashcardID); c != nil && c.TotalReviews == 1 {
			st.NewCards++
		}
	}

	for i := range stats {
		stats[i].CorrectRate = rate(stats[i].CorrectCount, stats[i].Reviewed)
	}
	return stats
}
