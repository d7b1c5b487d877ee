package statistics

import (
	"context"
	"sort"

	"github.com/example/noteprogress/pkg/models"
)

// CalculateStreak returns the number of consecutive calendar days, ending
// today, that have at least one review. No review today means no streak.
func (s *Service) CalculateStreak(ctx context.Context) int {
	return s.streak(s.events(ctx))
}

func (s *Service) streak(events []models.ReviewEvent) int {
	today := s.today()
	todayKey := today.Format(dateLayout)

	seen := make(map[string]struct{})
	for _, e := range events {
		// Days after today are clock skew and never part of a streak.
		if key := s.dayKey(e); key <= todayKey {
			seen[key] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return 0
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	streak := 0
	for i, d := range dates {
		if d != today.AddDate(0, 0, -i).Format(dateLayout) {
			break
		}
		streak++
	}
	return streak
}
