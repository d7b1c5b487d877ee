package statistics

import (
	"context"
	"time"

	"github.com/example/noteprogress/pkg/models"
)

// GetWeeklyStats returns rollups of the current and the previous week.
// Weeks start on Sunday at local midnight.
func (s *Service) GetWeeklyStats(ctx context.Context) models.WeekStats {
	return s.weeklyStats(s.events(ctx))
}

func (s *Service) weeklyStats(events []models.ReviewEvent) models.WeekStats {
	today := s.today()
	thisWeek := today.AddDate(0, 0, -int(today.Weekday()))
	lastWeek := thisWeek.AddDate(0, 0, -7)
	streak := s.streak(events)

	return models.WeekStats{
		ThisWeek: s.weekRollup(events, thisWeek, streak),
		LastWeek: s.weekRollup(events, lastWeek, streak),
	}
}

// weekRollup aggregates events in [start, start+7d). streak is copied as-is.
func (s *Service) weekRollup(events []models.ReviewEvent, start time.Time, streak int) models.WeeklyStat {
	end := start.AddDate(0, 0, 7)
	from, to := start.UnixMilli(), end.UnixMilli()

	st := models.WeeklyStat{
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Streak:    streak,
	}
	var correct float64
	for _, e := range events {
		if e.Timestamp < from || e.Timestamp >= to {
			continue
		}
		st.TotalReviews++
		st.TotalTimeSpent += e.ResponseTime
		correct += e.Outcome.Credit()
	}
	st.AverageCorrectRate = rate(correct, st.TotalReviews)
	return st
}
