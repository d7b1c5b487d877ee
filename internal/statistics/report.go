package statistics

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/noteprogress/pkg/models"
)

// Report thresholds.
const (
	trendWindowDays     = 7
	trendMargin         = 0.05
	lowCorrectRate      = 0.7
	slowAverageSeconds  = 30
	dueShareWarning     = 0.5
	streakPraiseDays    = 7
	reportDifficultTop  = 5
	reportDateTimeStyle = "2006-01-02 15:04"
)

// Summary returns the totals of the last days days.
func (s *Service) Summary(ctx context.Context, days int) models.Summary {
	d := s.load(ctx)
	return s.summary(d, days)
}

func (s *Service) summary(d *dataset, days int) models.Summary {
	if days < 1 {
		days = DefaultDays
	}

	sum := models.Summary{Days: days}
	for _, st := range s.dailyStats(d.events, days, d.card) {
		sum.TotalReviews += st.Reviewed
		sum.CorrectCount += st.CorrectCount
		sum.TotalTimeSpent += st.TimeSpent
		sum.NewCards += st.NewCards
		if st.Reviewed > 0 {
			sum.ActiveDays++
		}
	}
	sum.CorrectRate = rate(sum.CorrectCount, sum.TotalReviews)
	if sum.TotalReviews > 0 {
		sum.AverageTime = sum.TotalTimeSpent / float64(sum.TotalReviews)
	}
	sum.Streak = s.streak(d.events)
	sum.Trend = s.trend(d)
	return sum
}

// trend compares the correct rate of the last seven days with the seven
// days before them.
func (s *Service) trend(d *dataset) models.Trend {
	daily := s.dailyStats(d.events, 2*trendWindowDays, d.card)

	window := func(stats []models.DailyStat) (float64, int) {
		var correct float64
		var reviewed int
		for _, st := range stats {
			correct += st.CorrectCount
			reviewed += st.Reviewed
		}
		return correct, reviewed
	}
	prevCorrect, prevReviewed := window(daily[:trendWindowDays])
	recentCorrect, recentReviewed := window(daily[trendWindowDays:])
	if prevReviewed == 0 || recentReviewed == 0 {
		return models.TrendStable
	}

	diff := rate(recentCorrect, recentReviewed) - rate(prevCorrect, prevReviewed)
	switch {
	case diff > trendMargin:
		return models.TrendImproving
	case diff < -trendMargin:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// GenerateReport renders a markdown report of the last days days.
func (s *Service) GenerateReport(ctx context.Context, days int) string {
	d := s.load(ctx)
	sum := s.summary(d, days)
	weeks := s.weeklyStats(d.events)
	difficult := s.difficultCards(d, reportDifficultTop)
	decks := s.deckStats(d.cards)

	var b strings.Builder

	b.WriteString("# Review Statistics Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", s.now().In(s.loc).Format(reportDateTimeStyle))
	fmt.Fprintf(&b, "Period: last %d days\n\n", sum.Days)

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Total reviews: %d\n", sum.TotalReviews)
	fmt.Fprintf(&b, "- Correct rate: %s\n", percent(sum.CorrectRate))
	fmt.Fprintf(&b, "- Time spent: %s\n", formatDuration(sum.TotalTimeSpent))
	fmt.Fprintf(&b, "- Average time per review: %.1fs\n", sum.AverageTime)
	fmt.Fprintf(&b, "- Active days: %d/%d\n", sum.ActiveDays, sum.Days)
	fmt.Fprintf(&b, "- New cards: %d\n", sum.NewCards)
	fmt.Fprintf(&b, "- Current streak: %d days\n", sum.Streak)
	fmt.Fprintf(&b, "- Trend: %s\n\n", sum.Trend)

	b.WriteString("## Week over week\n\n")
	b.WriteString("| | This week | Last week | Change |\n")
	b.WriteString("|---|---|---|---|\n")
	tw, lw := weeks.ThisWeek, weeks.LastWeek
	fmt.Fprintf(&b, "| Reviews | %d | %d | %+d |\n", tw.TotalReviews, lw.TotalReviews, tw.TotalReviews-lw.TotalReviews)
	fmt.Fprintf(&b, "| Correct rate | %s | %s | %+.1f pp |\n",
		percent(tw.AverageCorrectRate), percent(lw.AverageCorrectRate), (tw.AverageCorrectRate-lw.AverageCorrectRate)*100)
	fmt.Fprintf(&b, "| Time spent | %s | %s | %+.0fs |\n\n",
		formatDuration(tw.TotalTimeSpent), formatDuration(lw.TotalTimeSpent), tw.TotalTimeSpent-lw.TotalTimeSpent)

	b.WriteString("## Difficult cards\n\n")
	if len(difficult) == 0 {
		b.WriteString("No difficult cards.\n\n")
	} else {
		for i, c := range difficult {
			fmt.Fprintf(&b, "%d. %s (%s): %d errors, difficulty %.2f, pattern %s\n",
				i+1, c.FlashcardID, deckName(c.Deck), c.ErrorCount, c.Difficulty, c.Pattern)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Decks\n\n")
	if len(decks) == 0 {
		b.WriteString("No decks.\n\n")
	} else {
		b.WriteString("| Deck | Cards | Due | New | Correct rate | Avg interval |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, dk := range decks {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %s | %.1fd |\n",
				deckName(dk.Deck), dk.TotalCards, dk.DueCards, dk.NewCards, percent(dk.CorrectRate), dk.AverageInterval)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Recommendations\n\n")
	for _, r := range recommendations(sum, decks) {
		fmt.Fprintf(&b, "- %s\n", r)
	}

	return b.String()
}

func recommendations(sum models.Summary, decks []models.DeckStat) []string {
	var out []string
	if sum.TotalReviews == 0 {
		out = append(out, "No reviews in this period. Start with a short daily session.")
	}
	if sum.TotalReviews > 0 && sum.CorrectRate < lowCorrectRate {
		out = append(out, "Correct rate is below 70%. Revisit difficult cards before adding new ones.")
	}
	if sum.AverageTime > slowAverageSeconds {
		out = append(out, "Average time per review is above 30 seconds. Consider splitting long cards.")
	}
	for _, d := range decks {
		if d.TotalCards > 0 && float64(d.DueCards) > float64(d.TotalCards)*dueShareWarning {
			out = append(out, fmt.Sprintf("Deck %s has %d of %d cards due. Plan a catch-up session.",
				deckName(d.Deck), d.DueCards, d.TotalCards))
		}
	}
	if sum.Trend == models.TrendDeclining {
		out = append(out, "Correctness dropped compared with the previous week.")
	}
	if sum.Streak > streakPraiseDays {
		out = append(out, fmt.Sprintf("%d-day streak. Keep it going!", sum.Streak))
	}
	if len(out) == 0 {
		out = append(out, "Steady progress. Keep the current routine.")
	}
	return out
}

func percent(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}

func deckName(deck string) string {
	if deck == "" {
		return "(no deck)"
	}
	return deck
}

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	h, m, sec := total/3600, total%3600/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
