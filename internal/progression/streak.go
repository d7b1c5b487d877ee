package progression

import (
	"time"

	"github.com/example/noteprogress/pkg/models"
)

const dateLayout = "2006-01-02"

// rollover records activity on the calendar day of now. It is the only
// writer of ConsecutiveDays and TotalDays and reports whether it changed
// anything; a second call on the same day is a no-op.
func rollover(stats *models.ProgressionStats, now time.Time) bool {
	today := now.Format(dateLayout)
	if stats.LastActiveDate == today {
		return false
	}

	y, m, d := now.Date()
	yesterday := time.Date(y, m, d-1, 12, 0, 0, 0, now.Location()).Format(dateLayout)
	if stats.LastActiveDate == yesterday {
		stats.ConsecutiveDays++
	} else {
		stats.ConsecutiveDays = 1
	}
	stats.TotalDays++
	stats.LastActiveDate = today
	return true
}
