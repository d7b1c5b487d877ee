package models

// DailyStat aggregates the reviews of one local calendar day.
type DailyStat struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Reviewed     int     `json:"reviewed"`
	CorrectCount float64 `json:"correctCount"`
	CorrectRate  float64 `json:"correctRate"`
	TimeSpent    float64 `json:"timeSpent"` // seconds
	NewCards     int     `json:"newCards"`
}

// WeeklyStat aggregates the reviews of [StartDate, EndDate).
type WeeklyStat struct {
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	TotalReviews       int     `json:"totalReviews"`
	AverageCorrectRate float64 `json:"averageCorrectRate"`
	TotalTimeSpent     float64 `json:"totalTimeSpent"`
	// Streak is the current global streak, not a value scoped to the week.
	Streak int `json:"streak"`
}

// WeekStats pairs the current and the previous calendar week.
type WeekStats struct {
	ThisWeek WeeklyStat `json:"thisWeek"`
	LastWeek WeeklyStat `json:"lastWeek"`
}

// DeckStat is a rollup of all flashcards of one deck.
type DeckStat struct {
	Deck            string  `json:"deck"`
	TotalCards      int     `json:"totalCards"`
	DueCards        int     `json:"dueCards"`
	NewCards        int     `json:"newCards"`
	TotalReviews    int     `json:"totalReviews"`
	CorrectRate     float64 `json:"correctRate"`
	AverageInterval float64 `json:"averageInterval"`
}

// TagStat is a rollup of all flashcards carrying one tag.
type TagStat struct {
	Tag             string  `json:"tag"`
	Count           int     `json:"count"`
	DueCards        int     `json:"dueCards"`
	NewCards        int     `json:"newCards"`
	CorrectRate     float64 `json:"correctRate"`
	AverageInterval float64 `json:"averageInterval"`
}

// ErrorPattern is the heuristic cause assigned to a difficult card.
type ErrorPattern string

const (
	PatternUnknown     ErrorPattern = "unknown"
	PatternCalculation ErrorPattern = "calculation"
	PatternMemory      ErrorPattern = "memory"
	PatternConcept     ErrorPattern = "concept"
)

// DifficultCard describes a flashcard the user keeps failing.
type DifficultCard struct {
	FlashcardID  string       `json:"flashcardId"`
	Deck         string       `json:"deck"`
	ErrorCount   int          `json:"errorCount"`
	LastError    int64        `json:"lastError"` // epoch milliseconds, 0 if none
	Difficulty   float64      `json:"difficulty"`
	TotalReviews int          `json:"totalReviews"`
	Pattern      ErrorPattern `json:"pattern"`
}

// Trend compares the correctness of the last seven days with the seven before.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// Summary is the totals block of a report window.
type Summary struct {
	Days           int     `json:"days"`
	TotalReviews   int     `json:"totalReviews"`
	CorrectCount   float64 `json:"correctCount"`
	CorrectRate    float64 `json:"correctRate"`
	TotalTimeSpent float64 `json:"totalTimeSpent"`
	AverageTime    float64 `json:"averageTime"`
	ActiveDays     int     `json:"activeDays"`
	NewCards       int     `json:"newCards"`
	Streak         int     `json:"streak"`
	Trend          Trend   `json:"trend"`
}
