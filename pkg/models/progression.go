package models

import "fmt"

// Level bounds of the progression ladder.
const (
	MinLevel = 1
	MaxLevel = 5
)

// ProgressionStats are the cumulative activity counters driving promotion.
type ProgressionStats struct {
	CardsExtracted        int    `json:"cardsExtracted"`
	NotesExtractedAsText  int    `json:"notesExtractedAsText"`
	NotesExtractedAsQA    int    `json:"notesExtractedAsQA"`
	NotesExtractedAsCloze int    `json:"notesExtractedAsCloze"`
	AnnotationsCompleted  int    `json:"annotationsCompleted"`
	NotesScanned          int    `json:"notesScanned"`
	CardsReviewed         int    `json:"cardsReviewed"`
	TablesScanned         int    `json:"tablesScanned"`
	ConsecutiveDays       int    `json:"consecutiveDays"`
	TotalDays             int    `json:"totalDays"`
	StatsPageVisited      bool   `json:"statsPageVisited"`
	LastActiveDate        string `json:"lastActiveDate"` // YYYY-MM-DD, empty before first activity
}

// Milestone records the moment a level was first reached.
type Milestone struct {
	Level      int   `json:"level"`
	UnlockedAt int64 `json:"unlockedAt"` // epoch milliseconds
}

// ProgressionState is the persisted progression document.
type ProgressionState struct {
	CurrentLevel     int              `json:"currentLevel"`
	Stats            ProgressionStats `json:"stats"`
	LevelUnlockedAt  map[int]int64    `json:"levelUnlockedAt"`
	Milestones       []Milestone      `json:"milestones"`
	UnlockedFeatures []Feature        `json:"unlockedFeatures"`
}

// NewProgressionState returns the level-1 state created on first use.
func NewProgressionState(nowMillis int64) *ProgressionState {
	return &ProgressionState{
		CurrentLevel:    MinLevel,
		LevelUnlockedAt: map[int]int64{MinLevel: nowMillis},
		Milestones:      []Milestone{{Level: MinLevel, UnlockedAt: nowMillis}},
	}
}

// Clone returns a deep copy of s.
func (s *ProgressionState) Clone() *ProgressionState {
	c := *s
	c.LevelUnlockedAt = make(map[int]int64, len(s.LevelUnlockedAt))
	for k, v := range s.LevelUnlockedAt {
		c.LevelUnlockedAt[k] = v
	}
	c.Milestones = append([]Milestone(nil), s.Milestones...)
	c.UnlockedFeatures = append([]Feature(nil), s.UnlockedFeatures...)
	return &c
}

// Validate checks the invariants a loaded document must satisfy.
func (s *ProgressionState) Validate() error {
	if s.CurrentLevel < MinLevel || s.CurrentLevel > MaxLevel {
		return fmt.Errorf("current level %d out of range", s.CurrentLevel)
	}
	if _, ok := s.LevelUnlockedAt[MinLevel]; !ok {
		return fmt.Errorf("level %d unlock time missing", MinLevel)
	}
	for i := 1; i < len(s.Milestones); i++ {
		if s.Milestones[i].UnlockedAt < s.Milestones[i-1].UnlockedAt {
			return fmt.Errorf("milestones out of order at index %d", i)
		}
	}
	return nil
}

// Feature is a capability gated behind a progression level.
type Feature string

const (
	FeatureSingleExtraction  Feature = "single-extraction"
	FeatureBasicSidebar      Feature = "basic-sidebar"
	FeatureBatchExtraction   Feature = "batch-extraction"
	FeatureAnnotation        Feature = "annotation"
	FeatureTypeFilter        Feature = "type-filter"
	FeatureFileScan          Feature = "file-scan"
	FeatureVaultScan         Feature = "vault-scan"
	FeatureReviewPage        Feature = "review-page"
	FeatureReminders         Feature = "reminders"
	FeatureTableExtraction   Feature = "table-extraction"
	FeatureStatsPage         Feature = "stats-page"
	FeatureAdvancedAnalytics Feature = "advanced-analytics"
	FeatureCommunity         Feature = "community"
)

// Features lists every known feature in unlock order.
var Features = []Feature{
	FeatureSingleExtraction,
	FeatureBasicSidebar,
	FeatureBatchExtraction,
	FeatureAnnotation,
	FeatureTypeFilter,
	FeatureFileScan,
	FeatureVaultScan,
	FeatureReviewPage,
	FeatureReminders,
	FeatureTableExtraction,
	FeatureStatsPage,
	FeatureAdvancedAnalytics,
	FeatureCommunity,
}

// ParseFeature validates s as a known Feature.
func ParseFeature(s string) (Feature, error) {
	for _, f := range Features {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFeature, s)
}
