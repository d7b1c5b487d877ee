package progression

import (
	"fmt"
	"strings"

	"github.com/example/noteprogress/pkg/models"
)

var levelNames = map[int]string{
	1: "Beginner",
	2: "Explorer",
	3: "Practitioner",
	4: "Analyst",
	5: "Master",
}

// LevelName returns the display name of level.
func LevelName(level int) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return fmt.Sprintf("Level %d", level)
}

// Requirement is one condition of a promotion and how far the user is.
type Requirement struct {
	Label   string `json:"label"`
	Current int    `json:"current"`
	Target  int    `json:"target"`
}

// Met reports whether the requirement is satisfied.
func (r Requirement) Met() bool {
	return r.Current >= r.Target
}

func boolCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

// promotions[n] lists the requirements for leaving level n.
var promotions = map[int]func(models.ProgressionStats) []Requirement{
	1: func(s models.ProgressionStats) []Requirement {
		return []Requirement{
			{Label: "Extract notes as text", Current: s.NotesExtractedAsText, Target: 2},
			{Label: "Extract notes as Q&A", Current: s.NotesExtractedAsQA, Target: 2},
			{Label: "Extract notes as cloze", Current: s.NotesExtractedAsCloze, Target: 2},
		}
	},
	2: func(s models.ProgressionStats) []Requirement {
		return []Requirement{
			{Label: "Complete annotations", Current: s.AnnotationsCompleted, Target: 3},
			{Label: "Scan notes", Current: s.NotesScanned, Target: 5},
		}
	},
	3: func(s models.ProgressionStats) []Requirement {
		return []Requirement{
			{Label: "Review cards", Current: s.CardsReviewed, Target: 30},
			{Label: "Scan tables", Current: s.TablesScanned, Target: 2},
		}
	},
	4: func(s models.ProgressionStats) []Requirement {
		return []Requirement{
			{Label: "Review cards", Current: s.CardsReviewed, Target: 70},
			{Label: "Active days", Current: s.TotalDays, Target: 21},
			{Label: "Visit the statistics page", Current: boolCount(s.StatsPageVisited), Target: 1},
		}
	},
}

// requirements returns the conditions for leaving level, or nil at the top.
func requirements(level int, stats models.ProgressionStats) []Requirement {
	build, ok := promotions[level]
	if !ok {
		return nil
	}
	return build(stats)
}

// canPromote reports whether every requirement for leaving level holds.
func canPromote(level int, stats models.ProgressionStats) bool {
	reqs := requirements(level, stats)
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if !r.Met() {
			return false
		}
	}
	return true
}

// featureLevels maps every feature to the level that unlocks it.
var featureLevels = map[models.Feature]int{
	models.FeatureSingleExtraction:  1,
	models.FeatureBasicSidebar:      1,
	models.FeatureBatchExtraction:   2,
	models.FeatureAnnotation:        2,
	models.FeatureTypeFilter:        2,
	models.FeatureFileScan:          2,
	models.FeatureVaultScan:         3,
	models.FeatureReviewPage:        3,
	models.FeatureReminders:         3,
	models.FeatureTableExtraction:   3,
	models.FeatureStatsPage:         4,
	models.FeatureAdvancedAnalytics: 5,
	models.FeatureCommunity:         5,
}

// RequiredLevel returns the level that unlocks f.
func RequiredLevel(f models.Feature) (int, error) {
	level, ok := featureLevels[f]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidFeature, string(f))
	}
	return level, nil
}

// unlockedFeatures lists the features available at level in unlock order.
func unlockedFeatures(level int) []models.Feature {
	var out []models.Feature
	for _, f := range models.Features {
		if featureLevels[f] <= level {
			out = append(out, f)
		}
	}
	return out
}

// formatSteps renders the promotion checklist for level.
func formatSteps(level int, steps []Requirement) string {
	var b strings.Builder
	if len(steps) == 0 {
		fmt.Fprintf(&b, "Level %d (%s): every level is unlocked.", level, LevelName(level))
		return b.String()
	}
	fmt.Fprintf(&b, "Level %d (%s) -> Level %d (%s):", level, LevelName(level), level+1, LevelName(level+1))
	for _, r := range steps {
		mark := " "
		if r.Met() {
			mark = "x"
		}
		fmt.Fprintf(&b, "\n  [%s] %s: %d/%d", mark, r.Label, min(r.Current, r.Target), r.Target)
	}
	return b.String()
}
