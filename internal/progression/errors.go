package progression

import (
	"errors"
	"fmt"

	"github.com/example/noteprogress/pkg/models"
)

// ErrFeatureLocked is wrapped by LockedFeatureError.
var ErrFeatureLocked = errors.New("progression: feature locked")

// LockedFeatureError is returned by TryUseFeature when the current level is
// too low. NextSteps describes the promotion out of the current level.
type LockedFeatureError struct {
	Feature       models.Feature
	RequiredLevel int
	CurrentLevel  int
	NextSteps     []Requirement
	Summary       string
}

func (e *LockedFeatureError) Error() string {
	return fmt.Sprintf("feature %s requires level %d (%s), current level is %d",
		e.Feature, e.RequiredLevel, LevelName(e.RequiredLevel), e.CurrentLevel)
}

func (e *LockedFeatureError) Unwrap() error {
	return ErrFeatureLocked
}
