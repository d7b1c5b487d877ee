// Package progression promotes the user through five capability levels as
// activity counters grow, and gates features on the current level.
package progression

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/noteprogress/pkg/models"
)

// Store persists the progression document. Load returns a nil document when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

// LevelChange is the level before and after a signal.
type LevelChange struct {
	From int
	To   int
}

// Promoted reports whether the signal raised the level.
func (c LevelChange) Promoted() bool {
	return c.To > c.From
}

// Service owns the progression state. Every mutation runs increment,
// evaluate and persist under one lock.
type Service struct {
	mu    sync.Mutex
	state *models.ProgressionState
	store Store
	log   *zap.Logger
	now   func() time.Time
	loc   *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService loads the persisted state (or creates the level-1 default),
// records today's activity and persists the result.
func NewService(ctx context.Context, store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.load(ctx)
	rollover(&s.state.Stats, s.clock())
	s.persist(ctx)
	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// load never fails: a missing, unreadable or invalid document yields the
// default state.
func (s *Service) load(ctx context.Context) *models.ProgressionState {
	fresh := func() *models.ProgressionState {
		return models.NewProgressionState(s.clock().UnixMilli())
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("failed to load progression state, starting fresh", zap.Error(err))
		return fresh()
	}
	if len(doc) == 0 {
		s.log.Info("no progression state found, starting at level 1")
		return fresh()
	}

	var state models.ProgressionState
	if err := json.Unmarshal(doc, &state); err != nil {
		s.log.Error("malformed progression state, starting fresh", zap.Error(err))
		return fresh()
	}
	if err := state.Validate(); err != nil {
		s.log.Error("invalid progression state, starting fresh", zap.Error(err))
		return fresh()
	}
	return &state
}

// persist saves the state. Failures are logged; memory stays authoritative.
func (s *Service) persist(ctx context.Context) {
	s.state.UnlockedFeatures = unlockedFeatures(s.state.CurrentLevel)

	doc, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error("failed to encode progression state", zap.Error(err))
		return
	}
	if err := s.store.Save(ctx, doc); err != nil {
		s.log.Error("failed to save progression state", zap.Error(err))
	}
}

// apply runs mutate, evaluates at most one promotion and persists. Every
// signal is saved, including ones that leave the stats unchanged.
func (s *Service) apply(ctx context.Context, signal string, mutate func(*models.ProgressionStats, time.Time)) LevelChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	change := LevelChange{From: s.state.CurrentLevel, To: s.state.CurrentLevel}
	mutate(&s.state.Stats, now)

	if canPromote(s.state.CurrentLevel, s.state.Stats) {
		level := s.state.CurrentLevel + 1
		at := now.UnixMilli()
		s.state.CurrentLevel = level
		s.state.LevelUnlockedAt[level] = at
		s.state.Milestones = append(s.state.Milestones, models.Milestone{Level: level, UnlockedAt: at})
		change.To = level
		s.log.Info("level up",
			zap.String("signal", signal),
			zap.Int("level", level),
			zap.String("name", LevelName(level)))
	}

	s.persist(ctx)
	return change
}

func increment(counter func(*models.ProgressionStats) *int) func(*models.ProgressionStats, time.Time) {
	return func(st *models.ProgressionStats, _ time.Time) {
		*counter(st)++
	}
}

// OnCardExtracted records one extracted card.
func (s *Service) OnCardExtracted(ctx context.Context) LevelChange {
	return s.apply(ctx, "card_extracted", increment(func(st *models.ProgressionStats) *int { return &st.CardsExtracted }))
}

// OnNoteExtractedAsText records one note extracted as plain text.
func (s *Service) OnNoteExtractedAsText(ctx context.Context) LevelChange {
	return s.apply(ctx, "note_extracted_text", increment(func(st *models.ProgressionStats) *int { return &st.NotesExtractedAsText }))
}

// OnNoteExtractedAsQA records one note extracted as a question/answer pair.
func (s *Service) OnNoteExtractedAsQA(ctx context.Context) LevelChange {
	return s.apply(ctx, "note_extracted_qa", increment(func(st *models.ProgressionStats) *int { return &st.NotesExtractedAsQA }))
}

// OnNoteExtractedAsCloze records one note extracted as a cloze deletion.
func (s *Service) OnNoteExtractedAsCloze(ctx context.Context) LevelChange {
	return s.apply(ctx, "note_extracted_cloze", increment(func(st *models.ProgressionStats) *int { return &st.NotesExtractedAsCloze }))
}

// OnNoteScanned records one scanned note.
func (s *Service) OnNoteScanned(ctx context.Context) LevelChange {
	return s.apply(ctx, "note_scanned", increment(func(st *models.ProgressionStats) *int { return &st.NotesScanned }))
}

// OnAnnotationCompleted records one completed annotation.
func (s *Service) OnAnnotationCompleted(ctx context.Context) LevelChange {
	return s.apply(ctx, "annotation_completed", increment(func(st *models.ProgressionStats) *int { return &st.AnnotationsCompleted }))
}

// OnTableScanned records one scanned table.
func (s *Service) OnTableScanned(ctx context.Context) LevelChange {
	return s.apply(ctx, "table_scanned", increment(func(st *models.ProgressionStats) *int { return &st.TablesScanned }))
}

// OnCardReviewed records one reviewed card and today's activity.
func (s *Service) OnCardReviewed(ctx context.Context) LevelChange {
	return s.apply(ctx, "card_reviewed", func(st *models.ProgressionStats, now time.Time) {
		st.CardsReviewed++
		rollover(st, now)
	})
}

// OnStatsPageVisited marks the statistics page as seen. The flag only ever
// goes from false to true.
func (s *Service) OnStatsPageVisited(ctx context.Context) LevelChange {
	return s.apply(ctx, "stats_page_visited", func(st *models.ProgressionStats, _ time.Time) {
		st.StatsPageVisited = true
	})
}

// CurrentLevel returns the current level.
func (s *Service) CurrentLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CurrentLevel
}

// Snapshot returns a copy of the state.
func (s *Service) Snapshot() *models.ProgressionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// IsFeatureUnlocked reports whether the current level grants f. Unknown
// features are never unlocked.
func (s *Service) IsFeatureUnlocked(f models.Feature) bool {
	required, err := RequiredLevel(f)
	if err != nil {
		return false
	}
	return s.CurrentLevel() >= required
}

// TryUseFeature returns nil when f is unlocked. Otherwise it returns a
// *LockedFeatureError carrying the required level and the next steps of the
// current level, and logs the denial.
func (s *Service) TryUseFeature(f models.Feature) error {
	required, err := RequiredLevel(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	level := s.state.CurrentLevel
	if level >= required {
		return nil
	}

	steps := requirements(level, s.state.Stats)
	denied := &LockedFeatureError{
		Feature:       f,
		RequiredLevel: required,
		CurrentLevel:  level,
		NextSteps:     steps,
		Summary:       formatSteps(level, steps),
	}
	s.log.Info("feature locked",
		zap.String("feature", string(f)),
		zap.Int("required_level", required),
		zap.Int("current_level", level))
	return denied
}

// NextSteps returns the requirements for leaving the current level, empty at
// the top level.
func (s *Service) NextSteps() []Requirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return requirements(s.state.CurrentLevel, s.state.Stats)
}

// ProgressSummary renders NextSteps as a checklist.
func (s *Service) ProgressSummary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return formatSteps(s.state.CurrentLevel, requirements(s.state.CurrentLevel, s.state.Stats))
}
