package progression

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/noteprogress/pkg/models"
)

var start = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

type memoryStore struct {
	mu      sync.Mutex
	doc     []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc, m.loadErr
}

func (m *memoryStore) Save(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = append([]byte(nil), doc...)
	return nil
}

func (m *memoryStore) saved(t *testing.T) models.ProgressionState {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var st models.ProgressionState
	require.NoError(t, json.Unmarshal(m.doc, &st))
	return st
}

// clock is a settable test clock.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, store *memoryStore) (*Service, *clock) {
	t.Helper()
	c := &clock{now: start}
	svc := NewService(context.Background(), store, zap.NewNop(),
		WithClock(c.Now), WithLocation(time.UTC))
	return svc, c
}

func repeat(n int, signal func(context.Context) LevelChange) LevelChange {
	var change LevelChange
	for i := 0; i < n; i++ {
		change = signal(context.Background())
	}
	return change
}

func TestNewService_DefaultState(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(t, store)

	snap := svc.Snapshot()
	assert.Equal(t, 1, snap.CurrentLevel)
	assert.Equal(t, []models.Milestone{{Level: 1, UnlockedAt: start.UnixMilli()}}, snap.Milestones)
	assert.Equal(t, start.UnixMilli(), snap.LevelUnlockedAt[1])
	assert.Equal(t, 1, snap.Stats.TotalDays)
	assert.Equal(t, 1, snap.Stats.ConsecutiveDays)
	assert.Equal(t, "2026-10-15", snap.Stats.LastActiveDate)

	assert.Equal(t, 1, store.saves, "the new state is persisted")
	saved := store.saved(t)
	assert.Equal(t, []models.Feature{models.FeatureSingleExtraction, models.FeatureBasicSidebar}, saved.UnlockedFeatures)
}

func TestNewService_PersistedLayout(t *testing.T) {
	store := &memoryStore{}
	newTestService(t, store)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(store.doc, &raw))
	for _, key := range []string{"currentLevel", "stats", "levelUnlockedAt", "milestones", "unlockedFeatures"} {
		assert.Contains(t, raw, key)
	}
	assert.JSONEq(t, `{"1": 1792056600000}`, string(raw["levelUnlockedAt"]))

	var stats map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["stats"], &stats))
	assert.JSONEq(t, `"2026-10-15"`, string(stats["lastActiveDate"]))
	assert.JSONEq(t, `false`, string(stats["statsPageVisited"]))
}

func TestNewService_LoadsExistingState(t *testing.T) {
	existing := models.ProgressionState{
		CurrentLevel:    3,
		LevelUnlockedAt: map[int]int64{1: 1, 2: 2, 3: 3},
		Milestones:      []models.Milestone{{Level: 1, UnlockedAt: 1}, {Level: 2, UnlockedAt: 2}, {Level: 3, UnlockedAt: 3}},
		Stats: models.ProgressionStats{
			CardsReviewed:   12,
			ConsecutiveDays: 4,
			TotalDays:       9,
			LastActiveDate:  "2026-10-14",
		},
	}
	doc, err := json.Marshal(existing)
	require.NoError(t, err)

	svc, _ := newTestService(t, &memoryStore{doc: doc})

	snap := svc.Snapshot()
	assert.Equal(t, 3, snap.CurrentLevel)
	assert.Len(t, snap.Milestones, 3)
	assert.Equal(t, 12, snap.Stats.CardsReviewed)
	assert.Equal(t, 5, snap.Stats.ConsecutiveDays, "yesterday's activity extends the streak")
	assert.Equal(t, 10, snap.Stats.TotalDays)
}

func TestNewService_FallsBackToDefault(t *testing.T) {
	tests := []struct {
		name  string
		store *memoryStore
	}{
		{name: "malformed json", store: &memoryStore{doc: []byte(`{"currentLevel":`)}},
		{name: "level out of range", store: &memoryStore{doc: []byte(`{"currentLevel":9,"levelUnlockedAt":{"1":1}}`)}},
		{name: "missing level one", store: &memoryStore{doc: []byte(`{"currentLevel":2,"levelUnlockedAt":{"2":1}}`)}},
		{name: "load error", store: &memoryStore{loadErr: errors.New("disk gone")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.store)
			assert.Equal(t, 1, svc.CurrentLevel())
			assert.Len(t, svc.Snapshot().Milestones, 1)
		})
	}
}

func TestLevelUp_Atomicity(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	// Level-3 requirements are already met before reaching level 2.
	repeat(3, svc.OnAnnotationCompleted)
	repeat(5, svc.OnNoteScanned)

	repeat(2, svc.OnNoteExtractedAsText)
	repeat(2, svc.OnNoteExtractedAsQA)
	change := svc.OnNoteExtractedAsCloze(ctx)
	assert.False(t, change.Promoted())
	assert.Equal(t, 1, svc.CurrentLevel())

	change = svc.OnNoteExtractedAsCloze(ctx)
	assert.Equal(t, LevelChange{From: 1, To: 2}, change)
	assert.True(t, change.Promoted())
	assert.Equal(t, 2, svc.CurrentLevel(), "one promotion per signal")

	snap := svc.Snapshot()
	require.Len(t, snap.Milestones, 2)
	assert.Equal(t, models.Milestone{Level: 2, UnlockedAt: start.UnixMilli()}, snap.Milestones[1])
	assert.Equal(t, start.UnixMilli(), snap.LevelUnlockedAt[2])
	assert.Equal(t, 2, store.saved(t).CurrentLevel)

	// The next signal of any kind picks up the pending promotion.
	change = svc.OnCardExtracted(ctx)
	assert.Equal(t, LevelChange{From: 2, To: 3}, change)
	assert.Len(t, svc.Snapshot().Milestones, 3)
}

func TestSignals_IncrementOwnCounter(t *testing.T) {
	svc, _ := newTestService(t, &memoryStore{})
	ctx := context.Background()

	svc.OnCardExtracted(ctx)
	svc.OnNoteExtractedAsText(ctx)
	svc.OnNoteExtractedAsQA(ctx)
	svc.OnNoteExtractedAsCloze(ctx)
	svc.OnNoteScanned(ctx)
	svc.OnAnnotationCompleted(ctx)
	svc.OnCardReviewed(ctx)
	svc.OnTableScanned(ctx)
	svc.OnStatsPageVisited(ctx)

	st := svc.Snapshot().Stats
	assert.Equal(t, models.ProgressionStats{
		CardsExtracted:        1,
		NotesExtractedAsText:  1,
		NotesExtractedAsQA:    1,
		NotesExtractedAsCloze: 1,
		AnnotationsCompleted:  1,
		NotesScanned:          1,
		CardsReviewed:         1,
		TablesScanned:         1,
		ConsecutiveDays:       1,
		TotalDays:             1,
		StatsPageVisited:      true,
		LastActiveDate:        "2026-10-15",
	}, st)
}

func TestOnStatsPageVisited_RepeatVisitPersists(t *testing.T) {
	store := &memoryStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	svc.OnStatsPageVisited(ctx)
	first := svc.Snapshot().Stats
	saves := store.saves
	svc.OnStatsPageVisited(ctx)

	// The repeat visit changes nothing but is still saved.
	assert.Equal(t, saves+1, store.saves)
	assert.Equal(t, first, svc.Snapshot().Stats)
	assert.True(t, svc.Snapshot().Stats.StatsPageVisited)
}

func TestFullProgression(t *testing.T) {
	svc, c := newTestService(t, &memoryStore{})
	ctx := context.Background()

	repeat(2, svc.OnNoteExtractedAsText)
	repeat(2, svc.OnNoteExtractedAsQA)
	repeat(2, svc.OnNoteExtractedAsCloze)
	require.Equal(t, 2, svc.CurrentLevel())

	repeat(3, svc.OnAnnotationCompleted)
	repeat(5, svc.OnNoteScanned)
	require.Equal(t, 3, svc.CurrentLevel())

	repeat(2, svc.OnTableScanned)
	repeat(28, svc.OnCardReviewed)
	require.Equal(t, 3, svc.CurrentLevel())
	svc.OnCardReviewed(ctx)
	svc.OnCardReviewed(ctx)
	require.Equal(t, 4, svc.CurrentLevel())

	svc.OnStatsPageVisited(ctx)
	for day := 1; day < 21; day++ {
		c.advance(24 * time.Hour)
		repeat(2, svc.OnCardReviewed)
	}
	snap := svc.Snapshot()
	assert.Equal(t, 70, snap.Stats.CardsReviewed)
	assert.Equal(t, 21, snap.Stats.TotalDays)
	assert.Equal(t, 21, snap.Stats.ConsecutiveDays)
	assert.Equal(t, 5, snap.CurrentLevel)
	assert.Len(t, snap.Milestones, 5)
	assert.Len(t, snap.UnlockedFeatures, len(models.Features))

	for i := 1; i < len(snap.Milestones); i++ {
		assert.Equal(t, snap.Milestones[i-1].Level+1, snap.Milestones[i].Level)
		assert.LessOrEqual(t, snap.Milestones[i-1].UnlockedAt, snap.Milestones[i].UnlockedAt)
	}

	// Nothing moves past the top level.
	assert.False(t, svc.OnCardReviewed(ctx).Promoted())
	assert.Empty(t, svc.NextSteps())
	assert.Contains(t, svc.ProgressSummary(), "every level is unlocked")
}

func TestMonotonicLevel(t *testing.T) {
	svc, c := newTestService(t, &memoryStore{})
	ctx := context.Background()

	signals := []func(context.Context) LevelChange{
		svc.OnNoteExtractedAsText, svc.OnNoteExtractedAsQA, svc.OnNoteExtractedAsCloze,
		svc.OnAnnotationCompleted, svc.OnNoteScanned, svc.OnCardReviewed,
		svc.OnTableScanned, svc.OnStatsPageVisited, svc.OnCardExtracted,
	}

	level, milestones := svc.CurrentLevel(), 1
	for i := 0; i < 400; i++ {
		if i%17 == 0 {
			c.advance(24 * time.Hour)
		}
		change := signals[(i*7)%len(signals)](ctx)
		assert.GreaterOrEqual(t, change.To, change.From)

		snap := svc.Snapshot()
		require.GreaterOrEqual(t, snap.CurrentLevel, level)
		require.GreaterOrEqual(t, len(snap.Milestones), milestones)
		level, milestones = snap.CurrentLevel, len(snap.Milestones)
	}
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	store := &memoryStore{saveErr: errors.New("read-only")}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	repeat(2, svc.OnNoteExtractedAsText)
	repeat(2, svc.OnNoteExtractedAsQA)
	change := repeat(2, svc.OnNoteExtractedAsCloze)

	assert.True(t, change.Promoted())
	assert.Equal(t, 2, svc.CurrentLevel())
	assert.Nil(t, store.doc)
	assert.Equal(t, 7, store.saves, "every signal still tries to persist")

	svc.OnCardExtracted(ctx)
	assert.Equal(t, 1, svc.Snapshot().Stats.CardsExtracted)
}

func TestConcurrentSignals(t *testing.T) {
	svc, _ := newTestService(t, &memoryStore{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.OnCardExtracted(ctx)
			svc.OnNoteScanned(ctx)
		}()
	}
	wg.Wait()

	st := svc.Snapshot().Stats
	assert.Equal(t, 50, st.CardsExtracted)
	assert.Equal(t, 50, st.NotesScanned)
}

func TestSnapshotIsACopy(t *testing.T) {
	svc, _ := newTestService(t, &memoryStore{})

	snap := svc.Snapshot()
	snap.CurrentLevel = 5
	snap.LevelUnlockedAt[5] = 1
	snap.Milestones[0].Level = 9

	fresh := svc.Snapshot()
	assert.Equal(t, 1, fresh.CurrentLevel)
	assert.NotContains(t, fresh.LevelUnlockedAt, 5)
	assert.Equal(t, 1, fresh.Milestones[0].Level)
}
