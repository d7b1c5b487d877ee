// Package statistics derives daily and weekly rollups, streaks, deck and tag
// summaries, difficult-card classifications and text reports from the review
// event log. It owns no state; every query rescans the source.
package statistics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/noteprogress/pkg/models"
)

// Defaults applied when a caller passes an empty window or limit.
const (
	DefaultDays  = 30
	DefaultLimit = 10
)

const dateLayout = "2006-01-02"

// EventSource is the read side of the flashcard manager.
type EventSource interface {
	ListReviewEvents(ctx context.Context) ([]models.ReviewEvent, error)
	ListFlashcardAggregates(ctx context.Context) ([]models.FlashcardAggregate, error)
	GetFlashcardAggregate(ctx context.Context, id string) (*models.FlashcardAggregate, error)
}

// EventStore adds the mutations used by the clear operations.
type EventStore interface {
	EventSource
	ReplaceReviewEvents(ctx context.Context, events []models.ReviewEvent) error
	UpdateFlashcardAggregate(ctx context.Context, card models.FlashcardAggregate) error
}

// Service computes statistics over an EventStore.
type Service struct {
	store EventStore
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

// NewService creates a statistics service.
func NewService(store EventStore, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dataset is one consistent read of the source.
type dataset struct {
	events []models.ReviewEvent
	cards  []models.FlashcardAggregate
	byID   map[string]*models.FlashcardAggregate
}

func (d *dataset) card(id string) *models.FlashcardAggregate {
	return d.byID[id]
}

// events reads the event log. A failed read is logged and treated as empty.
func (s *Service) events(ctx context.Context) []models.ReviewEvent {
	events, err := s.store.ListReviewEvents(ctx)
	if err != nil {
		s.log.Error("failed to list review events", zap.Error(err))
		return nil
	}
	return events
}

// cards reads all aggregates. A failed read is logged and treated as empty.
func (s *Service) cards(ctx context.Context) []models.FlashcardAggregate {
	cards, err := s.store.ListFlashcardAggregates(ctx)
	if err != nil {
		s.log.Error("failed to list flashcards", zap.Error(err))
		return nil
	}
	return cards
}

func (s *Service) load(ctx context.Context) *dataset {
	d := &dataset{
		events: s.events(ctx),
		cards:  s.cards(ctx),
	}
	d.byID = make(map[string]*models.FlashcardAggregate, len(d.cards))
	for i := range d.cards {
		d.byID[d.cards[i].ID] = &d.cards[i]
	}
	return d
}

// lookup returns a memoizing per-card getter backed by GetFlashcardAggregate.
// Missing cards and failed lookups yield nil.
func (s *Service) lookup(ctx context.Context) func(string) *models.FlashcardAggregate {
	cache := make(map[string]*models.FlashcardAggregate)
	return func(id string) *models.FlashcardAggregate {
		if card, ok := cache[id]; ok {
			return card
		}
		card, err := s.store.GetFlashcardAggregate(ctx, id)
		if err != nil {
			s.log.Warn("failed to get flashcard", zap.String("flashcard_id", id), zap.Error(err))
			card = nil
		}
		cache[id] = card
		return card
	}
}

func (s *Service) today() time.Time {
	return startOfDay(s.now().In(s.loc))
}

// dayKey is the local calendar day of e.
func (s *Service) dayKey(e models.ReviewEvent) string {
	return e.Time(s.loc).Format(dateLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func rate(correct float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return correct / float64(total)
}
