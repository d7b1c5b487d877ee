package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/noteprogress/internal/config"
	"github.com/example/noteprogress/pkg/models"
)

// jobTimeout bounds a single report run.
const jobTimeout = 2 * time.Minute

// Reporter renders the statistics report.
type Reporter interface {
	GenerateReport(ctx context.Context, days int) string
}

// Archive stores generated reports.
type Archive interface {
	Save(ctx context.Context, days int, body string) (*models.Report, error)
}

// Scheduler runs the daily report job.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reporter  Reporter
	archive   Archive
	days      int
	hour      int
	log       *zap.Logger

	mu      sync.Mutex
	started bool
}

// New creates a scheduler that fires in the configured timezone.
func New(reporter Reporter, archive Archive, cfg *config.Config, log *zap.Logger) (*Scheduler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		reporter:  reporter,
		archive:   archive,
		days:      cfg.Report.Days,
		hour:      cfg.Report.Hour,
		log:       log.Named("scheduler"),
	}, nil
}

// Start registers the daily report job and runs the scheduler in the
// background.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}

	at := fmt.Sprintf("%02d:00", s.hour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runReport); err != nil {
		return fmt.Errorf("failed to schedule report job: %w", err)
	}
	s.scheduler.StartAsync()
	s.started = true
	s.log.Info("report job scheduled", zap.String("at", at), zap.Int("days", s.days))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.scheduler.Stop()
	s.started = false
}

// RunNow generates and archives a report synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (*models.Report, error) {
	body := s.reporter.GenerateReport(ctx, s.days)
	report, err := s.archive.Save(ctx, s.days, body)
	if err != nil {
		return nil, fmt.Errorf("failed to archive report: %w", err)
	}
	return report, nil
}

func (s *Scheduler) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.RunNow(ctx)
	if err != nil {
		s.log.Error("report job failed", zap.Error(err))
		return
	}
	s.log.Info("report archived", zap.String("id", report.ID), zap.Int("days", report.Days))
}
