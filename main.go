package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/example/noteprogress/internal/config"
	"github.com/example/noteprogress/internal/database"
	"github.com/example/noteprogress/internal/importer"
	"github.com/example/noteprogress/internal/progression"
	"github.com/example/noteprogress/internal/scheduler"
	"github.com/example/noteprogress/internal/statistics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("stopped with error", zap.Error(err))
	}
	logger.Info("stopped successfully")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", zap.String("type", cfg.DB.Type))

	source := database.NewSource(db)
	importFiles(ctx, cfg.Import, loc, source, logger)

	stats := statistics.NewService(source, logger, statistics.WithLocation(loc))
	levels := progression.NewService(ctx, database.NewProgressionRepository(db), logger,
		progression.WithLocation(loc))
	logger.Info("progression loaded",
		zap.Int("level", levels.CurrentLevel()),
		zap.String("name", progression.LevelName(levels.CurrentLevel())))

	summary := stats.Summary(ctx, statistics.DefaultDays)
	logger.Info("review summary",
		zap.Int("reviews", summary.TotalReviews),
		zap.Float64("correct_rate", summary.CorrectRate),
		zap.Int("streak", summary.Streak),
		zap.String("trend", string(summary.Trend)))

	if cfg.Report.Enabled {
		sched, err := startScheduler(stats, db, cfg, logger)
		if err != nil {
			return err
		}
		defer sched.Stop()
	}

	sig := <-sigChan
	logger.Info("received signal", zap.String("signal", sig.String()))
	return nil
}

// importFiles loads flashcards first so imported events have their cards.
// Failures are logged; the process keeps running on what is stored.
func importFiles(ctx context.Context, files config.ImportSettings, loc *time.Location, source *database.Source, logger *zap.Logger) {
	if files.FlashcardsFile != "" {
		cfg := importer.DefaultImportConfig(files.FlashcardsFile)
		result, err := importer.ImportFlashcards(ctx, cfg, source)
		logImport(logger, "flashcard", files.FlashcardsFile, result, err)
	}
	if files.File != "" {
		cfg := importer.DefaultImportConfig(files.File)
		cfg.Location = loc
		result, err := importer.ImportReviewEvents(ctx, cfg, source)
		logImport(logger, "review", files.File, result, err)
	}
}

func logImport(logger *zap.Logger, kind, path string, result *importer.ImportResult, err error) {
	log := logger.With(zap.String("kind", kind), zap.String("file", path))
	if err != nil {
		log.Error("import failed", zap.Error(err))
		return
	}
	log.Info("import finished",
		zap.Int("processed", result.TotalProcessed),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("skipped", result.Skipped))
	for _, msg := range result.Errors {
		log.Warn("import row rejected", zap.String("detail", msg))
	}
}

func startScheduler(stats *statistics.Service, db *sqlx.DB, cfg *config.Config, logger *zap.Logger) (*scheduler.Scheduler, error) {
	sched, err := scheduler.New(stats, database.NewReportRepository(db), cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := sched.Start(); err != nil {
		return nil, err
	}
	return sched, nil
}
