package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/noteprogress/pkg/models"
)

// ReportRepository archives generated statistics reports
type ReportRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewReportRepository creates a new repository instance
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db, now: time.Now}
}

// WithClock sets the clock used to stamp saved reports.
func (r *ReportRepository) WithClock(now func() time.Time) *ReportRepository {
	r.now = now
	return r
}

// Save stores a report body generated for a window of days
func (r *ReportRepository) Save(ctx context.Context, days int, body string) (*models.Report, error) {
	report := &models.Report{
		ID:        uuid.New().String(),
		Days:      days,
		Body:      body,
		CreatedAt: r.now().UTC(),
	}

	query := `INSERT INTO reports (id, days, body, created_at) VALUES (:id, :days, :body, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return report, nil
}

// List returns up to limit reports, newest first
func (r *ReportRepository) List(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	query := r.db.Rebind(`
		SELECT id, days, body, created_at
		FROM reports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// Latest returns the most recent report, or ErrNotFound if none exists
func (r *ReportRepository) Latest(ctx context.Context) (*models.Report, error) {
	reports, err := r.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNotFound
	}
	return &reports[0], nil
}
