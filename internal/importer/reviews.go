package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/noteprogress/pkg/models"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ImportReviewEvents appends every valid review row to sink. Invalid rows are
// reported in the result and do not abort the import. Rows the sink already
// holds are counted as duplicates, so importing the same file again is a no-op.
func ImportReviewEvents(ctx context.Context, cfg ImportConfig, sink EventAppender) (*ImportResult, error) {
	rows, err := readRows(cfg)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	events := make([]models.ReviewEvent, 0, len(rows))
	for _, r := range rows {
		result.TotalProcessed++
		ev, err := parseReviewRow(r.cells, cfg)
		if err != nil {
			result.fail(r.num, err)
			result.Skipped++
			continue
		}
		events = append(events, ev)
	}

	if len(events) == 0 {
		return result, nil
	}
	created, err := sink.AppendNew(ctx, events...)
	if err != nil {
		return result, fmt.Errorf("failed to store review events: %w", err)
	}
	result.Created = created
	result.Duplicates = len(events) - created
	return result, nil
}

func parseReviewRow(cells []string, cfg ImportConfig) (models.ReviewEvent, error) {
	id := cell(cells, cfg.CardColumn)
	if id == "" {
		return models.ReviewEvent{}, errors.New("flashcard id cannot be empty")
	}

	ts, err := parseTimestamp(cell(cells, cfg.TimestampColumn), cfg.Location)
	if err != nil {
		return models.ReviewEvent{}, err
	}

	outcome, err := models.ParseOutcome(cell(cells, cfg.OutcomeColumn))
	if err != nil {
		return models.ReviewEvent{}, err
	}

	var seconds float64
	if raw := cell(cells, cfg.ResponseTimeColumn); raw != "" {
		seconds, err = strconv.ParseFloat(raw, 64)
		if err != nil || seconds < 0 {
			return models.ReviewEvent{}, fmt.Errorf("invalid response time %q", raw)
		}
	}

	return models.ReviewEvent{
		FlashcardID:  id,
		Timestamp:    ts,
		Outcome:      outcome,
		ResponseTime: seconds,
	}, nil
}

// parseTimestamp accepts epoch milliseconds or one of timestampLayouts and
// returns epoch milliseconds.
func parseTimestamp(s string, loc *time.Location) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("timestamp cannot be empty")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		return ms, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("invalid timestamp %q", s)
}
