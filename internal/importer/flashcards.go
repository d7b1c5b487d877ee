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

// ImportFlashcards creates or updates flashcard metadata from the file.
// Existing cards keep their review totals and scheduling state unless the
// row names a state explicitly.
func ImportFlashcards(ctx context.Context, cfg ImportConfig, sink FlashcardSink) (*ImportResult, error) {
	rows, err := readRows(cfg)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	result := &ImportResult{Errors: make([]string, 0)}
	seen := make(map[string]bool)
	for _, r := range rows {
		result.TotalProcessed++
		if err := importFlashcardRow(ctx, r.cells, cfg, sink, seen, now, result); err != nil {
			result.fail(r.num, err)
			result.Skipped++
		}
	}
	return result, nil
}

func importFlashcardRow(ctx context.Context, cells []string, cfg ImportConfig, sink FlashcardSink,
	seen map[string]bool, now int64, result *ImportResult) error {
	id := cell(cells, cfg.IDColumn)
	if id == "" {
		return errors.New("flashcard id cannot be empty")
	}
	if seen[id] {
		return fmt.Errorf("duplicate flashcard id %q", id)
	}

	var state models.CardState
	if raw := cell(cells, cfg.StateColumn); raw != "" {
		st, err := models.ParseCardState(raw)
		if err != nil {
			return err
		}
		state = st
	}

	difficulty := -1.0
	if raw := cell(cells, cfg.DifficultyColumn); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 || d > 1 {
			return fmt.Errorf("difficulty must be between 0 and 1, got %q", raw)
		}
		difficulty = d
	}

	existing, err := sink.GetFlashcardAggregate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up flashcard: %w", err)
	}

	card := models.FlashcardAggregate{ID: id}
	if existing != nil {
		card = *existing
	} else {
		card.ResetStats(now)
	}
	card.Deck = cell(cells, cfg.DeckColumn)
	card.Tags = parseTags(cell(cells, cfg.TagsColumn))
	if state != "" {
		card.State = state
	}
	if difficulty >= 0 {
		card.Difficulty = difficulty
	}

	if err := sink.UpdateFlashcardAggregate(ctx, card); err != nil {
		return fmt.Errorf("failed to save flashcard: %w", err)
	}
	seen[id] = true
	if existing != nil {
		result.Updated++
	} else {
		result.Created++
	}
	return nil
}

// parseTags splits a comma or semicolon separated list, dropping empties and
// a leading '#'.
func parseTags(s string) models.Tags {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var tags models.Tags
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimSpace(f), "#")
		if f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}
