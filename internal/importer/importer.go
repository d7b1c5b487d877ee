// Package importer loads review history and flashcard metadata from Excel or
// CSV exports into the database.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/noteprogress/pkg/models"
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("importer: unsupported file format")

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string         // Path to the Excel or CSV file
	SheetName string         // Sheet to read, the first sheet when empty
	StartRow  int            // First data row (1-based), rows above it are headers
	Location  *time.Location // Zone for timestamps without an offset, UTC when nil

	// Review event columns
	CardColumn         string
	TimestampColumn    string
	OutcomeColumn      string
	ResponseTimeColumn string

	// Flashcard columns
	IDColumn         string
	DeckColumn       string
	TagsColumn       string
	StateColumn      string
	DifficultyColumn string
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:           path,
		StartRow:           2,
		CardColumn:         "A",
		TimestampColumn:    "B",
		OutcomeColumn:      "C",
		ResponseTimeColumn: "D",
		IDColumn:           "A",
		DeckColumn:         "B",
		TagsColumn:         "C",
		StateColumn:        "D",
		DifficultyColumn:   "E",
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Duplicates     int // rows already present in the store
	Errors         []string
}

func (r *ImportResult) fail(rowNum int, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
}

// EventAppender stores imported review events, skipping events it already
// holds, and returns how many were new.
type EventAppender interface {
	AppendNew(ctx context.Context, events ...models.ReviewEvent) (int, error)
}

// FlashcardSink reads and upserts flashcard aggregates.
type FlashcardSink interface {
	GetFlashcardAggregate(ctx context.Context, id string) (*models.FlashcardAggregate, error)
	UpdateFlashcardAggregate(ctx context.Context, card models.FlashcardAggregate) error
}

// row is one data row and its 1-based position in the file.
type row struct {
	num   int
	cells []string
}

// readRows returns the data rows of the file, skipping the header rows.
func readRows(cfg ImportConfig) ([]row, error) {
	var (
		all [][]string
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(cfg.FilePath)); ext {
	case ".xlsx", ".xlsm":
		all, err = readExcel(cfg)
	case ".csv":
		all, err = readCSV(cfg.FilePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	start := max(cfg.StartRow, 1)
	var rows []row
	for i, cells := range all {
		if i < start-1 || blank(cells) {
			continue
		}
		rows = append(rows, row{num: i + 1, cells: cells})
	}
	return rows, nil
}

func readExcel(cfg ImportConfig) ([][]string, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell returns the trimmed value of column, or "" when the row is short or
// the column is not configured.
func cell(cells []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	return ""
}

// columnToIndex converts an Excel column letter to a 0-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
