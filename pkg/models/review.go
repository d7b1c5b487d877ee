package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Outcome is the self-graded result of a single review.
type Outcome int

const (
	Again Outcome = iota + 1 // Not recalled.
	Hard                     // Recalled with significant effort.
	Good                     // Recalled.
	Easy                     // Recalled effortlessly.
)

var (
	outcomeNames  = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}
	outcomeByName = map[string]Outcome{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
)

// ParseOutcome converts a case-insensitive outcome name into an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o, ok := outcomeByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
	return o, nil
}

// IsValid reports whether o is one of Again, Hard, Good or Easy.
func (o Outcome) IsValid() bool {
	return o >= Again && o <= Easy
}

// Credit returns the partial-credit value of the outcome:
// 1 for good and easy, 0.5 for hard, 0 for again.
func (o Outcome) Credit() float64 {
	switch o {
	case Good, Easy:
		return 1
	case Hard:
		return 0.5
	default:
		return 0
	}
}

func (o Outcome) String() string {
	if o.IsValid() {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, int(o))
	}
	return []byte(outcomeNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	v, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// MarshalJSON implements json.Marshaler. Outcome serializes as a JSON string.
func (o Outcome) MarshalJSON() ([]byte, error) {
	text, err := o.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidOutcome, data)
	}
	return o.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer.
func (o Outcome) Value() (driver.Value, error) {
	text, err := o.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Scan implements sql.Scanner.
func (o *Outcome) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return o.UnmarshalText([]byte(v))
	case []byte:
		return o.UnmarshalText(v)
	default:
		return fmt.Errorf("%w: unsupported column type %T", ErrInvalidOutcome, src)
	}
}

// ReviewEvent is one timestamped review outcome for one flashcard.
// Events are append-only and never reordered.
type ReviewEvent struct {
	ID           int64   `json:"-" db:"id"`
	FlashcardID  string  `json:"flashcardId" db:"flashcard_id"`
	Timestamp    int64   `json:"timestamp" db:"reviewed_at"` // epoch milliseconds
	Outcome      Outcome `json:"outcome" db:"outcome"`
	ResponseTime float64 `json:"responseTime" db:"response_time"` // seconds
}

// Time returns the event timestamp as a time.Time in loc.
func (e ReviewEvent) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(loc)
}
