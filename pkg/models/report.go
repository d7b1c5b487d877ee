package models

import "time"

// Report is a generated statistics report kept in the report archive.
type Report struct {
	ID        string    `json:"id" db:"id"`
	Days      int       `json:"days" db:"days"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
