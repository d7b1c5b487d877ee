package models

import "errors"

// Sentinel errors for boundary validation of enum values.
var (
	ErrInvalidOutcome   = errors.New("models: invalid outcome")
	ErrInvalidCardState = errors.New("models: invalid card state")
	ErrInvalidFeature   = errors.New("models: invalid feature")
)
