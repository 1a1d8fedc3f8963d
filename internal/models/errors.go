package models

import "errors"

// Custom errors
var (
	ErrNoRaceTimeDigits  = errors.New("race time has no digits")
	ErrMalformedDocument = errors.New("malformed race document")
	ErrRaceKeyMismatch   = errors.New("race key mismatch")
	ErrNotFound          = errors.New("not found")
)
