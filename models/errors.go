package models

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or is owned by someone else.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would duplicate a unique value.
	ErrConflict = errors.New("record already exists")
)
