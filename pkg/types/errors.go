package types

import "errors"

var (
	// ErrNegativeCount is returned when a generator is asked for fewer than zero records
	ErrNegativeCount = errors.New("record count must not be negative")

	// ErrInvalidCase is returned when a matrix entry has a non-positive dimension
	ErrInvalidCase = errors.New("invalid benchmark case")
)
