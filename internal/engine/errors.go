package engine

import "errors"

var (
	// ErrInsufficientRange means the range cannot supply the requested number
	// of distinct values once exclusions are removed.
	ErrInsufficientRange = errors.New("insufficient range")
	ErrInvalidRange      = errors.New("invalid range")
	ErrInvalidCount      = errors.New("invalid count")
)
