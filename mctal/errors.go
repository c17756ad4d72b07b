package mctal

import (
	"errors"
	"fmt"
)

// Common errors. Structural parse failures are wrapped in a *ParseError
// carrying the offending line; errors.Is still matches the sentinels.
var (
	// ErrMalformed reports a line that does not match the fixed token
	// grammar its parser state expects.
	ErrMalformed = errors.New("malformed mctal line")

	// ErrCardinality reports too many numeric tokens for a declared
	// payload, value block or fluctuation-chart row count.
	ErrCardinality = errors.New("token count mismatch")

	// ErrTruncated reports input that ends before the grammar is complete.
	ErrTruncated = errors.New("unexpected end of mctal input")

	// ErrIndexRange reports a coordinate or fixed index outside its
	// axis bound.
	ErrIndexRange = errors.New("index out of range")

	// ErrAxisSet reports an iteration request whose free and fixed axes
	// do not cover the eight axes exactly once.
	ErrAxisSet = errors.New("free and fixed axes must cover all eight axes exactly once")
)

// ParseError describes a structural failure at a specific input line.
type ParseError struct {
	Line  int    // 1-based line number
	State string // parser state when the line was read
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mctal line %d (%s): %v", e.Line, e.State, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
