package persistence

import "errors"

// Common persistence errors
var (
	ErrInvalidInput = errors.New("invalid input")
)
