package persistence

import "errors"

// ErrInvalidInput is returned for entries that cannot be stored.
var ErrInvalidInput = errors.New("invalid input")
