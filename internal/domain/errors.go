package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrUnknownFeature = errors.New("unknown feature")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
)
