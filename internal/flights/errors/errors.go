package errors

import "errors"

var (
	ErrNotFound = errors.New("flight not found")

	ErrInvalidID = errors.New("invalid flight ID format")
)
