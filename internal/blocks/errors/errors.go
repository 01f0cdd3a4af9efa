package errors

import "errors"

var (
	ErrNotFound  = errors.New("block not found")
	ErrInvalidID = errors.New("invalid block ID")
)
