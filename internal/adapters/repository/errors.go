package repository

import "errors"

// Sentinel kinds for alert store errors.
var (
	ErrNotFound     = errors.New("alert not found")
	ErrInvalidAlert = errors.New("invalid alert")
)
