package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrTouristNotFound = errors.New("tourist not found")
	ErrAlertNotFound   = errors.New("alert not found")
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrNotStarted      = errors.New("service not started")
)
