// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// HoldState is the state of a hold-to-confirm control.
type HoldState int

// Hold states. A control moves Idle -> Holding -> Committed -> Idle, or
// Holding -> Idle when released early.
const (
	HoldIdle HoldState = iota
	HoldHolding
	HoldCommitted
)

// String returns the lower-case state name used in logs and JSON.
func (s HoldState) String() string {
	switch s {
	case HoldIdle:
		return "idle"
	case HoldHolding:
		return "holding"
	case HoldCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s HoldState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name written by MarshalText.
func (s *HoldState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = HoldIdle
	case "holding":
		*s = HoldHolding
	case "committed":
		*s = HoldCommitted
	default:
		return fmt.Errorf("unknown hold state %q", b)
	}
	return nil
}

// HoldSession is one press-and-hold attempt.
// Completed and Cancelled are mutually exclusive and terminal.
type HoldSession struct {
	ID              string    `json:"id"`
	StartedAt       time.Time `json:"started_at"`
	ElapsedFraction float64   `json:"elapsed_fraction"`
	Completed       bool      `json:"completed"`
	Cancelled       bool      `json:"cancelled"`
}

// Done reports whether the session reached a terminal outcome.
func (s *HoldSession) Done() bool {
	return s.Completed || s.Cancelled
}
