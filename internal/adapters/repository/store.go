// Package repository stores dispatched alerts for the police dashboard.
package repository

import (
	"context"

	"github.com/okian/safetravel/internal/domain/model"
)

// Store provides read/write access to dispatched alerts.
type Store interface {
	// Record stores a, replacing any alert with the same id.
	Record(ctx context.Context, a model.Alert) error

	// Get returns the alert with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (model.Alert, error)

	// List returns up to limit alerts, newest first. A non-positive limit
	// returns every alert.
	List(ctx context.Context, limit int) []model.Alert

	// ForTourist returns the alerts raised by a tourist, newest first.
	ForTourist(ctx context.Context, touristID string) []model.Alert

	// Count returns the number of stored alerts.
	Count(ctx context.Context) int
}
