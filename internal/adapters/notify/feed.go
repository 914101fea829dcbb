// Package notify is the tourist-facing notification surface: it simulates
// handing an alert to the nearest police unit and keeps the resulting
// "Emergency Alert Sent!" toasts.
package notify

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
)

// Toast text shown once an alert is dispatched.
const (
	AlertTitle       = "Emergency Alert Sent!"
	AlertDescription = "Your location has been shared with the nearest police unit."
)

const (
	defaultCapacity = 100
	defaultUnit     = "Nearest Police Unit"
)

// Feed delivers alerts and keeps a bounded ring of notifications.
type Feed struct {
	mu    sync.Mutex
	ring  []model.Notification
	next  int
	count int

	capacity   int
	minLatency time.Duration
	maxLatency time.Duration
	unit       string
	now        func() time.Time
	rng        *rand.Rand

	logger logger.Logger
}

// NewFeed creates an empty Feed.
func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		capacity: defaultCapacity,
		unit:     defaultUnit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("notify")
	}
	f.ring = make([]model.Notification, f.capacity)
	return f
}

// Notify simulates the dispatch and publishes the toast. It returns the alert
// stamped with the dispatch time and unit.
func (f *Feed) Notify(ctx context.Context, a model.Alert) (model.Alert, error) { //nolint:gocritic // hugeParam: value semantics
	if d := f.latency(); d > 0 {
		t := time.NewTimer(d)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return a, ctx.Err()
		}
	}

	a.DispatchedAt = f.now()
	a.Unit = f.unit
	n := model.Notification{
		Title:       AlertTitle,
		Description: AlertDescription,
		AlertID:     a.ID,
		At:          a.DispatchedAt,
	}

	f.mu.Lock()
	f.ring[f.next] = n
	f.next = (f.next + 1) % f.capacity
	if f.count < f.capacity {
		f.count++
	}
	f.mu.Unlock()

	f.logger.Info(ctx, AlertTitle,
		logger.String("alert", a.ID),
		logger.String("tourist", a.TouristName),
		logger.Float64("lat", a.Position.Latitude),
		logger.Float64("lng", a.Position.Longitude),
	)
	return a, nil
}

// Recent returns up to limit notifications, newest first. A non-positive
// limit returns everything kept.
func (f *Feed) Recent(limit int) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Notification, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, f.ring[(f.next-i+f.capacity)%f.capacity])
	}
	return out
}

// Len returns the number of notifications kept.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func (f *Feed) latency() time.Duration {
	if f.maxLatency <= 0 {
		return 0
	}
	span := f.maxLatency - f.minLatency
	if span <= 0 {
		return f.minLatency
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minLatency + time.Duration(f.rng.Int64N(int64(span)+1))
}
