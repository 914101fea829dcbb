package notify

import (
	"math/rand/v2"
	"time"

	"github.com/okian/safetravel/pkg/logger"
)

// Option applies a configuration option to the Feed.
type Option func(*Feed)

// WithCapacity sets how many notifications the feed keeps.
func WithCapacity(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.capacity = n
		}
	}
}

// WithLatency sets the simulated dispatch latency range. A zero range
// disables the delay.
func WithLatency(lo, hi time.Duration) Option {
	return func(f *Feed) {
		if lo < 0 {
			lo = 0
		}
		if hi < lo {
			hi = lo
		}
		f.minLatency, f.maxLatency = lo, hi
	}
}

// WithUnit sets the responding unit stamped on dispatched alerts.
func WithUnit(unit string) Option {
	return func(f *Feed) {
		if unit != "" {
			f.unit = unit
		}
	}
}

// WithNow sets the time source used for dispatch timestamps.
func WithNow(now func() time.Time) Option {
	return func(f *Feed) {
		if now != nil {
			f.now = now
		}
	}
}

// WithRand sets the random source for latency jitter.
func WithRand(r *rand.Rand) Option {
	return func(f *Feed) {
		if r != nil {
			f.rng = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Feed) {
		if l != nil {
			f.logger = l
		}
	}
}
