package service

import (
	"time"

	"github.com/okian/safetravel/internal/clock"
	"github.com/okian/safetravel/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of dispatch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the alert queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many hold sessions are remembered for
// deduplication.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithNotificationFeedSize sets how many toasts are kept.
func WithNotificationFeedSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.feedSize = size
		}
	}
}

// WithAlertRetention caps the number of stored alerts. Zero keeps all.
func WithAlertRetention(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.alertRetention = n
		}
	}
}

// WithHoldTimings sets the panic button hold duration, progress tick and
// cool-down.
func WithHoldTimings(duration, tick, cooldown time.Duration) Option {
	return func(s *Service) {
		if duration > 0 {
			s.holdDuration = duration
		}
		if tick > 0 {
			s.holdTick = tick
		}
		if cooldown >= 0 {
			s.holdCooldown = cooldown
		}
	}
}

// WithJitter sets the location simulation cadence and per-tick drift.
func WithJitter(interval time.Duration, maxDrift float64) Option {
	return func(s *Service) {
		if interval > 0 {
			s.jitterInterval = interval
		}
		if maxDrift > 0 {
			s.maxDrift = maxDrift
		}
	}
}

// WithJitterSeed makes the location simulation deterministic.
func WithJitterSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
		s.seeded = true
	}
}

// WithDispatchLatencyRange sets the simulated police dispatch latency.
func WithDispatchLatencyRange(lo, hi time.Duration) Option {
	return func(s *Service) {
		if lo >= 0 && hi >= lo {
			s.dispatchMin = lo
			s.dispatchMax = hi
		}
	}
}

// WithScheduler drives the controls and simulators from sched instead of an
// owned real-time loop. Tests inject a clock.Manual.
func WithScheduler(sched clock.Scheduler) Option {
	return func(s *Service) {
		if sched != nil {
			s.sched = sched
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
