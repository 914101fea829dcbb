package jitter

import (
	"math/rand/v2"

	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
)

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithMaxDrift bounds the per-tick change of each coordinate, in degrees.
func WithMaxDrift(deg float64) Option {
	return func(s *Simulator) {
		if deg > 0 {
			s.maxDrift = deg
		}
	}
}

// WithRand sets the random source. Tests pass a seeded generator.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithPublisher registers a consumer for every new sample. It is called
// outside the simulator's lock.
func WithPublisher(fn func(model.PositionSample)) Option {
	return func(s *Simulator) {
		s.publish = fn
	}
}

// WithName labels the simulator in logs.
func WithName(name string) Option {
	return func(s *Simulator) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}
