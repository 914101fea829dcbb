// Package config defines service configuration and its loading.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers defaults, an optional YAML file and SAFETRAVEL_* env vars.
//   - Validation errors wrap ErrInvalidConfig; loading errors wrap ErrLoadConfig.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// HoldDurationMS is how long the panic button must be held.
	HoldDurationMS int `koanf:"hold_duration_ms"`
	// HoldTickMS is the progress refresh interval while holding.
	HoldTickMS int `koanf:"hold_tick_ms"`
	// HoldCooldownMS is how long the button stays committed after an alert.
	HoldCooldownMS int `koanf:"hold_cooldown_ms"`

	// JitterIntervalMS is the cadence of simulated position updates.
	JitterIntervalMS int `koanf:"jitter_interval_ms"`
	// JitterMaxDrift bounds each per-axis position change, in degrees.
	JitterMaxDrift float64 `koanf:"jitter_max_drift"`

	// AlertQueueSize bounds the in-memory alert dispatch queue.
	AlertQueueSize int `koanf:"alert_queue_size"`
	// WorkerCount sets the number of alert dispatch workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the committed-session dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`
	// NotificationFeedSize bounds the toast feed.
	NotificationFeedSize int `koanf:"notification_feed_size"`
	// DispatchLatencyMinMS and DispatchLatencyMaxMS simulate police unit acknowledgement.
	DispatchLatencyMinMS int `koanf:"dispatch_latency_min_ms"`
	DispatchLatencyMaxMS int `koanf:"dispatch_latency_max_ms"`
	// MaxListLimit caps ?limit on list endpoints.
	MaxListLimit int `koanf:"max_list_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		HoldDurationMS:       3000,
		HoldTickMS:           100,
		HoldCooldownMS:       2000,
		JitterIntervalMS:     5000,
		JitterMaxDrift:       0.0005,
		AlertQueueSize:       1024,
		WorkerCount:          4,
		DedupeSize:           10_000,
		NotificationFeedSize: 100,
		DispatchLatencyMinMS: 50,
		DispatchLatencyMaxMS: 120,
		MaxListLimit:         100,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.HoldDurationMS <= 0:
		return fmt.Errorf("%w: hold_duration_ms must be positive", ErrInvalidConfig)
	case c.HoldTickMS <= 0 || c.HoldTickMS > c.HoldDurationMS:
		return fmt.Errorf("%w: hold_tick_ms must be in (0, hold_duration_ms]", ErrInvalidConfig)
	case c.HoldCooldownMS < 0:
		return fmt.Errorf("%w: hold_cooldown_ms must not be negative", ErrInvalidConfig)
	case c.JitterIntervalMS <= 0:
		return fmt.Errorf("%w: jitter_interval_ms must be positive", ErrInvalidConfig)
	case c.JitterMaxDrift < 0:
		return fmt.Errorf("%w: jitter_max_drift must not be negative", ErrInvalidConfig)
	case c.DispatchLatencyMinMS < 0 || c.DispatchLatencyMaxMS < c.DispatchLatencyMinMS:
		return fmt.Errorf("%w: dispatch latency range is invalid", ErrInvalidConfig)
	case c.MaxListLimit < 1:
		return fmt.Errorf("%w: max_list_limit must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// HoldDuration returns HoldDurationMS as a duration.
func (c *Config) HoldDuration() time.Duration { return ms(c.HoldDurationMS) }

// HoldTick returns HoldTickMS as a duration.
func (c *Config) HoldTick() time.Duration { return ms(c.HoldTickMS) }

// HoldCooldown returns HoldCooldownMS as a duration.
func (c *Config) HoldCooldown() time.Duration { return ms(c.HoldCooldownMS) }

// JitterInterval returns JitterIntervalMS as a duration.
func (c *Config) JitterInterval() time.Duration { return ms(c.JitterIntervalMS) }

// DispatchLatency returns the dispatch latency bounds as durations.
func (c *Config) DispatchLatency() (time.Duration, time.Duration) {
	return ms(c.DispatchLatencyMinMS), ms(c.DispatchLatencyMaxMS)
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
