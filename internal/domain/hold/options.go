package hold

import (
	"time"

	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
)

// Option applies a configuration option to the Control.
type Option func(*Control)

// WithDuration sets how long the control must be held before it commits.
func WithDuration(d time.Duration) Option {
	return func(c *Control) {
		if d > 0 {
			c.duration = d
		}
	}
}

// WithTick sets the progress refresh interval.
func WithTick(d time.Duration) Option {
	return func(c *Control) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithCooldown sets how long the control stays committed after firing.
func WithCooldown(d time.Duration) Option {
	return func(c *Control) {
		if d >= 0 {
			c.cooldown = d
		}
	}
}

// WithOnCommit registers the completion consumer. It receives the committed
// session once per successful hold, outside the control's lock.
func WithOnCommit(fn func(model.HoldSession)) Option {
	return func(c *Control) {
		c.onCommit = fn
	}
}

// WithOnProgress registers a consumer for cosmetic progress updates.
func WithOnProgress(fn func(progress float64)) Option {
	return func(c *Control) {
		c.onProgress = fn
	}
}

// WithName labels the control in logs.
func WithName(name string) Option {
	return func(c *Control) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Control) {
		if l != nil {
			c.logger = l
		}
	}
}
