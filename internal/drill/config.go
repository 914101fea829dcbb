// Package drill exercises a running SafeTravel service over HTTP: it holds
// and releases every tourist's panic button, lets one hold commit per
// tourist and checks that exactly the committed sessions reach the police
// alert feed.
package drill

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultHold         = 3 * time.Second
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultWorkers      = 4
	DefaultAlertLimit   = 100
)

// ErrHelp is returned by ParseFlags when -h/--help was requested.
var ErrHelp = pflag.ErrHelp

// Config holds configuration for a drill run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Tourists     []string      // Tourist ids to drill; empty means the whole roster
	Hold         time.Duration // Configured hold duration of the service
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between status polls
	Workers      int           // Tourists drilled concurrently
	AlertLimit   int           // ?limit used when reading /alerts
	Verbose      bool          // Log every step
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Hold:         DefaultHold,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		Workers:      DefaultWorkers,
		AlertLimit:   DefaultAlertLimit,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("url must not be empty")
	case c.Hold <= 0:
		return errors.New("hold must be positive")
	case c.Timeout <= 0:
		return errors.New("timeout must be positive")
	case c.PollInterval <= 0:
		return errors.New("poll interval must be positive")
	case c.Workers < 1:
		return errors.New("workers must be at least 1")
	case c.AlertLimit < 1:
		return errors.New("alert limit must be at least 1")
	}
	return nil
}

// ParseFlags builds a Config from command line arguments.
func ParseFlags(name string, args []string) (*Config, error) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&cfg.BaseURL, "url", "u", cfg.BaseURL, "Base URL of the service")
	fs.StringSliceVarP(&cfg.Tourists, "tourist", "t", nil, "Tourist id to drill (repeatable; default: whole roster)")
	fs.DurationVar(&cfg.Hold, "hold", cfg.Hold, "Hold duration configured on the service")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	fs.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "Status poll interval")
	fs.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "Tourists drilled concurrently")
	fs.IntVar(&cfg.AlertLimit, "alert-limit", cfg.AlertLimit, "Limit used when reading /alerts")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every step")
	fs.SortFlags = false

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// Stats summarises a drill run.
type Stats struct {
	Tourists      int
	Cancelled     int
	Committed     int
	CooldownNoops int
	Dispatched    int
	Notified      int
	Failures      []string
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
