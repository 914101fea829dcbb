package drill

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/safetravel/internal/domain/model"
	"github.com/okian/safetravel/pkg/logger"
)

// ErrVerification is returned when the service misbehaved during the drill.
var ErrVerification = errors.New("drill verification failed")

// outcome is what one tourist's drill produced.
type outcome struct {
	touristID    string
	released     []string
	committed    string
	cooldownNoop bool
	err          error
}

// Run executes the drill against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("drill")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting panic button drill",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("workers", cfg.Workers),
		logger.Duration("hold", cfg.Hold))

	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	ids, err := touristIDs(ctx, c, cfg)
	if err != nil {
		return nil, fmt.Errorf("roster retrieval failed: %w", err)
	}
	stats.Tourists = len(ids)

	outcomes := drillAll(ctx, c, cfg, ids, log)

	committed := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			stats.Failures = append(stats.Failures, fmt.Sprintf("tourist %s: %v", o.touristID, o.err))
			continue
		}
		stats.Cancelled += len(o.released)
		stats.Committed++
		if o.cooldownNoop {
			stats.CooldownNoops++
		}
		committed[o.committed] = o.touristID
	}

	alerts, err := waitForAlerts(ctx, c, cfg, committed)
	if err != nil {
		return nil, fmt.Errorf("alert retrieval failed: %w", err)
	}
	notes, err := c.notifications(ctx, cfg.AlertLimit)
	if err != nil {
		return nil, fmt.Errorf("notification retrieval failed: %w", err)
	}

	failures := verify(outcomes, alerts, notes)
	stats.Failures = append(stats.Failures, failures...)
	stats.Dispatched = countDispatched(alerts, committed)
	stats.Notified = len(notes)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if len(stats.Failures) > 0 {
		return stats, fmt.Errorf("%w: %d problem(s)", ErrVerification, len(stats.Failures))
	}
	log.Info(ctx, "drill completed successfully")
	return stats, nil
}

func touristIDs(ctx context.Context, c *client, cfg *Config) ([]string, error) {
	if len(cfg.Tourists) > 0 {
		return cfg.Tourists, nil
	}
	roster, err := c.roster(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(roster))
	for _, t := range roster {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// drillAll runs drillTourist over ids with cfg.Workers goroutines.
func drillAll(ctx context.Context, c *client, cfg *Config, ids []string, log logger.Logger) []outcome {
	jobs := make(chan string, len(ids))
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	var (
		mu  sync.Mutex
		out = make([]outcome, 0, len(ids))
		wg  sync.WaitGroup
	)
	for range min(cfg.Workers, len(ids)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				o := drillTourist(ctx, c, cfg, id)
				if cfg.Verbose {
					log.Info(ctx, "tourist drilled",
						logger.String("tourist", id),
						logger.Int("released", len(o.released)),
						logger.String("committed", o.committed),
						logger.Any("error", o.err))
				}
				mu.Lock()
				out = append(out, o)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return out
}

// drillTourist walks one tourist through the panic button timeline: a hold
// released halfway, a hold that commits, a press during the cool-down and a
// fresh hold once the cool-down is over, which is released again.
func drillTourist(ctx context.Context, c *client, cfg *Config, id string) outcome {
	o := outcome{touristID: id}
	idle := func(s model.HoldState) bool { return s == model.HoldIdle }

	// A previous run may have left the button cooling down.
	if _, err := waitFor(ctx, c, cfg, id, idle); err != nil {
		o.err = fmt.Errorf("waiting for idle: %w", err)
		return o
	}

	first, err := pressOnce(ctx, c, id)
	if err != nil {
		o.err = err
		return o
	}
	if err := sleep(ctx, cfg.Hold/2); err != nil {
		o.err = err
		return o
	}
	if err := releaseOnce(ctx, c, id); err != nil {
		o.err = err
		return o
	}
	o.released = append(o.released, first)

	second, err := pressOnce(ctx, c, id)
	if err != nil {
		o.err = err
		return o
	}
	state, err := waitFor(ctx, c, cfg, id, func(s model.HoldState) bool { return s != model.HoldHolding })
	if err != nil {
		o.err = fmt.Errorf("waiting for commit: %w", err)
		return o
	}
	o.committed = second

	var restart string
	if state == model.HoldCommitted {
		reply, code, err := c.press(ctx, id)
		switch {
		case err != nil:
			o.err = fmt.Errorf("press during cool-down: %w", err)
			return o
		case reply.Changed:
			// The cool-down ended between the poll and the press.
			restart = reply.SessionID
		case code != http.StatusOK:
			o.err = fmt.Errorf("press during cool-down: expected 200, got %d", code)
			return o
		default:
			o.cooldownNoop = true
		}
	}
	if restart == "" {
		if _, err := waitFor(ctx, c, cfg, id, idle); err != nil {
			o.err = fmt.Errorf("waiting for cool-down: %w", err)
			return o
		}
		if restart, err = pressOnce(ctx, c, id); err != nil {
			o.err = err
			return o
		}
	}
	if err := releaseOnce(ctx, c, id); err != nil {
		o.err = err
		return o
	}
	o.released = append(o.released, restart)
	return o
}

// releaseOnce ends an active hold early.
func releaseOnce(ctx context.Context, c *client, id string) error {
	rel, err := c.release(ctx, id)
	switch {
	case err != nil:
		return fmt.Errorf("release: %w", err)
	case !rel.Changed || rel.State != model.HoldIdle:
		return fmt.Errorf("release: expected idle after early release, got %s (changed=%t)", rel.State, rel.Changed)
	}
	return nil
}

// pressOnce starts a hold and returns its session id.
func pressOnce(ctx context.Context, c *client, id string) (string, error) {
	reply, code, err := c.press(ctx, id)
	switch {
	case err != nil:
		return "", fmt.Errorf("press: %w", err)
	case code != http.StatusAccepted || !reply.Changed || reply.State != model.HoldHolding:
		return "", fmt.Errorf("press: expected 202 holding, got %d %s", code, reply.State)
	case reply.SessionID == "":
		return "", errors.New("press: missing session id")
	}
	return reply.SessionID, nil
}

// waitFor polls the panic status until ok accepts the state or the hold,
// plus one request timeout, has elapsed twice over.
func waitFor(ctx context.Context, c *client, cfg *Config, id string, ok func(model.HoldState) bool) (model.HoldState, error) {
	deadline := time.Now().Add(2*cfg.Hold + cfg.Timeout)
	for {
		snap, err := c.status(ctx, id)
		if err != nil {
			return model.HoldIdle, err
		}
		if ok(snap.State) {
			return snap.State, nil
		}
		if time.Now().After(deadline) {
			return snap.State, fmt.Errorf("still %s", snap.State)
		}
		if err := sleep(ctx, cfg.PollInterval); err != nil {
			return snap.State, err
		}
	}
}

// waitForAlerts polls /alerts until every committed session is present.
func waitForAlerts(ctx context.Context, c *client, cfg *Config, committed map[string]string) ([]model.Alert, error) {
	deadline := time.Now().Add(cfg.Timeout)
	for {
		alerts, err := c.alerts(ctx, cfg.AlertLimit)
		if err != nil {
			return nil, err
		}
		if countDispatched(alerts, committed) == len(committed) || time.Now().After(deadline) {
			return alerts, nil
		}
		if err := sleep(ctx, cfg.PollInterval); err != nil {
			return nil, err
		}
	}
}

func countDispatched(alerts []model.Alert, committed map[string]string) int {
	seen := make(map[string]struct{}, len(committed))
	for _, a := range alerts {
		if _, ok := committed[a.SessionID]; ok && !a.DispatchedAt.IsZero() {
			seen[a.SessionID] = struct{}{}
		}
	}
	return len(seen)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("tourists", stats.Tourists),
		logger.Int("cancelled", stats.Cancelled),
		logger.Int("committed", stats.Committed),
		logger.Int("cooldownNoops", stats.CooldownNoops),
		logger.Int("dispatched", stats.Dispatched),
		logger.Int("notified", stats.Notified),
		logger.Int("failures", len(stats.Failures)),
		logger.Duration("duration", stats.Duration))
	for _, f := range stats.Failures {
		log.Warn(ctx, "drill failure", logger.String("detail", f))
	}
}
