package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// AutoRefreshOptions configures the periodic refresh loop.
type AutoRefreshOptions struct {
	Interval    time.Duration
	EnabledUIDs []string

	// SettleDelay is how long to wait after asking backends to re-sync
	// before announcing fresh data. Refresh is fire and forget, so the
	// results right after the call may still be stale.
	SettleDelay time.Duration

	// OnRefreshed runs after each refresh cycle settles.
	OnRefreshed func()
}

// StartAutoRefresh runs RefreshCalendars every Interval until ctx is done.
// The returned stop function halts the scheduler and waits for a running
// cycle to finish.
func (e *Engine) StartAutoRefresh(ctx context.Context, opts AutoRefreshOptions) (func(), error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("auto refresh interval must be > 0, got %v", opts.Interval)
	}

	c := cron.New()
	_, err := c.AddFunc(fmt.Sprintf("@every %s", opts.Interval), func() {
		e.RefreshCalendars(ctx, opts.EnabledUIDs)

		if opts.SettleDelay > 0 {
			timer := time.NewTimer(opts.SettleDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		if opts.OnRefreshed != nil {
			opts.OnRefreshed()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling auto refresh: %w", err)
	}
	c.Start()

	stop := func() {
		<-c.Stop().Done()
	}
	return stop, nil
}
