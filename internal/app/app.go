// Package app wires the engine, the HTTP surface and the watch plumbing
// into one runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evbridge/meetingd/internal/api"
	"github.com/evbridge/meetingd/internal/config"
	"github.com/evbridge/meetingd/internal/engine"
	"github.com/evbridge/meetingd/internal/security"
)

// Engine is everything the application needs from the meeting engine.
type Engine interface {
	api.Engine
	WatchCalendarChanges(ctx context.Context, enabledUIDs []string, notify chan<- struct{})
	WatchSystemResume(ctx context.Context, notify chan<- struct{})
	StartAutoRefresh(ctx context.Context, opts engine.AutoRefreshOptions) (func(), error)
}

type Application struct {
	cfg    config.Config
	engine Engine
	logger *slog.Logger
}

func New(cfg config.Config, eng Engine, logger *slog.Logger) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	return &Application{cfg: cfg, engine: eng, logger: logger}
}

func (a *Application) Run(ctx context.Context) error {
	server := api.New(api.Options{
		Engine: a.engine,
		Auth: security.BearerAuth{
			Enabled: a.cfg.RequireBearerToken,
			Token:   a.cfg.BearerToken,
		},
		Logger:       a.logger,
		URLPatterns:  a.cfg.MeetingURLPatterns,
		EnabledUIDs:  a.cfg.EnabledCalendarUIDs,
		ExtraEmails:  a.cfg.AdditionalEmails,
		DefaultLimit: a.cfg.UpcomingCount,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 3)
	wg := sync.WaitGroup{}

	if a.cfg.BindAddress != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.ServeTCP(ctx, a.cfg.BindAddress); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("tcp server: %w", err)
			}
		}()
	}
	if a.cfg.UnixSocketPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.ServeUnix(ctx, a.cfg.UnixSocketPath); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("unix server: %w", err)
			}
		}()
	}

	// Change and resume notifications share one bounded channel; a burst
	// of signals collapses into a single warm fetch.
	notify := make(chan struct{}, 4)
	a.engine.WatchCalendarChanges(ctx, a.cfg.EnabledCalendarUIDs, notify)
	a.engine.WatchSystemResume(ctx, notify)

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.consumeChanges(ctx, notify)
	}()

	if a.cfg.AutoRefresh {
		stop, err := a.engine.StartAutoRefresh(ctx, engine.AutoRefreshOptions{
			Interval:    a.cfg.RefreshInterval,
			SettleDelay: a.cfg.SettleDelay,
			EnabledUIDs: a.cfg.EnabledCalendarUIDs,
			OnRefreshed: func() {
				select {
				case notify <- struct{}{}:
				default:
				}
			},
		})
		if err != nil {
			return fmt.Errorf("auto refresh: %w", err)
		}
		defer stop()
	}

	select {
	case err := <-errCh:
		cancel()
		wg.Wait()
		return err
	case <-ctx.Done():
		wg.Wait()
		return nil
	}
}

// consumeChanges re-fetches the upcoming set after each notification
// burst, keeping logs current and backends warm.
func (a *Application) consumeChanges(ctx context.Context, notify <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
			drain(notify)
			meetings := a.engine.UpcomingMeetings(ctx, a.cfg.EnabledCalendarUIDs, a.cfg.UpcomingCount, a.cfg.AdditionalEmails)
			a.logger.Info("calendar data changed", "upcoming", len(meetings))
		}
	}
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
