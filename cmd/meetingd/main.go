package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evbridge/meetingd/internal/app"
	"github.com/evbridge/meetingd/internal/config"
	"github.com/evbridge/meetingd/internal/eds"
	"github.com/evbridge/meetingd/internal/engine"
	"github.com/evbridge/meetingd/internal/meeting"
)

func main() {
	mode := flag.String("mode", "serve", "serve, list, meetings or watch")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, *mode); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, mode string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	disabled := cfg.DisableDiscovery
	var svc eds.Service
	client, err := eds.Connect(eds.Options{Logger: logger})
	if err != nil {
		if mode != "serve" {
			return fmt.Errorf("connecting to calendar service: %w", err)
		}
		logger.Warn("calendar service unavailable, serving empty data", "err", err)
		disabled = true
	} else {
		svc = client
		defer client.Close()
	}

	eng := engine.New(engine.Options{
		Service:          svc,
		Resume:           eds.NewResumeWatcher(eds.Options{Logger: logger}),
		Logger:           logger,
		Lookback:         cfg.Lookback,
		Horizon:          cfg.Horizon,
		DisableDiscovery: disabled,
	})

	switch mode {
	case "serve":
		return app.New(cfg, eng, logger).Run(ctx)
	case "list":
		return listCalendars(ctx, eng)
	case "meetings":
		return listMeetings(ctx, eng, cfg)
	case "watch":
		return watchChanges(ctx, eng, cfg)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func listCalendars(ctx context.Context, eng *engine.Engine) error {
	for _, cal := range eng.AvailableCalendars(ctx) {
		fmt.Printf("%s\t%s\tbackend=%s", cal.UID, cal.DisplayName, cal.Backend)
		if cal.LastSynced != "" {
			fmt.Printf("\tsynced=%s", cal.LastSynced)
		}
		fmt.Println()
	}
	return nil
}

func listMeetings(ctx context.Context, eng *engine.Engine, cfg config.Config) error {
	matcher := meeting.NewURLMatcher(cfg.MeetingURLPatterns)
	meetings := eng.UpcomingMeetings(ctx, cfg.EnabledCalendarUIDs, cfg.UpcomingCount, cfg.AdditionalEmails)
	for _, m := range meetings {
		fmt.Printf("%s  %s", m.Start.Local().Format("Mon 15:04"), m.Title)
		if url := matcher.MeetingURL(m.Location, m.Description); url != "" {
			fmt.Printf("  %s", url)
		}
		if loc := matcher.PhysicalLocation(m.Location); loc != "" {
			fmt.Printf("  @%s", loc)
		}
		if m.Attendance != "" && m.Attendance != "none" {
			fmt.Printf("  [%s]", m.Attendance)
		}
		fmt.Println()
	}
	return nil
}

func watchChanges(ctx context.Context, eng *engine.Engine, cfg config.Config) error {
	notify := make(chan struct{}, 4)
	eng.WatchCalendarChanges(ctx, cfg.EnabledCalendarUIDs, notify)
	eng.WatchSystemResume(ctx, notify)

	fmt.Println("watching for calendar changes, ctrl-c to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-notify:
			fmt.Println("change detected")
		}
	}
}

func level(v string) slog.Level {
	switch v {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
