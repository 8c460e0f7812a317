package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/evbridge/meetingd/internal/config"
	"github.com/evbridge/meetingd/internal/domain"
	"github.com/evbridge/meetingd/internal/engine"
)

type fakeEngine struct {
	mu      sync.Mutex
	fetches int

	watchCalendars bool
	watchResume    bool
	refreshErr     error
}

func (f *fakeEngine) AvailableCalendars(context.Context) []domain.CalendarInfo { return nil }

func (f *fakeEngine) UpcomingMeetings(context.Context, []string, int, []string) []domain.Meeting {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	return nil
}

func (f *fakeEngine) RefreshCalendars(context.Context, []string) {}

func (f *fakeEngine) WatchCalendarChanges(ctx context.Context, _ []string, notify chan<- struct{}) {
	f.watchCalendars = true
	select {
	case notify <- struct{}{}:
	default:
	}
}

func (f *fakeEngine) WatchSystemResume(context.Context, chan<- struct{}) { f.watchResume = true }

func (f *fakeEngine) StartAutoRefresh(context.Context, engine.AutoRefreshOptions) (func(), error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return func() {}, nil
}

func (f *fakeEngine) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func TestApplicationRunCancel(t *testing.T) {
	cfg := config.Config{BindAddress: "127.0.0.1:0", UpcomingCount: 5}
	eng := &fakeEngine{}
	a := New(cfg, eng, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !eng.watchCalendars || !eng.watchResume {
		t.Fatal("expected both watchers to be installed")
	}
	// The seeded notification must have triggered a warm fetch.
	if eng.fetchCount() == 0 {
		t.Fatal("expected at least one fetch after notification")
	}
}

func TestApplicationRunNoListeners(t *testing.T) {
	cfg := config.Config{BindAddress: "", UnixSocketPath: "", UpcomingCount: 5}
	a := New(cfg, &fakeEngine{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("expected nil due to no listeners, got %v", err)
	}
}

func TestApplicationRunAutoRefresh(t *testing.T) {
	cfg := config.Config{
		BindAddress:     "127.0.0.1:0",
		UpcomingCount:   5,
		AutoRefresh:     true,
		RefreshInterval: time.Minute,
	}
	a := New(cfg, &fakeEngine{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}
