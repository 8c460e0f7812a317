// Package engine orchestrates the fetch pipeline: discover calendar
// sources, query each one for raw records, parse and expand them, and
// produce the ranked list of upcoming meetings. It also exposes refresh
// and watch plumbing for callers that want to stay current.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/evbridge/meetingd/internal/domain"
	"github.com/evbridge/meetingd/internal/eds"
	"github.com/evbridge/meetingd/internal/ical"
	"github.com/evbridge/meetingd/internal/keyfile"
	"github.com/evbridge/meetingd/internal/meeting"
)

// ResumeWatcher delivers notifications when the machine wakes up or the
// session unlocks.
type ResumeWatcher interface {
	Watch(ctx context.Context, notify chan<- struct{})
}

// Options configures an Engine. Service is required; everything else has
// a sensible default.
type Options struct {
	Service eds.Service
	Resume  ResumeWatcher
	Logger  *slog.Logger

	// Now is the clock used for query windows, injectable for tests.
	Now func() time.Time

	// Lookback and Horizon bound the query window around now.
	Lookback time.Duration
	Horizon  time.Duration

	// DisableDiscovery makes every query return empty results without
	// touching the bus.
	DisableDiscovery bool
}

type Engine struct {
	svc    eds.Service
	resume ResumeWatcher
	log    *slog.Logger
	now    func() time.Time

	lookback time.Duration
	horizon  time.Duration

	disableDiscovery bool
}

func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Lookback == 0 {
		opts.Lookback = 30 * time.Minute
	}
	if opts.Horizon == 0 {
		opts.Horizon = 30 * 24 * time.Hour
	}
	return &Engine{
		svc:              opts.Service,
		resume:           opts.Resume,
		log:              opts.Logger,
		now:              opts.Now,
		lookback:         opts.Lookback,
		horizon:          opts.Horizon,
		disableDiscovery: opts.DisableDiscovery,
	}
}

// AvailableCalendars lists every calendar source, sorted by display name.
// Any failure degrades to an empty slice.
func (e *Engine) AvailableCalendars(ctx context.Context) []domain.CalendarInfo {
	if e.disableDiscovery {
		return nil
	}
	calendars := e.discoverCalendars(ctx)
	for i := range calendars {
		session, err := e.svc.OpenSession(ctx, calendars[i].UID)
		if err != nil {
			e.log.Debug("skipping last-synced lookup", "uid", calendars[i].UID, "err", err)
			continue
		}
		calendars[i].LastSynced = session.Revision()
	}
	sort.Slice(calendars, func(i, j int) bool {
		if calendars[i].DisplayName == calendars[j].DisplayName {
			return calendars[i].UID < calendars[j].UID
		}
		return calendars[i].DisplayName < calendars[j].DisplayName
	})
	return calendars
}

// UpcomingMeetings queries every enabled meeting calendar concurrently and
// returns at most limit meetings, earliest first. An empty enabledUIDs
// means all calendars. extraEmails joins each calendar's own identity
// address for attendance classification.
func (e *Engine) UpcomingMeetings(ctx context.Context, enabledUIDs []string, limit int, extraEmails []string) []domain.Meeting {
	if e.disableDiscovery {
		return nil
	}
	now := e.now()
	queryStart := now.Add(-e.lookback)
	queryEnd := now.Add(e.horizon)

	sources := e.meetingSources(ctx, enabledUIDs)
	if len(sources) == 0 {
		return nil
	}

	results := make(chan []domain.Meeting, len(sources))
	var wg sync.WaitGroup
	for _, cal := range sources {
		wg.Add(1)
		go func(cal domain.CalendarInfo) {
			defer wg.Done()
			results <- e.fetchSource(ctx, cal, extraEmails, now, queryStart, queryEnd)
		}(cal)
	}
	wg.Wait()
	close(results)

	var merged []domain.Meeting
	for batch := range results {
		merged = append(merged, batch...)
	}
	merged = meeting.Dedup(merged)
	return meeting.SortAndLimit(merged, limit)
}

// RefreshCalendars asks every enabled calendar backend to re-sync.
// Fire and forget: callers observe completion through change signals.
func (e *Engine) RefreshCalendars(ctx context.Context, enabledUIDs []string) {
	if e.disableDiscovery {
		return
	}
	for _, cal := range e.meetingSources(ctx, enabledUIDs) {
		session, err := e.svc.OpenSession(ctx, cal.UID)
		if err != nil {
			e.log.Debug("skipping refresh", "uid", cal.UID, "err", err)
			continue
		}
		session.Refresh(ctx)
	}
}

// WatchCalendarChanges subscribes to change signals from every enabled
// calendar and forwards unit notifications into notify. Sends never
// block. Sources that cannot be watched are skipped.
func (e *Engine) WatchCalendarChanges(ctx context.Context, enabledUIDs []string, notify chan<- struct{}) {
	if e.disableDiscovery {
		return
	}
	for _, cal := range e.meetingSources(ctx, enabledUIDs) {
		session, err := e.svc.OpenSession(ctx, cal.UID)
		if err != nil {
			e.log.Debug("skipping change watch", "uid", cal.UID, "err", err)
			continue
		}
		if err := session.Watch(ctx, notify); err != nil {
			e.log.Debug("change watch failed", "uid", cal.UID, "err", err)
		}
	}
}

// WatchSystemResume forwards wake and unlock notifications into notify.
// A no-op when no resume watcher is configured.
func (e *Engine) WatchSystemResume(ctx context.Context, notify chan<- struct{}) {
	if e.resume == nil {
		return
	}
	e.resume.Watch(ctx, notify)
}

// discoverCalendars lists sources and keeps those whose keyfile data
// carries a [Calendar] section.
func (e *Engine) discoverCalendars(ctx context.Context) []domain.CalendarInfo {
	sources, err := e.svc.ListSources(ctx)
	if err != nil {
		e.log.Warn("source discovery failed", "err", err)
		return nil
	}
	var calendars []domain.CalendarInfo
	for _, src := range sources {
		kf := keyfile.Parse(src.Data)
		if !kf.HasSection("Calendar") {
			continue
		}
		displayName, ok := kf.First("DisplayName")
		if !ok || displayName == "" {
			displayName = src.UID
		}
		color, _ := kf.Get("Calendar", "Color")
		backend, _ := kf.Get("Calendar", "BackendName")
		info := domain.CalendarInfo{
			UID:         src.UID,
			DisplayName: displayName,
			Color:       color,
			Backend:     backend,
		}
		calendars = append(calendars, info)
	}
	return calendars
}

// meetingSources filters discovered calendars down to the ones a meeting
// query should touch: meeting-capable backends, restricted to enabledUIDs
// when that list is non-empty.
func (e *Engine) meetingSources(ctx context.Context, enabledUIDs []string) []domain.CalendarInfo {
	enabled := make(map[string]struct{}, len(enabledUIDs))
	for _, uid := range enabledUIDs {
		enabled[uid] = struct{}{}
	}
	var out []domain.CalendarInfo
	for _, cal := range e.discoverCalendars(ctx) {
		if !cal.IsMeetingSource() {
			continue
		}
		if len(enabled) > 0 {
			if _, ok := enabled[cal.UID]; !ok {
				continue
			}
		}
		out = append(out, cal)
	}
	return out
}

func (e *Engine) fetchSource(ctx context.Context, cal domain.CalendarInfo, extraEmails []string, now, queryStart, queryEnd time.Time) []domain.Meeting {
	session, err := e.svc.OpenSession(ctx, cal.UID)
	if err != nil {
		e.log.Warn("skipping calendar", "uid", cal.UID, "err", err)
		return nil
	}

	emails := identityEmails(session.EmailAddress(), extraEmails)

	records, err := session.Query(ctx, queryStart, queryEnd)
	if err != nil {
		e.log.Warn("calendar query failed", "uid", cal.UID, "err", err)
		return nil
	}

	var meetings []domain.Meeting
	for _, raw := range records {
		ev, ok := ical.ParseEvent(raw)
		if !ok {
			continue
		}
		meetings = append(meetings, e.meetingsFromEvent(ev, cal.UID, emails, now, queryStart, queryEnd)...)
	}
	return meetings
}

// meetingsFromEvent turns one parsed event into zero or more meetings.
// Detached overrides (RECURRENCE-ID) and non-recurring events yield at
// most one meeting under the master UID; recurring events expand into
// per-occurrence meetings with derived UIDs.
func (e *Engine) meetingsFromEvent(ev *ical.Event, calendarUID string, emails []string, now, queryStart, queryEnd time.Time) []domain.Meeting {
	attendance := ical.ClassifyAttendance(ev.Attendees, emails)

	base := domain.Meeting{
		UID:         ev.UID,
		Title:       ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		CalendarUID: calendarUID,
		AllDay:      ev.AllDay,
		Attendance:  attendance,
	}

	if ev.RRule == "" || ev.RecurrenceID != nil {
		if !meeting.ShouldInclude(ev.Start, ev.End, now, queryStart) {
			return nil
		}
		base.Start = ev.Start
		base.End = ev.End
		return []domain.Meeting{base}
	}

	duration := ev.End.Sub(ev.Start)
	var out []domain.Meeting
	for _, occ := range ical.ExpandOccurrences(ev.RRule, ev.Start, ev.ExDates, queryStart, queryEnd) {
		end := occ.Add(duration)
		if !meeting.ShouldInclude(occ, end, now, queryStart) {
			continue
		}
		m := base
		m.UID = occurrenceUID(ev.UID, occ)
		m.Start = occ
		m.End = end
		out = append(out, m)
	}
	return out
}

// occurrenceUID derives a stable per-occurrence identifier from the
// series UID and the occurrence's local start time.
func occurrenceUID(uid string, start time.Time) string {
	return fmt.Sprintf("%s@%s", uid, start.In(time.Local).Format("20060102T150405"))
}

// identityEmails joins the calendar's own address with user-supplied
// extras, trimmed and deduplicated case-insensitively.
func identityEmails(calendarEmail string, extra []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, email := range append([]string{calendarEmail}, extra...) {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, email)
	}
	return out
}
