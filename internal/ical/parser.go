// Package ical turns raw calendar records from EDS into structured events:
// property extraction, timezone resolution, recurrence expansion and
// attendance classification.
package ical

import (
	"io"
	"log/slog"
	"strings"
	"time"

	goical "github.com/emersion/go-ical"
)

const defaultTitle = "Untitled Event"

// Attendee is one ATTENDEE entry with the parameters the classifier needs.
type Attendee struct {
	Email    string
	PartStat string
}

// Event is the structured form of a single parsed VEVENT.
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string

	Start  time.Time
	End    time.Time
	AllDay bool

	// RRule is the raw recurrence rule; expansion happens separately.
	RRule   string
	ExDates []time.Time
	// RecurrenceID is set when this record is a detached override of one
	// occurrence in a recurring series. Such records bypass expansion.
	RecurrenceID *time.Time

	Attendees []Attendee
}

// ParseEvent parses one raw calendar record. EDS hands out bare VEVENT
// blocks without their VCALENDAR envelope, so a minimal wrapper is
// synthesized before decoding. Records missing UID or DTSTART are dropped,
// reported by the second return value; parsing never returns an error.
func ParseEvent(raw string) (*Event, bool) {
	wrapped := wrapRecord(raw)

	dec := goical.NewDecoder(strings.NewReader(wrapped))
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Debug("dropping undecodable calendar record", "err", err)
			return nil, false
		}
		for _, comp := range cal.Children {
			if comp.Name != goical.CompEvent {
				continue
			}
			if ev, ok := parseComponent(comp); ok {
				return ev, true
			}
		}
	}
	return nil, false
}

func wrapRecord(raw string) string {
	if !strings.HasPrefix(strings.TrimSpace(raw), "BEGIN:VEVENT") {
		return raw
	}
	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//meetingd//EN\r\n")
	b.WriteString(strings.TrimRight(raw, "\r\n"))
	b.WriteString("\r\nEND:VCALENDAR\r\n")
	return b.String()
}

func parseComponent(comp *goical.Component) (*Event, bool) {
	normalizeTimezones(comp)

	ev := &Event{Summary: defaultTitle}

	uid := comp.Props.Get(goical.PropUID)
	if uid == nil || uid.Value == "" {
		return nil, false
	}
	ev.UID = uid.Value

	if p := comp.Props.Get(goical.PropSummary); p != nil && p.Value != "" {
		ev.Summary = p.Value
	}
	if p := comp.Props.Get(goical.PropLocation); p != nil {
		ev.Location = p.Value
	}
	if p := comp.Props.Get(goical.PropDescription); p != nil {
		ev.Description = p.Value
	}

	start := comp.Props.Get(goical.PropDateTimeStart)
	if start == nil {
		return nil, false
	}
	startTime, ok := propDateTime(start)
	if !ok {
		return nil, false
	}
	ev.Start = startTime
	ev.AllDay = isDateOnly(start)

	ev.End = parseEnd(comp, ev)

	if p := comp.Props.Get(goical.PropRecurrenceRule); p != nil {
		ev.RRule = p.Value
	}
	for _, p := range comp.Props.Values(goical.PropExceptionDates) {
		ev.ExDates = append(ev.ExDates, parseExDates(&p)...)
	}
	if p := comp.Props.Get(goical.PropRecurrenceID); p != nil {
		if t, ok := propDateTime(p); ok {
			ev.RecurrenceID = &t
		}
	}

	for _, p := range comp.Props.Values(goical.PropAttendee) {
		ev.Attendees = append(ev.Attendees, parseAttendee(&p))
	}

	return ev, true
}

// normalizeTimezones rewrites TZID parameters to IANA identifiers before
// any date-time is read, so the decoder's zone lookup succeeds. An
// unresolvable TZID is removed: the value is then interpreted in local
// time, which matches the engine's graceful-degradation contract.
func normalizeTimezones(comp *goical.Component) {
	props := []string{
		goical.PropDateTimeStart,
		goical.PropDateTimeEnd,
		goical.PropExceptionDates,
		goical.PropRecurrenceID,
	}
	for _, name := range props {
		for i := range comp.Props[name] {
			prop := &comp.Props[name][i]
			tzid := prop.Params.Get(goical.ParamTimezoneID)
			if tzid == "" {
				continue
			}
			if loc, ok := ResolveTimezone(tzid); ok {
				prop.Params.Set(goical.ParamTimezoneID, loc.String())
				continue
			}
			slog.Warn("unrecognized timezone, falling back to local time", "tzid", tzid)
			prop.Params.Del(goical.ParamTimezoneID)
		}
	}
}

func propDateTime(prop *goical.Prop) (time.Time, bool) {
	if t, err := prop.DateTime(time.Local); err == nil {
		return t, true
	}
	return parseDateTimeValue(prop.Value, time.Local)
}

func parseDateTimeValue(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "Z") {
		if t, err := time.Parse("20060102T150405Z", value); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range []string{"20060102T150405", "20060102", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDateOnly(prop *goical.Prop) bool {
	if strings.EqualFold(prop.Params.Get(goical.ParamValue), "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

func parseEnd(comp *goical.Component, ev *Event) time.Time {
	if p := comp.Props.Get(goical.PropDateTimeEnd); p != nil {
		if t, ok := propDateTime(p); ok {
			return t
		}
	}
	if p := comp.Props.Get(goical.PropDuration); p != nil {
		if d, ok := parseISODuration(p.Value); ok {
			return ev.Start.Add(d)
		}
	}
	if ev.AllDay {
		return ev.Start.Add(24 * time.Hour)
	}
	return ev.Start
}

// parseExDates handles one EXDATE property, which may hold several
// comma-separated values sharing the property's TZID.
func parseExDates(prop *goical.Prop) []time.Time {
	loc := time.Local
	if tzid := prop.Params.Get(goical.ParamTimezoneID); tzid != "" {
		if resolved, ok := ResolveTimezone(tzid); ok {
			loc = resolved
		}
	}
	var out []time.Time
	for _, part := range strings.Split(prop.Value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if t, ok := parseDateTimeValue(part, loc); ok {
			out = append(out, t)
		}
	}
	return out
}

func parseAttendee(prop *goical.Prop) Attendee {
	a := Attendee{
		Email:    prop.Params.Get("EMAIL"),
		PartStat: prop.Params.Get(goical.ParamParticipationStatus),
	}
	if a.Email == "" {
		if v := strings.ToLower(prop.Value); strings.HasPrefix(v, "mailto:") {
			a.Email = strings.TrimPrefix(v, "mailto:")
		}
	}
	return a
}

// parseISODuration parses the RFC 5545 DURATION form, e.g. "PT1H30M" or
// "-P2DT30M". Weeks, days, hours, minutes and seconds are supported.
func parseISODuration(value string) (time.Duration, bool) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, false
	}
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if len(s) == 0 || s[0] != 'P' {
		return 0, false
	}
	s = s[1:]

	var total time.Duration
	inTime := false
	num := 0
	haveNum := false
	components := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			haveNum = true
		case r == 'T':
			inTime = true
		default:
			if !haveNum {
				return 0, false
			}
			switch {
			case r == 'W' && !inTime:
				total += time.Duration(num) * 7 * 24 * time.Hour
			case r == 'D' && !inTime:
				total += time.Duration(num) * 24 * time.Hour
			case r == 'H' && inTime:
				total += time.Duration(num) * time.Hour
			case r == 'M' && inTime:
				total += time.Duration(num) * time.Minute
			case r == 'S' && inTime:
				total += time.Duration(num) * time.Second
			default:
				return 0, false
			}
			num = 0
			haveNum = false
			components++
		}
	}
	// A trailing number without a unit, or no component at all ("P", "PT"),
	// is not a duration.
	if haveNum || components == 0 {
		return 0, false
	}
	if negative {
		total = -total
	}
	return total, true
}
