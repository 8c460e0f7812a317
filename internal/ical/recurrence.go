package ical

import (
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrences bounds worst-case expansion cost per rule.
const maxOccurrences = 100

// ExpandOccurrences produces the start instants of a recurring event
// within [windowStart, windowEnd], inclusive, honoring EXDATE exclusions.
// The result is ordered and deterministic for identical inputs. An
// unparseable rule yields no occurrences.
func ExpandOccurrences(rule string, dtstart time.Time, exdates []time.Time, windowStart, windowEnd time.Time) []time.Time {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		slog.Debug("skipping unparseable recurrence rule", "rrule", rule, "err", err)
		return nil
	}
	r.DTStart(dtstart)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exdates {
		set.ExDate(ex.In(dtstart.Location()))
	}

	times := set.Between(windowStart.In(dtstart.Location()), windowEnd.In(dtstart.Location()), true)
	if len(times) > maxOccurrences {
		times = times[:maxOccurrences]
	}
	return times
}
