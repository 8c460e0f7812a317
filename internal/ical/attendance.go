package ical

import (
	"strings"

	"github.com/evbridge/meetingd/internal/domain"
)

// ClassifyAttendance derives the user's RSVP status from the event's
// ATTENDEE entries. Emails are compared case-insensitively; the first
// matching attendee decides, and unmapped PARTSTAT values count as no
// status. Without any user emails there is nothing to match against.
func ClassifyAttendance(attendees []Attendee, userEmails []string) domain.AttendanceStatus {
	if len(userEmails) == 0 {
		return domain.StatusNone
	}
	lowered := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		lowered = append(lowered, strings.ToLower(e))
	}

	for _, a := range attendees {
		if a.Email == "" {
			continue
		}
		email := strings.ToLower(a.Email)
		matched := false
		for _, ue := range lowered {
			if ue == email {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		switch strings.ToUpper(a.PartStat) {
		case "ACCEPTED":
			return domain.StatusAccepted
		case "TENTATIVE":
			return domain.StatusTentative
		case "DECLINED":
			return domain.StatusDeclined
		case "NEEDS-ACTION":
			return domain.StatusNeedsAction
		default:
			return domain.StatusNone
		}
	}
	return domain.StatusNone
}
