package domain

import "time"

// AttendanceStatus is the user's RSVP status for a meeting, derived from the
// ATTENDEE entry matching one of the user's email addresses.
type AttendanceStatus string

const (
	StatusAccepted    AttendanceStatus = "accepted"
	StatusTentative   AttendanceStatus = "tentative"
	StatusDeclined    AttendanceStatus = "declined"
	StatusNeedsAction AttendanceStatus = "needs_action"
	// StatusNone means no ATTENDEE entry matched: a personal event, or the
	// user is the organizer.
	StatusNone AttendanceStatus = "none"
)

// Meeting is one concrete, time-bound occurrence. Instances of a recurring
// event carry a derived UID of the form "{uid}@{YYYYMMDDTHHMMSS}" (local
// start time). That key is stable within a process run and may be used for
// list diffing, but it is never persisted across restarts.
type Meeting struct {
	UID         string           `json:"uid"`
	Title       string           `json:"title"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Location    string           `json:"location,omitempty"`
	Description string           `json:"description,omitempty"`
	CalendarUID string           `json:"calendar_uid"`
	AllDay      bool             `json:"all_day"`
	Attendance  AttendanceStatus `json:"attendance_status"`
}

// CalendarInfo describes one discovered calendar source.
type CalendarInfo struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color,omitempty"`
	// LastSynced is the source's revision timestamp in ISO 8601, when known.
	LastSynced string `json:"last_synced,omitempty"`
	// Backend is the EDS backend type, e.g. "local", "caldav", "google".
	Backend string `json:"backend,omitempty"`
}

// IsMeetingSource reports whether this calendar can contain schedulable
// events. Contacts, weather and birthday calendars exist in EDS but never
// hold meetings and are excluded from every meeting query.
func (c CalendarInfo) IsMeetingSource() bool {
	switch c.Backend {
	case "contacts", "weather", "birthdays":
		return false
	}
	return true
}
