package meeting

import "testing"

func TestMeetingURLProviders(t *testing.T) {
	m := NewURLMatcher(DefaultURLPatterns())

	cases := []struct {
		name string
		text string
		want string
	}{
		{"google meet", "Join: https://meet.google.com/abc-defg-hij", "https://meet.google.com/abc-defg-hij"},
		{"zoom", "https://us02.zoom.us/j/1234567890?pwd=x", "https://us02.zoom.us/j/1234567890"},
		{"teams", "https://teams.microsoft.com/l/meetup-join/19%3ameeting_xyz/0", "https://teams.microsoft.com/l/meetup-join/19%3ameeting_xyz/0"},
		{"teams live", "https://teams.live.com/meet/93841", "https://teams.live.com/meet/93841"},
		{"webex scheduled", "https://company.webex.com/company/j.php?MTID=m123abc", "https://company.webex.com/company/j.php?MTID=m123abc"},
		{"webex personal", "https://company.webex.com/meet/jdoe", "https://company.webex.com/meet/jdoe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.MeetingURL("", tc.text); got != tc.want {
				t.Fatalf("MeetingURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMeetingURLLocationBeforeDescription(t *testing.T) {
	m := NewURLMatcher(DefaultURLPatterns())
	got := m.MeetingURL(
		"https://meet.google.com/aaa-bbbb-ccc",
		"https://meet.google.com/xxx-yyyy-zzz",
	)
	if got != "https://meet.google.com/aaa-bbbb-ccc" {
		t.Fatalf("MeetingURL() = %q, want the location link", got)
	}
}

func TestMeetingURLNoMatch(t *testing.T) {
	m := NewURLMatcher(DefaultURLPatterns())
	if got := m.MeetingURL("Room 4B", "Agenda attached"); got != "" {
		t.Fatalf("MeetingURL() = %q, want empty", got)
	}
	empty := NewURLMatcher(nil)
	if got := empty.MeetingURL("https://meet.google.com/abc-defg-hij", ""); got != "" {
		t.Fatalf("matcher without patterns returned %q", got)
	}
}

func TestNewURLMatcherSkipsInvalidPatterns(t *testing.T) {
	m := NewURLMatcher([]string{`[invalid`, `https://meet\.google\.com/[a-z-]+`})
	if got := m.MeetingURL("https://meet.google.com/abc-defg-hij", ""); got == "" {
		t.Fatal("valid pattern should survive an invalid sibling")
	}
}

func TestPhysicalLocation(t *testing.T) {
	m := NewURLMatcher(DefaultURLPatterns())

	cases := []struct {
		name     string
		location string
		want     string
	}{
		{"room name", "Conference Room A", "Conference Room A"},
		{"trimmed", "  Building 7  ", "Building 7"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"pure meet link", "https://meet.google.com/abc-defg-hij", ""},
		{"generic url", "https://example.com/somewhere", ""},
		{"room plus link", "Room 4B https://meet.google.com/abc-defg-hij", "Room 4B https://meet.google.com/abc-defg-hij"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.PhysicalLocation(tc.location); got != tc.want {
				t.Fatalf("PhysicalLocation(%q) = %q, want %q", tc.location, got, tc.want)
			}
		})
	}
}
