package domain

import "testing"

func TestIsMeetingSource(t *testing.T) {
	cases := []struct {
		backend string
		want    bool
	}{
		{"local", true},
		{"caldav", true},
		{"google", true},
		{"", true},
		{"contacts", false},
		{"weather", false},
		{"birthdays", false},
	}
	for _, tc := range cases {
		c := CalendarInfo{UID: "x", Backend: tc.backend}
		if got := c.IsMeetingSource(); got != tc.want {
			t.Fatalf("IsMeetingSource(backend=%q) = %v, want %v", tc.backend, got, tc.want)
		}
	}
}
