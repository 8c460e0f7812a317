package meeting

import (
	"log/slog"
	"regexp"
	"strings"
)

// DefaultURLPatterns matches the join links of the common conferencing
// providers. Users can replace or extend the list through configuration.
func DefaultURLPatterns() []string {
	return []string{
		// Google Meet
		`https://meet\.google\.com/[a-z-]+`,
		// Zoom
		`https://[a-z0-9]+\.zoom\.us/j/[0-9]+`,
		// Microsoft Teams
		`https://teams\.microsoft\.com/l/meetup-join/[^\s]+`,
		`https://teams\.live\.com/meet/[^\s]+`,
		// Webex
		`https://[a-z0-9]+\.webex\.com/[^\s]+/j\.php\?MTID=[^\s]+`,
		`https://[a-z0-9]+\.webex\.com/meet/[^\s]+`,
	}
}

// URLMatcher extracts conferencing links using a set of compiled patterns.
type URLMatcher struct {
	patterns []*regexp.Regexp
}

// NewURLMatcher compiles the given patterns. Invalid patterns are logged
// and skipped rather than failing the matcher.
func NewURLMatcher(patterns []string) *URLMatcher {
	m := &URLMatcher{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			slog.Warn("skipping invalid meeting URL pattern", "pattern", p, "err", err)
			continue
		}
		m.patterns = append(m.patterns, re)
	}
	return m
}

// MeetingURL returns the first conferencing link found, searching the
// location before the description. Patterns are tried in order, so earlier
// patterns take precedence within each field. Empty when nothing matches.
func (m *URLMatcher) MeetingURL(location, description string) string {
	for _, field := range []string{location, description} {
		if field == "" {
			continue
		}
		for _, re := range m.patterns {
			if match := re.FindString(field); match != "" {
				return match
			}
		}
	}
	return ""
}

// PhysicalLocation returns the location when it names a real place rather
// than a join link. A location consisting entirely of a conferencing URL,
// or starting with an http(s) scheme, yields an empty string.
func (m *URLMatcher) PhysicalLocation(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	for _, re := range m.patterns {
		if loc := re.FindStringIndex(location); loc != nil && loc[0] == 0 && loc[1] == len(location) {
			return ""
		}
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return ""
	}
	return location
}
