package ical

import (
	"strings"
	"time"
)

// windowsToIANA maps Windows/CLDR timezone display names to IANA
// identifiers. Calendar software in the wild (Outlook in particular) emits
// these as TZID values. Only "Standard Time" entries are listed; daylight
// variants are normalized before lookup.
var windowsToIANA = map[string]string{
	"Pacific Standard Time":          "America/Los_Angeles",
	"Mountain Standard Time":         "America/Denver",
	"US Mountain Standard Time":      "America/Phoenix",
	"Central Standard Time":          "America/Chicago",
	"Eastern Standard Time":          "America/New_York",
	"US Eastern Standard Time":       "America/Indiana/Indianapolis",
	"Atlantic Standard Time":         "America/Halifax",
	"Alaskan Standard Time":          "America/Anchorage",
	"Hawaiian Standard Time":         "Pacific/Honolulu",
	"E. South America Standard Time": "America/Sao_Paulo",
	"Argentina Standard Time":        "America/Argentina/Buenos_Aires",
	"GMT Standard Time":              "Europe/London",
	"Romance Standard Time":          "Europe/Paris",
	"Central Europe Standard Time":   "Europe/Paris",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Russian Standard Time":          "Europe/Moscow",
	"China Standard Time":            "Asia/Shanghai",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"Korea Standard Time":            "Asia/Seoul",
	"Singapore Standard Time":        "Asia/Singapore",
	"India Standard Time":            "Asia/Kolkata",
	"Arabian Standard Time":          "Asia/Dubai",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"E. Australia Standard Time":     "Australia/Brisbane",
	"W. Australia Standard Time":     "Australia/Perth",
	"New Zealand Standard Time":      "Pacific/Auckland",
	"Egypt Standard Time":            "Africa/Cairo",
	"South Africa Standard Time":     "Africa/Johannesburg",
}

// abbreviationToIANA covers non-standard abbreviations that are not valid
// IANA zone names but still show up as TZID values. Abbreviations that are
// ambiguous across regions (CST: US Central or China; IST: India, Ireland
// or Israel) are deliberately absent — guessing a region would silently
// shift meeting times, so those resolve to nothing and the caller falls
// back to local time.
var abbreviationToIANA = map[string]string{
	"PST":  "America/Los_Angeles",
	"PDT":  "America/Los_Angeles",
	"EDT":  "America/New_York",
	"CDT":  "America/Chicago",
	"MDT":  "America/Denver",
	"BST":  "Europe/London",
	"CEST": "Europe/Berlin",
	"JST":  "Asia/Tokyo",
	"SGT":  "Asia/Singapore",
	"KST":  "Asia/Seoul",
	"NZST": "Pacific/Auckland",
	"NZDT": "Pacific/Auckland",
	"AEST": "Australia/Sydney",
	"AEDT": "Australia/Sydney",
	"AWST": "Australia/Perth",
	"Z":    "UTC",
}

// ResolveTimezone maps an arbitrary timezone identifier to a canonical
// zone. Resolution order: IANA identifier (case-insensitive), Windows/CLDR
// display name, curated unambiguous abbreviation. Returns false when the
// identifier cannot be resolved safely.
func ResolveTimezone(id string) (*time.Location, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}

	if loc, ok := loadIANA(id); ok {
		return loc, true
	}

	normalized := strings.ReplaceAll(id, " Daylight Time", " Standard Time")
	if iana, ok := windowsToIANA[normalized]; ok {
		if loc, ok := loadIANA(iana); ok {
			return loc, true
		}
	}

	if iana, ok := abbreviationToIANA[strings.ToUpper(id)]; ok {
		if loc, ok := loadIANA(iana); ok {
			return loc, true
		}
	}

	return nil, false
}

func loadIANA(id string) (*time.Location, bool) {
	if loc, err := time.LoadLocation(id); err == nil {
		return normalizeUTC(loc), true
	}
	// time.LoadLocation is case-sensitive; retry with canonical casing.
	if canon := canonicalZoneID(id); canon != id {
		if loc, err := time.LoadLocation(canon); err == nil {
			return normalizeUTC(loc), true
		}
	}
	if upper := strings.ToUpper(id); upper != id && len(id) <= 3 {
		if loc, err := time.LoadLocation(upper); err == nil {
			return normalizeUTC(loc), true
		}
	}
	return nil, false
}

func normalizeUTC(loc *time.Location) *time.Location {
	if loc.String() == "Etc/UTC" || loc.String() == "GMT" {
		return time.UTC
	}
	return loc
}

// canonicalZoneID title-cases each word of an IANA identifier so that
// "america/los_angeles" becomes "America/Los_Angeles". Words shorter than
// four characters at the top level (UTC, GMT, EST, Etc) are upper-cased
// except for the well-known "Etc" prefix.
func canonicalZoneID(id string) string {
	segments := strings.Split(id, "/")
	for i, seg := range segments {
		if i == 0 && len(seg) <= 3 && !strings.EqualFold(seg, "Etc") {
			segments[i] = strings.ToUpper(seg)
			continue
		}
		words := strings.Split(seg, "_")
		for j, w := range words {
			if w == "" {
				continue
			}
			words[j] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		segments[i] = strings.Join(words, "_")
	}
	return strings.Join(segments, "/")
}
