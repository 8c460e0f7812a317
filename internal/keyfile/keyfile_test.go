package keyfile

import "testing"

const sampleSource = `[Data Source]
DisplayName=Work Calendar
DisplayName[en_GB]=Work Calendar GB
Enabled=true

[Calendar]
BackendName=caldav
Color=#62a0ea

[WebDAV Backend]
Color=
CalendarAutoSchedule=false
`

func TestParseSections(t *testing.T) {
	f := Parse(sampleSource)
	if !f.HasSection("Calendar") {
		t.Fatal("expected [Calendar] section")
	}
	if f.HasSection("Address Book") {
		t.Fatal("unexpected section")
	}
}

func TestGetScopedToSection(t *testing.T) {
	f := Parse(sampleSource)
	color, ok := f.Get("Calendar", "Color")
	if !ok || color != "#62a0ea" {
		t.Fatalf("Color = %q, ok=%v", color, ok)
	}
	// The empty Color= in [WebDAV Backend] must not shadow [Calendar].
	if v, _ := f.Get("WebDAV Backend", "Color"); v != "" {
		t.Fatalf("WebDAV Color = %q, want empty", v)
	}
	backend, ok := f.Get("Calendar", "BackendName")
	if !ok || backend != "caldav" {
		t.Fatalf("BackendName = %q, ok=%v", backend, ok)
	}
}

func TestFirstSkipsLocaleVariants(t *testing.T) {
	f := Parse(sampleSource)
	name, ok := f.First("DisplayName")
	if !ok || name != "Work Calendar" {
		t.Fatalf("DisplayName = %q, ok=%v", name, ok)
	}
}

func TestFirstMissingKey(t *testing.T) {
	f := Parse("[Calendar]\nBackendName=local\n")
	if _, ok := f.First("DisplayName"); ok {
		t.Fatal("expected missing DisplayName")
	}
}

func TestParseIgnoresGarbage(t *testing.T) {
	f := Parse("orphan=1\n# comment\n\n[Calendar]\nnot a pair\nColor=#fff\n")
	if v, ok := f.Get("Calendar", "Color"); !ok || v != "#fff" {
		t.Fatalf("Color = %q, ok=%v", v, ok)
	}
	if _, ok := f.First("orphan"); ok {
		t.Fatal("key before any section should be ignored")
	}
}
