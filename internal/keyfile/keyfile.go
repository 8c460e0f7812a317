// Package keyfile parses the INI-like key/value blocks EDS stores per
// source ("GKeyFile" format). Sections scope keys: a [WebDAV Backend]
// section may carry an empty Color= that must not shadow the one in
// [Calendar], so lookups are always section-qualified.
package keyfile

import "strings"

type File struct {
	sections map[string]map[string]string
	order    []string
}

// Parse builds a section→key→value map from raw keyfile data. Lines before
// the first section header are ignored, as are comments, blank lines and
// locale-suffixed keys like DisplayName[en].
func Parse(data string) *File {
	f := &File{sections: make(map[string]map[string]string)}
	var current map[string]string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := line[1 : len(line)-1]
			if _, ok := f.sections[name]; !ok {
				f.sections[name] = make(map[string]string)
				f.order = append(f.order, name)
			}
			current = f.sections[name]
			continue
		}
		if current == nil {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if strings.Contains(key, "[") {
			// Locale variant, e.g. DisplayName[en_US].
			continue
		}
		if _, exists := current[key]; !exists {
			current[key] = value
		}
	}
	return f
}

// HasSection reports whether the named section appears in the data.
func (f *File) HasSection(name string) bool {
	_, ok := f.sections[name]
	return ok
}

// Get returns the value of key scoped to the named section.
func (f *File) Get(section, key string) (string, bool) {
	sec, ok := f.sections[section]
	if !ok {
		return "", false
	}
	v, ok := sec[key]
	return v, ok
}

// First returns the value of key from the first section that defines it,
// in document order. Used for keys like DisplayName that EDS places in the
// top-level [Data Source] section.
func (f *File) First(key string) (string, bool) {
	for _, name := range f.order {
		if v, ok := f.sections[name][key]; ok {
			return v, true
		}
	}
	return "", false
}
