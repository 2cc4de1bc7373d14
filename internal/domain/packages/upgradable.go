package packages

import (
	"strings"
)

// MatchMode selects how a package name is looked up in a listing.
type MatchMode string

const (
	// MatchExact compares the parsed package names.
	MatchExact MatchMode = "exact"
	// MatchSubstring looks for the name anywhere in the raw listing text.
	// It matches "radiantwave" inside "radiantwave-assets" too.
	MatchSubstring MatchMode = "substring"
)

// Upgradable is one entry of the upgradable listing, e.g.
// "radiantwave/stable 1.4.2 amd64 [upgradable from: 1.4.1]".
type Upgradable struct {
	Name string
	// Suites are the archives offering the candidate, e.g. stable or now.
	Suites      []string
	Version     string
	Arch        string
	FromVersion string
}

// Listing is a parsed upgradable listing together with its raw text.
type Listing struct {
	Raw      string
	Packages []Upgradable
}

const upgradableFromPrefix = "[upgradable from:"

// ParseListing parses `apt list --upgradable` output.
// Header and warning lines are skipped.
func ParseListing(raw string) *Listing {
	listing := &Listing{Raw: raw}

	for _, line := range strings.Split(raw, "\n") {
		entry, ok := parseLine(line)
		if !ok {
			continue
		}

		listing.Packages = append(listing.Packages, entry)
	}

	return listing
}

func parseLine(line string) (Upgradable, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Upgradable{}, false
	}

	name, suites, found := strings.Cut(fields[0], "/")
	if !found || name == "" {
		return Upgradable{}, false
	}

	entry := Upgradable{
		Name:    name,
		Suites:  strings.Split(suites, ","),
		Version: fields[1],
		Arch:    fields[2],
	}

	if index := strings.Index(line, upgradableFromPrefix); index >= 0 {
		from := line[index+len(upgradableFromPrefix):]
		entry.FromVersion = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(from), "]"))
	}

	return entry, true
}

// Find returns the entry for name using exact name comparison.
func (l *Listing) Find(name string) (Upgradable, bool) {
	for _, entry := range l.Packages {
		if entry.Name == name {
			return entry, true
		}
	}

	return Upgradable{}, false
}

// Has reports whether name has a pending upgrade under the given mode.
// Unknown modes behave as MatchExact.
func (l *Listing) Has(name string, mode MatchMode) bool {
	if l == nil || name == "" {
		return false
	}

	if mode == MatchSubstring {
		return strings.Contains(l.Raw, name)
	}

	_, ok := l.Find(name)

	return ok
}
