// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: syntaxmap/syntaxmap.go
// Summary: Ordered glob rewrite table applied to file names and extensions
// before syntax lookup.

package syntaxmap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidMapping is returned for entries that cannot be parsed or whose
// pattern is not a valid glob.
var ErrInvalidMapping = errors.New("invalid syntax mapping")

// Entry is a single rewrite rule.
type Entry struct {
	Pattern     string
	Replacement string
}

// Mapping is an ordered list of rewrite rules. Insertion order is match
// priority: the first inserted entry whose pattern matches wins.
//
// The zero value is an empty mapping that rewrites nothing.
type Mapping struct {
	entries []Entry
}

// New returns a mapping holding the given entries in order.
func New(entries ...Entry) (*Mapping, error) {
	m := &Mapping{}
	for _, e := range entries {
		if err := m.Insert(e.Pattern, e.Replacement); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Insert appends a rule. The pattern uses filepath.Match syntax and is
// validated immediately so that a bad glob fails at configuration time.
func (m *Mapping) Insert(pattern, replacement string) error {
	if pattern == "" || replacement == "" {
		return fmt.Errorf("%w: empty pattern or replacement in %q:%q", ErrInvalidMapping, pattern, replacement)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("%w: pattern %q: %v", ErrInvalidMapping, pattern, err)
	}
	m.entries = append(m.entries, Entry{Pattern: pattern, Replacement: replacement})
	return nil
}

// Replace returns the replacement of the first rule matching candidate, or
// candidate unchanged when nothing matches.
func (m *Mapping) Replace(candidate string) string {
	if m == nil || candidate == "" {
		return candidate
	}
	for _, e := range m.entries {
		if ok, _ := filepath.Match(e.Pattern, candidate); ok {
			return e.Replacement
		}
	}
	return candidate
}

// Entries returns a copy of the rules in priority order.
func (m *Mapping) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Clone returns an independent copy.
func (m *Mapping) Clone() *Mapping {
	return &Mapping{entries: m.Entries()}
}

// Len reports the number of rules.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Parse splits a "pattern:replacement" command-line entry. The last colon
// separates the two halves so patterns may themselves contain colons.
func Parse(spec string) (Entry, error) {
	idx := strings.LastIndex(spec, ":")
	if idx <= 0 || idx == len(spec)-1 {
		return Entry{}, fmt.Errorf("%w: %q, expected pattern:syntax", ErrInvalidMapping, spec)
	}
	e := Entry{
		Pattern:     strings.TrimSpace(spec[:idx]),
		Replacement: strings.TrimSpace(spec[idx+1:]),
	}
	if _, err := filepath.Match(e.Pattern, ""); err != nil {
		return Entry{}, fmt.Errorf("%w: pattern %q: %v", ErrInvalidMapping, e.Pattern, err)
	}
	return e, nil
}
