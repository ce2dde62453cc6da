// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package linerange

import (
	"sort"
	"strings"
)

// Set is an ordered collection of ranges sorted ascending by start. The zero
// value selects every line.
type Set struct {
	ranges []Range
}

// NewSet sorts a copy of ranges by start (then end).
func NewSet(ranges ...Range) Set {
	if len(ranges) == 0 {
		return Set{}
	}
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	return Set{ranges: sorted}
}

// Empty reports whether the set selects every line.
func (s Set) Empty() bool { return len(s.ranges) == 0 }

// Ranges returns a copy of the sorted ranges.
func (s Set) Ranges() []Range {
	out := make([]Range, len(s.ranges))
	copy(out, s.ranges)
	return out
}

// MaxBound returns the largest end line when every range is bounded.
func (s Set) MaxBound() (int, bool) {
	if len(s.ranges) == 0 {
		return 0, false
	}
	maxEnd := 0
	for _, r := range s.ranges {
		if !r.Bounded() {
			return 0, false
		}
		if r.End > maxEnd {
			maxEnd = r.End
		}
	}
	return maxEnd, true
}

// Check classifies n without any carried state.
func (s Set) Check(n int) Result {
	if len(s.ranges) == 0 {
		return InRange
	}
	for _, r := range s.ranges {
		if r.Start > n {
			break
		}
		if r.Contains(n) {
			return InRange
		}
	}
	if maxEnd, ok := s.MaxBound(); ok && n > maxEnd {
		return AfterLastRange
	}
	return OutsideRange
}

func (s Set) String() string {
	parts := make([]string, len(s.ranges))
	for i, r := range s.ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Filter returns a cursor over the set for strictly increasing line numbers.
func (s Set) Filter() *Filter {
	return &Filter{ranges: s.ranges}
}

// Filter classifies a monotonically increasing sequence of line numbers.
// Ranges that can no longer match are dropped from the front, so each call
// only looks at live ranges.
type Filter struct {
	ranges []Range
	next   int
	done   bool
}

// Check classifies n. Once AfterLastRange is returned it is returned for
// every later call.
func (f *Filter) Check(n int) Result {
	if f.done {
		return AfterLastRange
	}
	if len(f.ranges) == 0 {
		return InRange
	}
	for f.next < len(f.ranges) && f.ranges[f.next].End < n {
		f.next++
	}
	if f.next == len(f.ranges) {
		// Unbounded ranges are never skipped, so every range has ended.
		f.done = true
		return AfterLastRange
	}
	for _, r := range f.ranges[f.next:] {
		if r.Start > n {
			break
		}
		if r.Contains(n) {
			return InRange
		}
	}
	return OutsideRange
}
