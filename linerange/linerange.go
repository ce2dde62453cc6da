// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: linerange/linerange.go
// Summary: Inclusive line ranges and the classifier used by the printer to
// decide which physical lines to emit.

package linerange

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unbounded marks a range that extends to the end of the input.
const Unbounded = math.MaxInt

// ErrInvalidRange is wrapped by every parse failure.
var ErrInvalidRange = errors.New("invalid line range")

// Result classifies a line number against a Set.
type Result int

const (
	InRange Result = iota
	OutsideRange
	AfterLastRange
)

func (r Result) String() string {
	switch r {
	case InRange:
		return "in-range"
	case OutsideRange:
		return "outside-range"
	case AfterLastRange:
		return "after-last-range"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Range is an inclusive, 1-based line interval.
type Range struct {
	Start int
	End   int
}

// New returns the range [start, end]. Use Unbounded for an open end.
func New(start, end int) (Range, error) {
	r := Range{Start: start, End: end}
	if err := r.validate(); err != nil {
		return Range{}, err
	}
	return r, nil
}

// From returns the open range [start, end of input].
func From(start int) Range { return Range{Start: start, End: Unbounded} }

func (r Range) validate() error {
	if r.Start < 1 {
		return fmt.Errorf("%w: start %d must be at least 1", ErrInvalidRange, r.Start)
	}
	if r.End < r.Start {
		return fmt.Errorf("%w: end %d before start %d", ErrInvalidRange, r.End, r.Start)
	}
	return nil
}

// Bounded reports whether the range has a finite end.
func (r Range) Bounded() bool { return r.End != Unbounded }

// Contains reports whether n lies inside the range.
func (r Range) Contains(n int) bool { return n >= r.Start && n <= r.End }

func (r Range) String() string {
	if !r.Bounded() {
		return fmt.Sprintf("%d:", r.Start)
	}
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Parse reads one of the accepted forms:
//
//	N      the single line N
//	N:M    lines N through M
//	:M     lines 1 through M
//	N:     line N to the end
//	N:+K   line N and the K lines after it
func Parse(s string) (Range, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Range{}, fmt.Errorf("%w: empty range", ErrInvalidRange)
	}

	startText, endText, hasColon := strings.Cut(text, ":")
	if !hasColon {
		n, err := parseLine(text)
		if err != nil {
			return Range{}, err
		}
		return New(n, n)
	}

	start := 1
	if startText != "" {
		n, err := parseLine(startText)
		if err != nil {
			return Range{}, err
		}
		start = n
	}

	switch {
	case endText == "":
		if startText == "" {
			return Range{}, fmt.Errorf("%w: %q has neither start nor end", ErrInvalidRange, s)
		}
		return New(start, Unbounded)
	case strings.HasPrefix(endText, "+"):
		if startText == "" {
			return Range{}, fmt.Errorf("%w: %q needs a start for a relative end", ErrInvalidRange, s)
		}
		k, err := strconv.Atoi(endText[1:])
		if err != nil || k < 0 {
			return Range{}, fmt.Errorf("%w: bad relative end in %q", ErrInvalidRange, s)
		}
		return New(start, start+k)
	default:
		end, err := parseLine(endText)
		if err != nil {
			return Range{}, err
		}
		return New(start, end)
	}
}

func parseLine(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a line number", ErrInvalidRange, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: line numbers start at 1, got %d", ErrInvalidRange, n)
	}
	return n, nil
}

// ParseAll parses every entry, failing on the first invalid one.
func ParseAll(specs []string) (Set, error) {
	ranges := make([]Range, 0, len(specs))
	for _, s := range specs {
		r, err := Parse(s)
		if err != nil {
			return Set{}, err
		}
		ranges = append(ranges, r)
	}
	return NewSet(ranges...), nil
}
