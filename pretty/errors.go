// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pretty/errors.go
// Summary: The closed set of errors a print run can produce.

package pretty

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/framegrace/texelcat/linerange"
	"github.com/framegrace/texelcat/output"
)

// Kind classifies an Error.
type Kind int

const (
	// KindIO is a failure opening or reading one input, or writing output.
	KindIO Kind = iota + 1
	// KindAssetCache is a missing or corrupt asset cache; always recovered.
	KindAssetCache
	// KindUnknownTheme is an unknown theme name; recovered with a warning.
	KindUnknownTheme
	// KindUnknownSyntax is an unknown language; recovered as plain text.
	KindUnknownSyntax
	// KindInvalidRange is a line range that does not parse.
	KindInvalidRange
	// KindPagerSpawn is a pager that could not be started.
	KindPagerSpawn
	// KindBrokenPipe is a consumer that went away; printing ends quietly.
	KindBrokenPipe
	// KindInvalidConfig is a configuration value that fails validation.
	KindInvalidConfig
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindAssetCache:
		return "asset-cache"
	case KindUnknownTheme:
		return "unknown-theme"
	case KindUnknownSyntax:
		return "unknown-syntax"
	case KindInvalidRange:
		return "invalid-range"
	case KindPagerSpawn:
		return "pager-spawn"
	case KindBrokenPipe:
		return "broken-pipe"
	case KindInvalidConfig:
		return "invalid-config"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the error type returned by this package. Only the fields relevant
// to Kind are set.
type Error struct {
	Kind Kind
	// Input is the display name of the input (KindIO).
	Input string
	// Name is the theme, language or range text, or the cache path.
	Name string
	// Field is the configuration field (KindInvalidConfig).
	Field string
	// Command is the pager command (KindPagerSpawn).
	Command string
	Err     error
}

// Sentinels for errors.Is; they match any Error of the same Kind.
var (
	ErrIO            = &Error{Kind: KindIO}
	ErrAssetCache    = &Error{Kind: KindAssetCache}
	ErrUnknownTheme  = &Error{Kind: KindUnknownTheme}
	ErrUnknownSyntax = &Error{Kind: KindUnknownSyntax}
	ErrInvalidRange  = &Error{Kind: KindInvalidRange}
	ErrPagerSpawn    = &Error{Kind: KindPagerSpawn}
	ErrBrokenPipe    = &Error{Kind: KindBrokenPipe}
	ErrInvalidConfig = &Error{Kind: KindInvalidConfig}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindIO:
		msg = fmt.Sprintf("'%s'", e.Input)
	case KindAssetCache:
		msg = fmt.Sprintf("asset cache %s unusable", e.Name)
	case KindUnknownTheme:
		msg = fmt.Sprintf("unknown theme '%s'", e.Name)
	case KindUnknownSyntax:
		msg = fmt.Sprintf("unknown syntax '%s'", e.Name)
	case KindInvalidRange:
		msg = fmt.Sprintf("invalid line range '%s'", e.Name)
	case KindPagerSpawn:
		msg = fmt.Sprintf("could not start pager '%s'", e.Command)
	case KindBrokenPipe:
		msg = "output closed"
	case KindInvalidConfig:
		msg = fmt.Sprintf("invalid %s", e.Field)
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func ioError(input string, err error) error {
	if output.IsBrokenPipe(err) {
		return &Error{Kind: KindBrokenPipe, Err: err}
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		err = pathErr.Err
	}
	return &Error{Kind: KindIO, Input: input, Err: err}
}

func configError(field string, format string, args ...any) error {
	return &Error{Kind: KindInvalidConfig, Field: field, Err: fmt.Errorf(format, args...)}
}

// ParseRanges parses line range specifications into a set. Failures are
// KindInvalidRange.
func ParseRanges(specs []string) (linerange.Set, error) {
	var ranges []linerange.Range
	for _, s := range specs {
		r, err := linerange.Parse(s)
		if err != nil {
			return linerange.Set{}, &Error{Kind: KindInvalidRange, Name: s, Err: err}
		}
		ranges = append(ranges, r)
	}
	return linerange.NewSet(ranges...), nil
}

// IsBrokenPipe reports whether err only means the consumer went away.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, ErrBrokenPipe) || output.IsBrokenPipe(err)
}
