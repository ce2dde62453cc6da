// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pretty/config.go
// Summary: The validated configuration value and its named defaults.

package pretty

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/internal/ansi"
	"github.com/framegrace/texelcat/internal/highlight"
	"github.com/framegrace/texelcat/internal/termcap"
	"github.com/framegrace/texelcat/linerange"
	"github.com/framegrace/texelcat/output"
	"github.com/framegrace/texelcat/syntaxmap"
)

// Components is the set of active decorations.
type Components uint8

const (
	Grid Components = 1 << iota
	Header
	Numbers
	Footer

	// Plain disables every decoration.
	Plain Components = 0
	// Full enables every decoration.
	Full = Grid | Header | Numbers | Footer
)

// Has reports whether every component in x is set.
func (c Components) Has(x Components) bool { return c&x == x }

func (c Components) String() string {
	if c == Plain {
		return "plain"
	}
	var names []string
	for _, n := range []struct {
		bit  Components
		name string
	}{{Grid, "grid"}, {Header, "header"}, {Numbers, "numbers"}, {Footer, "footer"}} {
		if c.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ParseComponents reads a comma-separated component list. "plain" anywhere
// wins over everything else; "auto" and "full" select Full; "changes" is
// accepted and ignored.
func ParseComponents(s string) (Components, error) {
	var c Components
	plain := false
	for _, tok := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(tok)) {
		case "auto", "full":
			c |= Full
		case "grid":
			c |= Grid
		case "header":
			c |= Header
		case "numbers":
			c |= Numbers
		case "footer":
			c |= Footer
		case "changes":
		case "plain":
			plain = true
		default:
			return 0, configError("style", "unknown component '%s'", strings.TrimSpace(tok))
		}
	}
	if plain {
		return Plain, nil
	}
	return c, nil
}

// WrapMode selects how long lines are handled.
type WrapMode int

const (
	// WrapNone leaves long lines to the terminal.
	WrapNone WrapMode = iota
	// WrapCharacter splits long lines at the terminal width.
	WrapCharacter
)

func (w WrapMode) String() string {
	if w == WrapCharacter {
		return "character"
	}
	return "never"
}

// ParseWrapMode accepts character, never and none.
func ParseWrapMode(s string) (WrapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "character":
		return WrapCharacter, nil
	case "never", "none":
		return WrapNone, nil
	}
	return 0, configError("wrap", "unknown wrap mode '%s'", s)
}

// Config is every knob of a print run. Build it from DefaultConfig, change
// what you need and hand it to New, which validates it.
type Config struct {
	// Language forces the syntax; "" detects it.
	Language string
	// ShowNonprintable replaces whitespace and control bytes with markers.
	ShowNonprintable bool
	// TermWidth bounds wrapping and rules; 0 probes Stdout.
	TermWidth int
	// TabWidth expands tabs to multiples of it; 0 passes tabs through.
	TabWidth int
	// LoopThrough copies input verbatim, like cat.
	LoopThrough bool
	// Colored enables escape sequences.
	Colored bool
	// TrueColor emits 24-bit colour instead of the 256-colour palette.
	TrueColor bool
	// Italics allows the italic attribute.
	Italics bool

	Components Components
	Wrap       WrapMode
	Paging     output.PagingMode
	// Pager is the pager command line; "" means less.
	Pager string

	Ranges  linerange.Set
	Theme   string
	Mapping *syntaxmap.Mapping

	// ContextWindow caps the lines carried as lexer history while the lexer
	// has not returned to its root state.
	ContextWindow int

	// Assets is shared across printers; nil loads the default provider.
	Assets *assets.Provider

	Stdin  io.Reader
	Stdout io.Writer
	// Stderr receives warnings, per-file errors and ErrorStreamOnly output.
	Stderr io.Writer
}

// DefaultConfig returns the defaults: full decorations, colour on, colour
// depth from the environment, no wrapping, paging only when the content does
// not fit one screen.
func DefaultConfig() Config {
	return Config{
		Colored:       true,
		TrueColor:     termcap.ColorLevel(os.Getenv) == ansi.ColorTrue,
		Components:    Full,
		Wrap:          WrapNone,
		Paging:        output.QuitIfOneScreen,
		Theme:         assets.DefaultTheme,
		ContextWindow: highlight.DefaultWindow,
	}
}

// Validate rejects impossible values and fills in derived ones.
func (c *Config) Validate() error {
	if c.TabWidth < 0 {
		return configError("tab width", "%d is negative", c.TabWidth)
	}
	if c.TermWidth < 0 {
		return configError("terminal width", "%d is negative", c.TermWidth)
	}
	if c.ContextWindow < 0 {
		return configError("context window", "%d is negative", c.ContextWindow)
	}
	if c.Components&^Full != 0 {
		return configError("style", "unknown component bits %#x", uint8(c.Components&^Full))
	}
	if c.Wrap != WrapNone && c.Wrap != WrapCharacter {
		return configError("wrap", "unknown wrap mode %d", int(c.Wrap))
	}
	switch c.Paging {
	case output.Always, output.QuitIfOneScreen, output.Never, output.ErrorStreamOnly:
	default:
		return configError("paging", "unknown paging mode %d", int(c.Paging))
	}
	if c.LoopThrough && !c.Ranges.Empty() {
		return configError("line range", "cannot be combined with loop-through output")
	}

	if c.Theme == "" {
		c.Theme = assets.DefaultTheme
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	return nil
}

func (c *Config) colorMode() ansi.ColorMode {
	switch {
	case !c.Colored:
		return ansi.ColorNone
	case c.TrueColor:
		return ansi.ColorTrue
	}
	return ansi.Color256
}

func (c *Config) String() string {
	return fmt.Sprintf("style=%s theme=%s wrap=%s paging=%s tabs=%d ranges=%s",
		c.Components, c.Theme, c.Wrap, c.Paging, c.TabWidth, c.Ranges)
}
