// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/ansi/ansi.go
// Summary: Styled spans and the SGR encoder that turns them into terminal
// escape sequences at the colour depth the terminal supports.

package ansi

import (
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/gdamore/tcell/v2"
)

// Style is the visual attributes of a span. The zero value is the
// terminal's default rendition.
type Style struct {
	Fg        chroma.Colour
	Bold      bool
	Italic    bool
	Underline bool
}

// IsZero reports whether the style leaves the terminal rendition untouched.
func (s Style) IsZero() bool { return s == (Style{}) }

// FromEntry converts a chroma style entry.
func FromEntry(entry chroma.StyleEntry) Style {
	return Style{
		Fg:        entry.Colour,
		Bold:      entry.Bold == chroma.Yes,
		Italic:    entry.Italic == chroma.Yes,
		Underline: entry.Underline == chroma.Yes,
	}
}

// Span is a run of text rendered with one style. Text holds the original
// input bytes and may contain invalid UTF-8.
type Span struct {
	Text  string
	Style Style
}

// Text concatenates the text of spans.
func Text(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// ColorMode is the colour depth used when encoding.
type ColorMode int

const (
	// ColorNone emits no escape sequences at all.
	ColorNone ColorMode = iota
	// Color256 maps colours onto the xterm 256-colour cube.
	Color256
	// ColorTrue emits 24-bit colour.
	ColorTrue
)

func (m ColorMode) String() string {
	switch m {
	case ColorNone:
		return "none"
	case Color256:
		return "256"
	case ColorTrue:
		return "truecolor"
	}
	return "unknown"
}

// Reset restores the default rendition.
const Reset = "\x1b[0m"

// Encoder renders spans as escaped text.
type Encoder struct {
	Mode    ColorMode
	Italics bool
}

// Enabled reports whether the encoder emits escape sequences.
func (e Encoder) Enabled() bool { return e.Mode != ColorNone }

// SGR returns the escape sequence selecting s, starting from a reset so
// attributes of the previous span never leak. It returns "" when colour is
// disabled.
func (e Encoder) SGR(s Style) string {
	if e.Mode == ColorNone {
		return ""
	}
	var b strings.Builder
	b.WriteString("\x1b[0")
	if s.Bold {
		b.WriteString(";1")
	}
	if s.Italic && e.Italics {
		b.WriteString(";3")
	}
	if s.Underline {
		b.WriteString(";4")
	}
	if s.Fg.IsSet() {
		switch e.Mode {
		case ColorTrue:
			b.WriteString(";38;2;")
			b.WriteString(strconv.Itoa(int(s.Fg.Red())))
			b.WriteByte(';')
			b.WriteString(strconv.Itoa(int(s.Fg.Green())))
			b.WriteByte(';')
			b.WriteString(strconv.Itoa(int(s.Fg.Blue())))
		case Color256:
			b.WriteString(";38;5;")
			b.WriteString(strconv.Itoa(Palette256(s.Fg)))
		}
	}
	b.WriteByte('m')
	return b.String()
}

// Paint wraps text in the style and a trailing reset.
func (e Encoder) Paint(s Style, text string) string {
	if e.Mode == ColorNone || text == "" {
		return text
	}
	return e.SGR(s) + text + Reset
}

// Render writes spans to b, switching styles only when they change, and
// closes with a reset when anything was styled.
func (e Encoder) Render(b *strings.Builder, spans []Span) {
	if e.Mode == ColorNone {
		for _, s := range spans {
			b.WriteString(s.Text)
		}
		return
	}
	styled := false
	var current Style
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		if !styled || s.Style != current {
			b.WriteString(e.SGR(s.Style))
			current = s.Style
			styled = true
		}
		b.WriteString(s.Text)
	}
	if styled {
		b.WriteString(Reset)
	}
}

var (
	paletteOnce sync.Once
	palette     []tcell.Color
	fitCache    sync.Map // chroma.Colour -> int
)

// Palette256 returns the xterm palette index closest to c. The sixteen
// system colours are skipped because terminals theme them freely.
func Palette256(c chroma.Colour) int {
	if idx, ok := fitCache.Load(c); ok {
		return idx.(int)
	}
	paletteOnce.Do(func() {
		palette = make([]tcell.Color, 0, 240)
		for i := 16; i < 256; i++ {
			palette = append(palette, tcell.PaletteColor(i))
		}
	})
	want := tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
	found := tcell.FindColor(want, palette)
	idx := int(found - tcell.ColorValid)
	fitCache.Store(c, idx)
	return idx
}
