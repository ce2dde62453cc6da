// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/decor/decor.go
// Summary: Gutter, header and footer text surrounding highlighted rows.

package decor

import (
	"strconv"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelcat/internal/ansi"
)

// MinNumberWidth is the narrowest line-number column.
const MinNumberWidth = 4

// DefaultRuleWidth is used for rules when the terminal width is unknown.
const DefaultRuleWidth = 80

// Options selects the decorations.
type Options struct {
	Grid    bool
	Header  bool
	Numbers bool
	Footer  bool

	// NumberWidth is the digit count of the line-number column.
	NumberWidth int
	// TermWidth bounds the rules; 0 means DefaultRuleWidth.
	TermWidth int

	Encoder     ansi.Encoder
	GutterStyle ansi.Style
}

// Decorator renders decorations for one file.
type Decorator struct {
	opts   Options
	prefix int // columns before the grid bar
	width  int
}

// NumberWidth returns the column width needed for line numbers up to bound.
func NumberWidth(bound int) int {
	w := len(strconv.Itoa(bound))
	if w < MinNumberWidth {
		return MinNumberWidth
	}
	return w
}

// New builds a decorator.
func New(opts Options) *Decorator {
	if opts.NumberWidth < MinNumberWidth {
		opts.NumberWidth = MinNumberWidth
	}
	d := &Decorator{opts: opts}
	if opts.Numbers {
		d.prefix = opts.NumberWidth + 1
	}
	d.width = xansi.StringWidth(d.Gutter(1, false))
	return d
}

// Widen grows the number column when n needs more digits than it has and
// reports whether the gutter width changed.
func (d *Decorator) Widen(n int) bool {
	if !d.opts.Numbers {
		return false
	}
	w := NumberWidth(n)
	if w <= d.opts.NumberWidth {
		return false
	}
	d.opts.NumberWidth = w
	d.prefix = w + 1
	d.width = xansi.StringWidth(d.Gutter(n, false))
	return true
}

// Plain reports whether no decoration is enabled.
func (d *Decorator) Plain() bool {
	o := d.opts
	return !o.Grid && !o.Header && !o.Numbers && !o.Footer
}

// GutterWidth is the visible width of every gutter.
func (d *Decorator) GutterWidth() int { return d.width }

// Gutter returns the left decoration of a row showing line n. Continuation
// rows of a wrapped line leave the number blank.
func (d *Decorator) Gutter(n int, continuation bool) string {
	var b strings.Builder
	if d.opts.Numbers {
		if continuation {
			b.WriteString(strings.Repeat(" ", d.opts.NumberWidth))
		} else {
			num := strconv.Itoa(n)
			b.WriteString(strings.Repeat(" ", max(0, d.opts.NumberWidth-len(num))))
			b.WriteString(num)
		}
		b.WriteByte(' ')
	}
	if d.opts.Grid {
		b.WriteString("│ ")
	}
	if b.Len() == 0 {
		return ""
	}
	return d.opts.Encoder.Paint(d.opts.GutterStyle, b.String())
}

// Header returns the block announcing a file, one line per element, each
// terminated by "\n". It is empty when the header is disabled.
func (d *Decorator) Header(title string, binary bool) string {
	if !d.opts.Header {
		return ""
	}
	enc := d.opts.Encoder
	line := "File: " + enc.Paint(ansi.Style{Bold: true}, title)
	if binary {
		line += "   <BINARY>"
	}

	var b strings.Builder
	if d.opts.Grid {
		b.WriteString(d.rule('┬'))
		b.WriteString(d.paint(strings.Repeat(" ", d.prefix) + "│ "))
	}
	b.WriteString(line)
	b.WriteByte('\n')
	if d.opts.Grid {
		b.WriteString(d.rule('┼'))
	}
	return b.String()
}

// Footer returns the closing rule, or "" when disabled.
func (d *Decorator) Footer() string {
	if !d.opts.Footer || !d.opts.Grid {
		return ""
	}
	return d.rule('┴')
}

// Separator returns the rule drawn between files when no header marks the
// boundary.
func (d *Decorator) Separator() string {
	if !d.opts.Grid {
		return ""
	}
	return d.rule('─')
}

func (d *Decorator) rule(junction rune) string {
	total := d.opts.TermWidth
	if total <= 0 {
		total = DefaultRuleWidth
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("─", d.prefix))
	b.WriteRune(junction)
	if rest := total - d.prefix - runewidth.RuneWidth(junction); rest > 0 {
		b.WriteString(strings.Repeat("─", rest))
	}
	return d.paint(b.String()) + "\n"
}

func (d *Decorator) paint(s string) string {
	return d.opts.Encoder.Paint(d.opts.GutterStyle, s)
}
