// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/preprocess/preprocess.go
// Summary: Per-line span transforms applied before decoration: visible
// markers for non-printable bytes, tab expansion and width-aware wrapping.

package preprocess

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/framegrace/texelcat/internal/ansi"
)

var markers = map[rune]string{
	' ':    "·",
	'\n':   "␊",
	'\r':   "␍",
	'\x00': "␀",
	'\x07': "␇",
	'\x08': "␈",
	'\x1b': "␛",
}

// ReplaceNonprintable substitutes visible markers for whitespace, line
// terminators and control characters. Tabs become an arrow reaching the next
// tab stop of tabWidth; invalid bytes are shown as \xNN. Valid multi-byte
// text passes through untouched.
func ReplaceNonprintable(spans []ansi.Span, tabWidth int) []ansi.Span {
	out := make([]ansi.Span, 0, len(spans))
	col := 0
	for _, s := range spans {
		var b strings.Builder
		text := s.Text
		for i := 0; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			switch {
			case r == utf8.RuneError && size == 1:
				esc := fmt.Sprintf("\\x%02X", text[i])
				b.WriteString(esc)
				col += len(esc)
			case r == '\t':
				arrow := tabArrow(tabWidth, col)
				b.WriteString(arrow)
				col += runewidth.StringWidth(arrow)
			default:
				if m, ok := markers[r]; ok {
					b.WriteString(m)
					col++
				} else {
					b.WriteString(text[i : i+size])
					col += runewidth.RuneWidth(r)
				}
			}
			i += size
		}
		out = append(out, ansi.Span{Text: b.String(), Style: s.Style})
	}
	return out
}

func tabArrow(tabWidth, col int) string {
	if tabWidth <= 0 {
		return "↹"
	}
	n := tabWidth - col%tabWidth
	if n == 1 {
		return "↹"
	}
	return "├" + strings.Repeat("─", n-2) + "┤"
}

// ExpandTabs replaces tabs with spaces up to the next multiple of width,
// counting display columns across the whole line. A width of 0 leaves tabs
// alone.
func ExpandTabs(spans []ansi.Span, width int) []ansi.Span {
	if width <= 0 {
		return spans
	}
	out := make([]ansi.Span, 0, len(spans))
	col := 0
	for _, s := range spans {
		if !strings.ContainsRune(s.Text, '\t') {
			col += runewidth.StringWidth(s.Text)
			out = append(out, s)
			continue
		}
		var b strings.Builder
		text := s.Text
		for i := 0; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			if r == '\t' {
				n := width - col%width
				b.WriteString(strings.Repeat(" ", n))
				col += n
			} else {
				b.WriteString(text[i : i+size])
				col += runewidth.RuneWidth(r)
			}
			i += size
		}
		out = append(out, ansi.Span{Text: b.String(), Style: s.Style})
	}
	return out
}

// TrimNewline drops a trailing "\n" or "\r\n" from spans. The two bytes
// may sit in different spans.
func TrimNewline(spans []ansi.Span) []ansi.Span {
	out, ok := trimSuffix(spans, "\n")
	if !ok {
		return spans
	}
	out, _ = trimSuffix(out, "\r")
	return out
}

func trimSuffix(spans []ansi.Span, suffix string) ([]ansi.Span, bool) {
	if len(spans) == 0 || !strings.HasSuffix(spans[len(spans)-1].Text, suffix) {
		return spans, false
	}
	last := spans[len(spans)-1]
	out := append([]ansi.Span(nil), spans[:len(spans)-1]...)
	if text := strings.TrimSuffix(last.Text, suffix); text != "" {
		out = append(out, ansi.Span{Text: text, Style: last.Style})
	}
	return out, true
}

// Width is the visible display width of spans, ignoring their styles.
func Width(spans []ansi.Span) int {
	w := 0
	for _, s := range spans {
		w += uniseg.StringWidth(s.Text)
	}
	return w
}

// Wrap splits spans into rows no wider than width, breaking between grapheme
// clusters. Each row starts in the style active at its split point. A cluster
// wider than width gets a row of its own. A width below 1 disables wrapping.
func Wrap(spans []ansi.Span, width int) [][]ansi.Span {
	if width < 1 || Width(spans) <= width {
		return [][]ansi.Span{spans}
	}

	var rows [][]ansi.Span
	var row []ansi.Span
	col := 0
	for _, s := range spans {
		var cur strings.Builder
		flush := func() {
			if cur.Len() > 0 {
				row = append(row, ansi.Span{Text: cur.String(), Style: s.Style})
				cur.Reset()
			}
		}
		rest := s.Text
		state := -1
		for rest != "" {
			var cluster string
			var w int
			cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
			if col > 0 && col+w > width {
				flush()
				rows = append(rows, row)
				row = nil
				col = 0
			}
			cur.WriteString(cluster)
			col += w
		}
		flush()
	}
	return append(rows, row)
}
