// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/highlight/highlight.go
// Summary: Block-at-a-time chroma highlighting. Lines are tokenised together
// with the history carried since the lexer was last back in its root state.

package highlight

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/framegrace/texelcat/internal/ansi"
)

// DefaultWindow caps the history carried when no resync point is found.
const DefaultWindow = 2000

// resyncDepths are the candidate history sizes tried after each block,
// smallest first.
var resyncDepths = []int{1, 8, 32, 128}

// Highlighter turns raw lines into styled spans. It is stateful and must be
// fed every physical line of one input in order, whether or not the line is
// printed.
type Highlighter struct {
	lexer  chroma.Lexer
	style  *chroma.Style
	window int
	plain  bool

	// history holds the lines since the last point where re-lexing from the
	// root state gives the same tokens as lexing from the start.
	history []string
	base    ansi.Style
	cache   map[chroma.TokenType]ansi.Style
}

// New returns a highlighter for lexer and style. A nil lexer falls back to
// plain text and a window below 1 uses DefaultWindow.
func New(lexer chroma.Lexer, style *chroma.Style, window int) *Highlighter {
	if lexer == nil {
		lexer = lexers.Fallback
	}
	if window < 1 {
		window = DefaultWindow
	}
	h := &Highlighter{
		lexer:  chroma.Coalesce(lexer),
		style:  style,
		window: window,
		plain:  IsPlain(lexer),
		cache:  make(map[chroma.TokenType]ansi.Style),
	}
	if style != nil {
		h.base = ansi.FromEntry(style.Get(chroma.Text))
	}
	return h
}

// Highlight styles one physical line. It is HighlightBlock for a block of
// one.
func (h *Highlighter) Highlight(line string) []ansi.Span {
	return h.HighlightBlock([]string{line})[0]
}

// HighlightBlock styles consecutive physical lines that are tokenised
// together, so a construct opened and closed within the block is styled
// across all of its lines. Lines may carry their "\n" or "\r\n" terminator;
// the spans of each line cover every byte of it, including invalid UTF-8,
// in order.
func (h *Highlighter) HighlightBlock(lines []string) [][]ansi.Span {
	out := make([][]ansi.Span, len(lines))
	bodies := make([]string, len(lines))
	for i, line := range lines {
		bodies[i] = strings.TrimSuffix(line, "\n")
	}

	if h.plain {
		for i, body := range bodies {
			out[i] = h.finish(h.single(body), lines[i], body)
		}
		return out
	}

	all := append(append(make([]string, 0, len(h.history)+len(bodies)), h.history...), bodies...)
	types, starts, ok := h.runeTypes(all)
	if !ok {
		h.history = nil
		for i, body := range bodies {
			out[i] = h.finish(h.single(body), lines[i], body)
		}
		return out
	}

	skip := len(h.history)
	for i, body := range bodies {
		out[i] = h.finish(h.split(body, types[starts[skip+i]:]), lines[i], body)
	}
	h.resync(all, types, starts)
	return out
}

// IsPlain reports whether lexer is the plain-text lexer, which needs no
// tokenising.
func IsPlain(lexer chroma.Lexer) bool {
	if lexer == nil {
		return true
	}
	switch lexer.Config().Name {
	case "plaintext", "fallback":
		return true
	}
	return false
}

// Cursor returns a copy of the carried history, oldest line first.
func (h *Highlighter) Cursor() []string {
	out := make([]string, len(h.history))
	copy(out, h.history)
	return out
}

// resync keeps the shortest tail of all whose tokens are reproduced by
// lexing it on its own from the root state. Without such a tail everything
// is kept, up to the window.
func (h *Highlighter) resync(all []string, types []chroma.TokenType, starts []int) {
	n := len(all)
	for _, depth := range resyncDepths {
		p := n - depth
		if p < 1 {
			break
		}
		tail, _, ok := h.runeTypes(all[p:])
		if ok && sameTypes(tail, types[starts[p]:]) {
			h.history = append(h.history[:0:0], all[p:]...)
			return
		}
	}
	if n > h.window {
		all = all[n-h.window:]
	}
	h.history = append(h.history[:0:0], all...)
}

// runeTypes lexes the lines joined by "\n" and returns the token type of
// every rune along with the rune offset at which each line starts.
func (h *Highlighter) runeTypes(lines []string) ([]chroma.TokenType, []int, bool) {
	var sb strings.Builder
	starts := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		starts[i] = pos
		sb.WriteString(line)
		sb.WriteByte('\n') // line-oriented patterns expect a terminator
		pos += utf8.RuneCountInString(line) + 1
	}

	tokens, err := chroma.Tokenise(h.lexer, &chroma.TokeniseOptions{State: "root"}, sb.String())
	if err != nil {
		return nil, nil, false
	}
	types := make([]chroma.TokenType, pos)
	for i := range types {
		types[i] = chroma.Text
	}
	at := 0
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType || at >= pos {
			break
		}
		end := min(pos, at+utf8.RuneCountInString(tok.Value))
		for i := at; i < end; i++ {
			types[i] = tok.Type
		}
		at = end
	}
	return types, starts, true
}

func sameTypes(a, b []chroma.TokenType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// split styles body from the token types starting at its first rune.
func (h *Highlighter) split(body string, types []chroma.TokenType) []ansi.Span {
	units := decodeUnits(body)
	spans := make([]ansi.Span, 0, 4)
	for i := 0; i < len(units)-1; i++ {
		st := h.base
		if i < len(types) {
			st = h.styleFor(types[i])
		}
		spans = appendSpan(spans, ansi.Span{Text: body[units[i]:units[i+1]], Style: st})
	}
	return spans
}

// finish appends the line terminator in the base style.
func (h *Highlighter) finish(spans []ansi.Span, line, body string) []ansi.Span {
	if term := line[len(body):]; term != "" {
		spans = appendSpan(spans, ansi.Span{Text: term, Style: h.base})
	}
	return spans
}

func (h *Highlighter) single(body string) []ansi.Span {
	if body == "" {
		return nil
	}
	return []ansi.Span{{Text: body, Style: h.base}}
}

func (h *Highlighter) styleFor(tt chroma.TokenType) ansi.Style {
	if h.style == nil {
		return ansi.Style{}
	}
	if st, ok := h.cache[tt]; ok {
		return st
	}
	st := ansi.FromEntry(h.style.Get(tt))
	h.cache[tt] = st
	return st
}

// decodeUnits returns the byte offset of every rune the lexer sees in s,
// plus len(s). An invalid byte is one unit, matching []rune(s).
func decodeUnits(s string) []int {
	units := make([]int, 0, len(s)+1)
	for i := 0; i < len(s); {
		units = append(units, i)
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return append(units, len(s))
}

func appendSpan(spans []ansi.Span, s ansi.Span) []ansi.Span {
	if s.Text == "" {
		return spans
	}
	if last := len(spans) - 1; last >= 0 && spans[last].Style == s.Style {
		spans[last].Text += s.Text
		return spans
	}
	return append(spans, s)
}
