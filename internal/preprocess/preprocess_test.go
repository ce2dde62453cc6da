// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package preprocess

import (
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelcat/internal/ansi"
)

var (
	red  = ansi.Style{Fg: chroma.MustParseColour("#ff0000")}
	blue = ansi.Style{Fg: chroma.MustParseColour("#0000ff")}
)

func plain(text string) []ansi.Span { return []ansi.Span{{Text: text}} }

func TestReplaceNonprintable(t *testing.T) {
	got := ReplaceNonprintable(plain("a\tb c\n"), 4)
	assert.Equal(t, "a├─┤b·c␊", ansi.Text(got))

	got = ReplaceNonprintable(plain("abc\tx"), 4)
	assert.Equal(t, "abc↹x", ansi.Text(got))

	got = ReplaceNonprintable(plain("\x00\x07\x08\x1b\r"), 4)
	assert.Equal(t, "␀␇␈␛␍", ansi.Text(got))

	got = ReplaceNonprintable(plain("\t"), 0)
	assert.Equal(t, "↹", ansi.Text(got))
}

func TestReplaceNonprintableKeepsMultibyte(t *testing.T) {
	got := ReplaceNonprintable(plain("héllo→中"), 4)
	assert.Equal(t, "héllo→中", ansi.Text(got))

	got = ReplaceNonprintable(plain("a\xffb\xc3"), 4)
	assert.Equal(t, `a\xFFb\xC3`, ansi.Text(got))
}

func TestReplaceNonprintableKeepsStyles(t *testing.T) {
	got := ReplaceNonprintable([]ansi.Span{{Text: "x ", Style: red}, {Text: "\ty", Style: blue}}, 4)
	require.Len(t, got, 2)
	assert.Equal(t, ansi.Span{Text: "x·", Style: red}, got[0])
	assert.Equal(t, ansi.Span{Text: "├┤y", Style: blue}, got[1])
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "a   b", ansi.Text(ExpandTabs(plain("a\tb"), 4)))
	assert.Equal(t, "ab  c   d", ansi.Text(ExpandTabs(plain("ab\tc\td"), 4)))
	assert.Equal(t, "中  x", ansi.Text(ExpandTabs(plain("中\tx"), 4)))
	assert.Equal(t, "a\xff      b", ansi.Text(ExpandTabs(plain("a\xff\tb"), 8)))

	across := ExpandTabs([]ansi.Span{{Text: "ab", Style: red}, {Text: "\tc", Style: blue}}, 4)
	assert.Equal(t, []ansi.Span{{Text: "ab", Style: red}, {Text: "  c", Style: blue}}, across)
}

func TestExpandTabsIdempotent(t *testing.T) {
	in := plain("\tif x {\n\t\treturn\t1\n")
	expanded := ExpandTabs(in, 4)
	assert.Equal(t, expanded, ExpandTabs(expanded, 0))
	assert.Equal(t, expanded, ExpandTabs(expanded, 4))
	assert.Equal(t, in, ExpandTabs(in, 0))
}

func TestTrimNewline(t *testing.T) {
	assert.Equal(t, plain("ab"), TrimNewline(plain("ab\n")))
	assert.Equal(t, plain("ab"), TrimNewline(plain("ab\r\n")))
	assert.Equal(t, plain("ab\r"), TrimNewline(plain("ab\r")))
	assert.Equal(t, []ansi.Span{{Text: "ab", Style: red}},
		TrimNewline([]ansi.Span{{Text: "ab\r", Style: red}, {Text: "\n"}}))
	assert.Empty(t, TrimNewline(plain("\n")))
}

func TestWrapCarriesStyle(t *testing.T) {
	rows := Wrap([]ansi.Span{{Text: "hello", Style: red}, {Text: "world", Style: blue}}, 3)
	require.Len(t, rows, 4)
	assert.Equal(t, []ansi.Span{{Text: "hel", Style: red}}, rows[0])
	assert.Equal(t, []ansi.Span{{Text: "lo", Style: red}, {Text: "w", Style: blue}}, rows[1])
	assert.Equal(t, []ansi.Span{{Text: "orl", Style: blue}}, rows[2])
	assert.Equal(t, []ansi.Span{{Text: "d", Style: blue}}, rows[3])
}

func TestWrapRedistributes(t *testing.T) {
	in := []ansi.Span{{Text: "func 中文 main() {", Style: red}, {Text: " return ☃ }", Style: blue}}
	for width := 1; width <= 30; width++ {
		rows := Wrap(in, width)
		total := 0
		for _, row := range rows {
			w := Width(row)
			total += w
			if w > width {
				assert.Len(t, row, 1, "only a lone wide glyph may overflow")
			}
		}
		assert.Equal(t, Width(in), total, "width %d", width)

		var joined []ansi.Span
		for _, row := range rows {
			joined = append(joined, row...)
		}
		assert.Equal(t, ansi.Text(in), ansi.Text(joined), "width %d", width)
	}
}

func TestWrapWideGlyphAlone(t *testing.T) {
	rows := Wrap(plain("中a"), 1)
	require.Len(t, rows, 2)
	assert.Equal(t, "中", ansi.Text(rows[0]))
	assert.Equal(t, "a", ansi.Text(rows[1]))
}

func TestWrapDisabled(t *testing.T) {
	in := plain("a long line that is not split")
	assert.Equal(t, [][]ansi.Span{in}, Wrap(in, 0))
	assert.Equal(t, [][]ansi.Span{nil}, Wrap(nil, 10))
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 0, Width(nil))
	assert.Equal(t, 7, Width([]ansi.Span{{Text: "ab"}, {Text: "中文c"}}))
}
