// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package decor

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelcat/internal/ansi"
)

func TestNumberWidth(t *testing.T) {
	assert.Equal(t, 4, NumberWidth(7))
	assert.Equal(t, 4, NumberWidth(9999))
	assert.Equal(t, 5, NumberWidth(10000))
}

func TestGutterNumbersAndGrid(t *testing.T) {
	d := New(Options{Grid: true, Numbers: true, NumberWidth: 4})
	assert.Equal(t, "  12 │ ", d.Gutter(12, false))
	assert.Equal(t, "     │ ", d.Gutter(12, true))
	assert.Equal(t, 7, d.GutterWidth())
}

func TestWidenNumberColumn(t *testing.T) {
	d := New(Options{Grid: true, Numbers: true, NumberWidth: 4})
	assert.False(t, d.Widen(9999))
	assert.Equal(t, 7, d.GutterWidth())

	assert.True(t, d.Widen(10000))
	assert.Equal(t, 8, d.GutterWidth())
	assert.Equal(t, "10000 │ ", d.Gutter(10000, false))
	assert.Equal(t, "   12 │ ", d.Gutter(12, false))
	assert.Equal(t, "      │ ", d.Gutter(10000, true))

	grid := New(Options{Grid: true})
	assert.False(t, grid.Widen(123456))
	assert.Equal(t, 2, grid.GutterWidth())
}

func TestGutterVariants(t *testing.T) {
	assert.Equal(t, "   3 ", New(Options{Numbers: true}).Gutter(3, false))
	assert.Equal(t, "│ ", New(Options{Grid: true}).Gutter(3, false))

	d := New(Options{})
	assert.Equal(t, "", d.Gutter(3, false))
	assert.Equal(t, 0, d.GutterWidth())
	assert.True(t, d.Plain())
}

func TestGutterStyledWidth(t *testing.T) {
	d := New(Options{
		Grid:        true,
		Numbers:     true,
		NumberWidth: 6,
		Encoder:     ansi.Encoder{Mode: ansi.ColorTrue},
		GutterStyle: ansi.Style{Fg: chroma.MustParseColour("#808080")},
	})
	g := d.Gutter(123456, false)
	assert.Contains(t, g, "\x1b[")
	assert.Equal(t, "123456 │ ", xansi.Strip(g))
	assert.Equal(t, 9, d.GutterWidth())
}

func TestHeaderWithGrid(t *testing.T) {
	d := New(Options{Grid: true, Header: true, Numbers: true, Footer: true, TermWidth: 20})
	lines := strings.Split(strings.TrimSuffix(d.Header("main.go", false), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "─────┬──────────────", lines[0])
	assert.Equal(t, "     │ File: main.go", lines[1])
	assert.Equal(t, "─────┼──────────────", lines[2])
	assert.Equal(t, "─────┴──────────────\n", d.Footer())
}

func TestHeaderPlainAndBinary(t *testing.T) {
	d := New(Options{Header: true})
	assert.Equal(t, "File: STDIN\n", d.Header("STDIN", false))
	assert.Equal(t, "File: blob.bin   <BINARY>\n", d.Header("blob.bin", true))
	assert.Equal(t, "", d.Footer())

	assert.Equal(t, "", New(Options{Grid: true}).Header("x", false))
}

func TestRuleDefaultWidth(t *testing.T) {
	d := New(Options{Grid: true, Footer: true})
	assert.Equal(t, DefaultRuleWidth, xansi.StringWidth(strings.TrimSuffix(d.Footer(), "\n")))
	assert.Equal(t, DefaultRuleWidth, xansi.StringWidth(strings.TrimSuffix(d.Separator(), "\n")))
}
