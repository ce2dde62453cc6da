// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package pretty

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/input"
	"github.com/framegrace/texelcat/linerange"
	"github.com/framegrace/texelcat/output"
)

var loadAssets = sync.OnceValues(func() (*assets.Provider, error) {
	return assets.Load(assets.LoadOptions{NoCache: true})
})

type streams struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// testConfig prints uncoloured, undecorated and unpaged into s.
func testConfig(t *testing.T, s *streams) Config {
	t.Helper()
	prov, err := loadAssets()
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Assets = prov
	cfg.Colored = false
	cfg.Components = Plain
	cfg.Paging = output.Never
	cfg.Stdout = &s.stdout
	cfg.Stderr = &s.stderr
	cfg.Stdin = strings.NewReader("")
	return cfg
}

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

func TestNoEscapesWithoutColour(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Components = Full
	cfg.Language = "go"

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("package main\n\nfunc main() {}\n").Run())

	assert.NotContains(t, s.stdout.String(), "\x1b")
	assert.Contains(t, s.stdout.String(), "func main() {}")
	assert.Empty(t, s.stderr.String())
}

func TestColouredOutputStripsToInput(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Colored = true
	cfg.TrueColor = true
	cfg.Language = "go"

	src := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String(src).Run())

	assert.Contains(t, s.stdout.String(), "\x1b[")
	assert.Equal(t, src, xansi.Strip(s.stdout.String()))
}

func TestErrorStreamOnly(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Paging = output.ErrorStreamOnly
	cfg.Ranges = linerange.NewSet(linerange.From(1))

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("to stderr\n").Run())

	assert.Empty(t, s.stdout.String())
	assert.Equal(t, "to stderr\n", s.stderr.String())
}

func TestRangeSelectsLines(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	ranges, err := ParseRanges([]string{"2:4"})
	require.NoError(t, err)
	cfg.Ranges = ranges

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String(numbered(7)).Run())
	assert.Equal(t, "line 2\nline 3\nline 4\n", s.stdout.String())
}

func TestRangeStopsReading(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Ranges = linerange.NewSet(linerange.Range{Start: 2, End: 4})
	require.NoError(t, cfg.Validate())
	prov, _ := loadAssets()
	theme := prov.ResolveTheme(cfg.Theme, nil)

	src := input.String(numbered(7), "")
	r, err := src.Open(nil)
	require.NoError(t, err)
	defer r.Close()

	p := newPrinter(&cfg, prov, theme, src, src.DisplayName(), r)
	assert.Equal(t, AwaitingHeader, p.State())
	require.NoError(t, p.Print(&s.stdout))
	assert.Equal(t, Done, p.State())
	assert.Equal(t, 4, p.line)

	next, err := r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "line 5\n", string(next))

	assert.Error(t, p.Print(&s.stdout))
}

const pythonDoc = `x = 1
doc = """
first
second
third
"""
y = 2
z = 3
w = 4
v = 5
`

func TestRangeInsideMultilineString(t *testing.T) {
	render := func(ranges ...string) []string {
		var s streams
		cfg := testConfig(t, &s)
		cfg.Colored = true
		cfg.TrueColor = true
		cfg.Components = Numbers
		cfg.Language = "python"
		set, err := ParseRanges(ranges)
		require.NoError(t, err)
		cfg.Ranges = set

		pp, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, pp.String(pythonDoc).Run())
		return strings.Split(strings.TrimSuffix(s.stdout.String(), "\n"), "\n")
	}

	full := render()
	require.Len(t, full, 10)
	ranged := render("3:5")
	require.Len(t, ranged, 3)
	assert.Equal(t, full[2:5], ranged)
	assert.Equal(t, "   3 first", xansi.Strip(ranged[0]))
}

const goComment = `package main

/*
func notCode() {}
*/
func main() {}
`

func TestBlockCommentColouredWithAndWithoutRange(t *testing.T) {
	commentSGR := "\x1b[0;38;2;117;113;94m"
	for _, lang := range []string{"go", "java", "javascript"} {
		for _, ranges := range [][]string{nil, {"3:5"}} {
			var s streams
			cfg := testConfig(t, &s)
			cfg.Colored = true
			cfg.TrueColor = true
			cfg.Language = lang
			set, err := ParseRanges(ranges)
			require.NoError(t, err)
			cfg.Ranges = set

			pp, err := New(cfg)
			require.NoError(t, err)
			require.NoError(t, pp.String(goComment).Run())
			assert.Contains(t, s.stdout.String(), commentSGR+"func notCode() {}", "%s %v", lang, ranges)
		}
	}
}

func TestDocstringLongerThanContextWindow(t *testing.T) {
	var b strings.Builder
	b.WriteString("def f():\n    \"\"\"Docs.\n")
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "    if x in y: return %d\n", i)
	}
	b.WriteString("    \"\"\"\nx = 1\n")

	render := func(ranges ...string) string {
		var s streams
		cfg := testConfig(t, &s)
		cfg.Colored = true
		cfg.TrueColor = true
		cfg.Language = "python"
		cfg.ContextWindow = 10
		set, err := ParseRanges(ranges)
		require.NoError(t, err)
		cfg.Ranges = set

		pp, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, pp.String(b.String()).Run())
		return s.stdout.String()
	}

	stringSGR := "\x1b[0;38;2;230;219;116m"
	ranged := render("55")
	assert.Equal(t, stringSGR+"    if x in y: return 52\x1b[0m\n", ranged)
	assert.Contains(t, render(), ranged)
}

func TestNumberColumnGrowsPastWidth(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10001; i++ {
		b.WriteString("abcdefghijklmnopqrstuvwxyz\n")
	}

	var s streams
	cfg := testConfig(t, &s)
	cfg.Components = Numbers | Grid
	cfg.Wrap = WrapCharacter
	cfg.TermWidth = 20
	cfg.Stdin = strings.NewReader(b.String())

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.File("-").Run())

	rows := strings.Split(strings.TrimSuffix(s.stdout.String(), "\n"), "\n")
	for _, row := range rows {
		require.LessOrEqual(t, xansi.StringWidth(row), 20, row)
	}
	assert.Contains(t, rows, "9999 │ abcdefghijklm")
	assert.Contains(t, rows, "10000 │ abcdefghijkl")
	assert.Contains(t, rows, "      │ mnopqrstuvwx")
}

func TestUnknownThemeWarnsOnce(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Theme = "Nonexistent"

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("a\n").String("b\n").Run())

	assert.Equal(t, 1, strings.Count(s.stderr.String(), "Unknown theme 'Nonexistent'"))
	assert.Equal(t, "a\nb\n", s.stdout.String())
}

func TestFileErrorsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	missing := filepath.Join(dir, "missing.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta\n"), 0o644))

	var s streams
	pp, err := New(testConfig(t, &s))
	require.NoError(t, err)
	err = pp.Files(a, missing, b).Run()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, missing, perr.Input)

	assert.Equal(t, "alpha\nbeta\n", s.stdout.String())
	assert.Contains(t, s.stderr.String(), missing)
}

func TestBrokenPipeEndsQuietly(t *testing.T) {
	if _, err := exec.LookPath("head"); err != nil {
		t.Skipf("head not available: %v", err)
	}
	var s streams
	cfg := testConfig(t, &s)
	cfg.Paging = output.Always
	cfg.Pager = "head -n 1"

	pp, err := New(cfg)
	require.NoError(t, err)
	err = pp.String(numbered(200000)).String("never printed\n").Run()

	assert.NoError(t, err)
	assert.Equal(t, "line 1\n", s.stdout.String())
	assert.Empty(t, s.stderr.String())
}

func TestPagerSpawnFailure(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Paging = output.Always
	cfg.Pager = "no-such-pager-xyz"

	pp, err := New(cfg)
	require.NoError(t, err)
	err = pp.String("x\n").Run()

	assert.ErrorIs(t, err, ErrPagerSpawn)
	assert.Empty(t, s.stdout.String())
	assert.Contains(t, s.stderr.String(), "no-such-pager-xyz")
}

func TestUTF16Input(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Stdin = bytes.NewReader([]byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0, 0xE9, 0, '\n', 0})

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.File("-").Run())
	assert.Equal(t, "hi\né\n", s.stdout.String())
}

func TestLoopThroughKeepsBytes(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Colored = true
	cfg.Components = Full
	cfg.LoopThrough = true

	in := "a\r\nb\x00\xff\tc"
	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String(in).Run())
	assert.Equal(t, in, s.stdout.String())
}

func TestDecoratedLayout(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Components = Full
	cfg.TermWidth = 20

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.StringWithHeader("hello\n", "notes").Run())

	want := strings.Join([]string{
		"─────┬──────────────",
		"     │ File: notes",
		"─────┼──────────────",
		"   1 │ hello",
		"─────┴──────────────",
		"",
	}, "\n")
	assert.Equal(t, want, s.stdout.String())
}

func TestSeparatorBetweenFilesWithoutHeader(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Components = Grid
	cfg.TermWidth = 10

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("a\n").String("b\n").Run())
	assert.Equal(t, "│ a\n"+strings.Repeat("─", 10)+"\n│ b\n", s.stdout.String())
}

func TestBinaryInput(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Components = Header

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("PK\x03\x04\x00\x00binary\n").Run())

	assert.Equal(t, "File: STRING   <BINARY>\n", s.stdout.String())
	assert.Contains(t, s.stderr.String(), "Binary content from STRING")
}

func TestBinaryInputHonoursRanges(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Ranges = linerange.NewSet(linerange.Range{Start: 2, End: 3})

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("a\x00\nb\x00\nc\x00\nd\x00\n").Run())
	assert.Equal(t, "b\x00\nc\x00\n", s.stdout.String())
}

func TestErrorsFollowEarlierOutput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	missing := filepath.Join(dir, "missing.txt")
	require.NoError(t, os.WriteFile(a, []byte("alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta\n"), 0o644))

	var s streams
	cfg := testConfig(t, &s)
	cfg.Paging = output.ErrorStreamOnly
	pp, err := New(cfg)
	require.NoError(t, err)
	require.Error(t, pp.Files(a, missing, b).Run())

	got := s.stderr.String()
	alpha, report, beta := strings.Index(got, "alpha\n"), strings.Index(got, missing), strings.Index(got, "beta\n")
	require.True(t, alpha >= 0 && report >= 0 && beta >= 0, got)
	assert.Less(t, alpha, report)
	assert.Less(t, report, beta)
}

func TestWrapAndNonprintable(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.Components = Numbers
	cfg.Wrap = WrapCharacter
	cfg.TermWidth = 8

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("abcdefg\n").Run())
	assert.Equal(t, "   1 abc\n     def\n     g\n", s.stdout.String())

	s.stdout.Reset()
	pp, err = pp.Configure(func(c *Config) {
		c.Wrap = WrapNone
		c.Components = Plain
		c.ShowNonprintable = true
		c.TabWidth = 4
	})
	require.NoError(t, err)
	require.NoError(t, pp.String("a\tb c\n").Run())
	assert.Equal(t, "a├─┤b·c␊\n", s.stdout.String())
}

func TestTabExpansion(t *testing.T) {
	var s streams
	cfg := testConfig(t, &s)
	cfg.TabWidth = 4

	pp, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, pp.String("a\tb\n\tc\n").Run())
	assert.Equal(t, "a   b\n    c\n", s.stdout.String())
}

func TestConfigureLeavesReceiver(t *testing.T) {
	var s streams
	pp, err := New(testConfig(t, &s))
	require.NoError(t, err)

	other, err := pp.Configure(func(c *Config) { c.Theme = "github" })
	require.NoError(t, err)
	assert.Equal(t, assets.DefaultTheme, pp.Config().Theme)
	assert.Equal(t, "github", other.Config().Theme)
	assert.Same(t, pp.Config().Assets, other.Config().Assets)

	_, err = pp.Configure(func(c *Config) { c.TabWidth = -1 })
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 0, pp.Config().TabWidth)
}
