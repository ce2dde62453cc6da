// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pretty/printer.go
// Summary: Per-file print loop: header, highlighted rows, footer.

package pretty

import (
	"errors"
	"io"
	"log"
	"strings"

	"github.com/alecthomas/chroma/v2"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/input"
	"github.com/framegrace/texelcat/internal/ansi"
	"github.com/framegrace/texelcat/internal/decor"
	"github.com/framegrace/texelcat/internal/diag"
	"github.com/framegrace/texelcat/internal/highlight"
	"github.com/framegrace/texelcat/internal/preprocess"
	"github.com/framegrace/texelcat/linerange"
)

// State is the phase of a Printer.
type State int

const (
	AwaitingHeader State = iota
	Streaming
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingHeader:
		return "awaiting-header"
	case Streaming:
		return "streaming"
	case Done:
		return "done"
	}
	return "unknown"
}

var defaultGutterColour = chroma.MustParseColour("#808080")

// Printer renders one opened input. It is created per file and discarded
// afterwards; nothing carries over to the next input.
type Printer struct {
	cfg    *Config
	title  string
	reader *input.Reader

	hl     *highlight.Highlighter
	dec    *decor.Decorator
	enc    ansi.Encoder
	filter *linerange.Filter
	// wrapWidth is the content width rows are wrapped to; 0 disables it.
	wrapWidth int

	state State
	line  int
}

func newPrinter(cfg *Config, prov *assets.Provider, theme *assets.Theme, src input.Source, title string, r *input.Reader) *Printer {
	enc := ansi.Encoder{Mode: cfg.colorMode(), Italics: cfg.Italics}

	numberWidth := decor.MinNumberWidth
	if bound, ok := cfg.Ranges.MaxBound(); ok {
		numberWidth = decor.NumberWidth(bound)
	} else if n, ok := src.LineCount(); ok {
		numberWidth = decor.NumberWidth(n)
	}

	dec := decorator(cfg, theme, numberWidth)

	syntax := prov.ResolveSyntax(cfg.Language, src, r.FirstLine(), cfg.Mapping)
	log.Printf("Printer: %s as %s with %s", title, syntax.Name(), theme.Name())

	p := &Printer{
		cfg:    cfg,
		title:  title,
		reader: r,
		hl:     highlight.New(syntax.Lexer(), theme.Style(), cfg.ContextWindow),
		dec:    dec,
		enc:    enc,
		filter: cfg.Ranges.Filter(),
	}
	if cfg.Wrap == WrapCharacter && cfg.TermWidth > 0 {
		p.wrapWidth = max(1, cfg.TermWidth-dec.GutterWidth())
	}
	return p
}

func decorator(cfg *Config, theme *assets.Theme, numberWidth int) *decor.Decorator {
	return decor.New(decor.Options{
		Grid:        cfg.Components.Has(Grid),
		Header:      cfg.Components.Has(Header),
		Numbers:     cfg.Components.Has(Numbers),
		Footer:      cfg.Components.Has(Footer),
		NumberWidth: numberWidth,
		TermWidth:   cfg.TermWidth,
		Encoder:     ansi.Encoder{Mode: cfg.colorMode(), Italics: cfg.Italics},
		GutterStyle: gutterStyle(theme.Style()),
	})
}

// separator is the rule between two inputs when no header marks the change.
func separator(cfg *Config, theme *assets.Theme) string {
	width := decor.MinNumberWidth
	if bound, ok := cfg.Ranges.MaxBound(); ok {
		width = decor.NumberWidth(bound)
	}
	return decorator(cfg, theme, width).Separator()
}

// gutterStyle uses the theme's line-number colour when it stands out from
// ordinary text.
func gutterStyle(style *chroma.Style) ansi.Style {
	numbers := style.Get(chroma.LineNumbers).Colour
	if numbers.IsSet() && numbers != style.Get(chroma.Text).Colour {
		return ansi.Style{Fg: numbers}
	}
	return ansi.Style{Fg: defaultGutterColour}
}

// State returns the current phase.
func (p *Printer) State() State { return p.state }

// Print writes the whole input to w and leaves the printer in Done. Errors
// from w are returned as-is; read failures are wrapped by the caller.
func (p *Printer) Print(w io.Writer) error {
	if p.state != AwaitingHeader {
		return errors.New("printer already used")
	}
	if _, err := io.WriteString(w, p.dec.Header(p.title, p.reader.Binary())); err != nil {
		return err
	}
	p.state = Streaming

	if p.reader.Binary() {
		diag.Warn(p.cfg.Stderr, "Binary content from %s will not be printed.", p.title)
		p.state = Done
		return nil
	}

	if err := p.stream(w); err != nil {
		return err
	}
	p.state = Done
	_, err := io.WriteString(w, p.dec.Footer())
	return err
}

// blockLines caps how many lines are tokenised together.
const blockLines = 1024

// errRangesDone ends reading once every range has been passed.
var errRangesDone = errors.New("ranges done")

func (p *Printer) stream(w io.Writer) error {
	for {
		first := p.line + 1
		lines, results, err := p.readBlock()
		if len(lines) > 0 {
			// Lines outside the ranges still move the lexer forward.
			rows := p.hl.HighlightBlock(lines)
			for i, spans := range rows {
				if results[i] != linerange.InRange {
					continue
				}
				if err := p.printLine(w, first+i, spans); err != nil {
					return err
				}
			}
		}
		switch {
		case err == nil:
		case err == io.EOF, err == errRangesDone:
			return nil
		default:
			return &readError{err: err}
		}
	}
}

// readBlock reads the lines that are highlighted together. It stops after
// blockLines lines, at the end of the input, before the first line past the
// last range, or when a stream has no complete line waiting.
func (p *Printer) readBlock() ([]string, []linerange.Result, error) {
	var lines []string
	var results []linerange.Result
	for len(lines) < blockLines {
		if len(lines) > 0 && !p.reader.Ready() {
			break
		}
		n := p.line + 1
		res := p.filter.Check(n)
		if res == linerange.AfterLastRange {
			return lines, results, errRangesDone
		}
		raw, err := p.reader.ReadLine()
		if err != nil {
			return lines, results, err
		}
		p.line = n
		lines = append(lines, string(raw))
		results = append(results, res)
	}
	return lines, results, nil
}

func (p *Printer) printLine(w io.Writer, n int, spans []ansi.Span) error {
	if p.cfg.ShowNonprintable {
		spans = preprocess.ReplaceNonprintable(spans, p.cfg.TabWidth)
	} else {
		spans = preprocess.TrimNewline(spans)
		if p.cfg.TabWidth > 0 {
			spans = preprocess.ExpandTabs(spans, p.cfg.TabWidth)
		}
	}

	if p.dec.Widen(n) && p.wrapWidth > 0 {
		p.wrapWidth = max(1, p.cfg.TermWidth-p.dec.GutterWidth())
	}

	var b strings.Builder
	for i, row := range preprocess.Wrap(spans, p.wrapWidth) {
		b.WriteString(p.dec.Gutter(n, i > 0))
		p.enc.Render(&b, row)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// readError marks failures of the input rather than of the sink.
type readError struct{ err error }

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }
