// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: pretty/pretty.go
// Summary: PrettyPrinter, the entry point that prints inputs to one sink.
// Usage: pp, err := pretty.New(cfg); pp.File("main.go").Run()

package pretty

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/input"
	"github.com/framegrace/texelcat/internal/diag"
	"github.com/framegrace/texelcat/internal/termcap"
	"github.com/framegrace/texelcat/linerange"
	"github.com/framegrace/texelcat/output"
)

// Job is one queued input with an optional header title override.
type Job struct {
	Source input.Source
	Title  string
}

// Input wraps a source into a Job. title replaces the display name in the
// header when non-empty.
func Input(src input.Source, title string) Job {
	return Job{Source: src, Title: title}
}

func (j Job) title() string {
	if j.Title != "" {
		return j.Title
	}
	return j.Source.DisplayName()
}

// PrettyPrinter holds a validated configuration, the shared assets and the
// queue of inputs for the next Run. It is not safe for concurrent use.
type PrettyPrinter struct {
	cfg    Config
	assets *assets.Provider
	theme  *assets.Theme
	caps   termcap.Caps
	queue  []Job
}

// LoadAssets loads a provider, reporting unparsable user definitions as
// KindInvalidConfig. Cache problems never fail.
func LoadAssets(opts assets.LoadOptions) (*assets.Provider, error) {
	p, err := assets.Load(opts)
	if err != nil {
		if errors.Is(err, assets.ErrInvalidDefinition) {
			return nil, &Error{Kind: KindInvalidConfig, Field: "definitions", Err: err}
		}
		return nil, err
	}
	return p, nil
}

// New validates cfg, loads the assets when cfg.Assets is nil and resolves the
// theme. An unknown theme is reported once on cfg.Stderr and replaced by the
// default.
func New(cfg Config) (*PrettyPrinter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Assets == nil {
		p, err := LoadAssets(assets.LoadOptions{})
		if err != nil {
			return nil, err
		}
		cfg.Assets = p
	}

	pp := &PrettyPrinter{cfg: cfg, assets: cfg.Assets}
	pp.theme = cfg.Assets.ResolveTheme(cfg.Theme, cfg.Stderr)
	if f, ok := cfg.Stdout.(*os.File); ok {
		pp.caps = termcap.Probe(f)
	}
	log.Printf("Pretty: %s (interactive=%v width=%d)", &pp.cfg, pp.caps.Interactive, pp.caps.Width)
	return pp, nil
}

// Config returns a copy of the validated configuration.
func (pp *PrettyPrinter) Config() Config { return pp.cfg }

// Configure returns a new printer built from a modified copy of the
// configuration. The assets are shared; the receiver and its queue are left
// untouched.
func (pp *PrettyPrinter) Configure(fn func(*Config)) (*PrettyPrinter, error) {
	cfg := pp.cfg
	fn(&cfg)
	if cfg.Assets == nil {
		cfg.Assets = pp.assets
	}
	return New(cfg)
}

// File queues a file; "-" means standard input.
func (pp *PrettyPrinter) File(path string) *PrettyPrinter {
	if path == "-" {
		pp.queue = append(pp.queue, Input(input.Stdin(), ""))
	} else {
		pp.queue = append(pp.queue, Input(input.File(path), ""))
	}
	return pp
}

// Files queues several files.
func (pp *PrettyPrinter) Files(paths ...string) *PrettyPrinter {
	for _, p := range paths {
		pp.File(p)
	}
	return pp
}

// String queues in-memory text.
func (pp *PrettyPrinter) String(text string) *PrettyPrinter {
	pp.queue = append(pp.queue, Input(input.String(text, ""), ""))
	return pp
}

// StringWithHeader queues in-memory text shown under the given header title.
func (pp *PrettyPrinter) StringWithHeader(text, header string) *PrettyPrinter {
	pp.queue = append(pp.queue, Input(input.String(text, ""), header))
	return pp
}

// Run prints the queued inputs followed by jobs, then clears the queue.
//
// Failures of single inputs are reported on the diagnostic writer as they
// happen and printing moves on to the next input; the joined errors are
// returned afterwards. A consumer that goes away ends the run quietly. A
// pager that cannot be started fails before anything is written.
func (pp *PrettyPrinter) Run(jobs ...Job) error {
	all := append(pp.queue, jobs...)
	pp.queue = nil

	cfg := pp.cfg
	if cfg.TermWidth == 0 {
		cfg.TermWidth = pp.caps.Width
	}

	out, err := output.Open(output.Options{
		Mode:        cfg.Paging,
		Pager:       cfg.Pager,
		Interactive: pp.caps.Interactive,
		Stdout:      cfg.Stdout,
		Stderr:      cfg.Stderr,
	})
	if err != nil {
		perr := &Error{Kind: KindPagerSpawn, Command: cfg.Pager, Err: err}
		if perr.Command == "" {
			perr.Command = output.DefaultPager
		}
		diag.Error(cfg.Stderr, perr)
		return perr
	}

	var errs []error
	for i, job := range all {
		if i > 0 && cfg.Components.Has(Grid) && !cfg.Components.Has(Header) {
			if _, err := io.WriteString(out.Writer(), separator(&cfg, pp.theme)); err != nil {
				if output.IsBrokenPipe(err) {
					break
				}
				errs = append(errs, ioError(job.title(), err))
				break
			}
		}
		err := pp.print(&cfg, out.Writer(), job)
		if err == nil {
			continue
		}
		if IsBrokenPipe(err) {
			log.Printf("Pretty: output closed while printing %s", job.title())
			break
		}
		// Rendered rows go out before the report so the two stay in order.
		out.Flush()
		diag.Error(cfg.Stderr, err)
		errs = append(errs, err)
	}

	if err := out.Close(); err != nil && !output.IsBrokenPipe(err) {
		errs = append(errs, &Error{Kind: KindIO, Input: "output", Err: err})
	}
	return errors.Join(errs...)
}

func (pp *PrettyPrinter) print(cfg *Config, w io.Writer, job Job) error {
	name := job.title()
	r, err := job.Source.Open(cfg.Stdin)
	if err != nil {
		return ioError(name, err)
	}
	defer r.Close()

	if pp.loopThrough(cfg) || (r.Binary() && cfg.Components == Plain) {
		if err := copyRanges(w, r, cfg.Ranges); err != nil {
			return ioError(name, err)
		}
		return nil
	}

	p := newPrinter(cfg, pp.assets, pp.theme, job.Source, name, r)
	if err := p.Print(w); err != nil {
		var re *readError
		if errors.As(err, &re) {
			return &Error{Kind: KindIO, Input: name, Err: re.err}
		}
		return ioError(name, err)
	}
	return nil
}

// copyRanges copies the input verbatim, keeping only the lines inside
// ranges when there are any.
func copyRanges(w io.Writer, r *input.Reader, ranges linerange.Set) error {
	if ranges.Empty() {
		_, err := r.WriteTo(w)
		return err
	}
	filter := ranges.Filter()
	for n := 1; ; n++ {
		res := filter.Check(n)
		if res == linerange.AfterLastRange {
			return nil
		}
		line, err := r.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if res != linerange.InRange {
			continue
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
}

// loopThrough reports whether input can be copied verbatim.
func (pp *PrettyPrinter) loopThrough(cfg *Config) bool {
	if cfg.LoopThrough {
		return true
	}
	return cfg.Components == Plain &&
		!pp.caps.Interactive &&
		!cfg.Colored &&
		!cfg.ShowNonprintable &&
		cfg.TabWidth == 0 &&
		cfg.Wrap == WrapNone &&
		cfg.Ranges.Empty()
}
