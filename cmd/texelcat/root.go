// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelcat/root.go
// Summary: Root command: flags, configuration layering and the print run.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/config"
	"github.com/framegrace/texelcat/input"
	"github.com/framegrace/texelcat/internal/diag"
	"github.com/framegrace/texelcat/output"
	"github.com/framegrace/texelcat/pretty"
)

type rootOptions struct {
	language   string
	theme      string
	tabs       int
	termWidth  int
	showAll    bool
	color      string
	trueColor  bool
	italic     bool
	style      string
	number     bool
	plain      int
	wrap       string
	paging     string
	lineRanges []string
	mapSyntax  []string
	pager      string

	configPath     string
	noConfig       bool
	generateConfig bool
	logFile        string

	listThemes    bool
	listLanguages bool
	preview       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "texelcat [flags] [FILE|-]...",
		Short: "Print files with syntax highlighting",
		Long: `texelcat prints files to the terminal with syntax highlighting, line
numbers and a grid, paging long output through less.

With no FILE, or when FILE is -, standard input is read.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.language, "language", "l", "", "Force the syntax, e.g. go or python")
	f.StringVar(&opts.theme, "theme", "", "Colour theme (see --list-themes)")
	f.IntVar(&opts.tabs, "tabs", 0, "Expand tabs to this width; 0 passes them through")
	f.IntVar(&opts.termWidth, "terminal-width", 0, "Terminal width; 0 detects it")
	f.BoolVarP(&opts.showAll, "show-all", "A", false, "Show non-printable characters")
	f.StringVar(&opts.color, "color", "auto", "When to use colours: auto, always, never")
	f.BoolVar(&opts.trueColor, "true-color", false, "Emit 24-bit colour")
	f.BoolVar(&opts.italic, "italic-text", false, "Allow italic text")
	f.StringVar(&opts.style, "style", "", "Decorations: full, plain, or a list of grid,header,numbers,footer")
	f.BoolVarP(&opts.number, "number", "n", false, "Only show line numbers")
	f.CountVarP(&opts.plain, "plain", "p", "No decorations; twice also disables paging")
	f.StringVar(&opts.wrap, "wrap", "", "Wrapping of long lines: character, never")
	f.StringVar(&opts.paging, "paging", "", "When to page: auto, always, never, stderr")
	f.StringArrayVarP(&opts.lineRanges, "line-range", "r", nil, "Only print lines N:M (repeatable)")
	f.StringArrayVarP(&opts.mapSyntax, "map-syntax", "m", nil, "Map a glob to a syntax, e.g. '*.conf:ini' (repeatable)")
	f.StringVar(&opts.pager, "pager", "", "Pager command line")
	f.StringVar(&opts.configPath, "config", "", "Configuration file (default $XDG_CONFIG_HOME/texelcat/config.toml)")
	f.BoolVar(&opts.noConfig, "no-config", false, "Ignore the configuration file and environment")
	f.BoolVar(&opts.generateConfig, "generate-config-file", false, "Write a commented default configuration file and exit")
	f.StringVar(&opts.logFile, "log-file", "", "Append diagnostic logs to this file")
	f.BoolVar(&opts.listThemes, "list-themes", false, "List the available themes")
	f.BoolVar(&opts.listLanguages, "list-languages", false, "List the available syntaxes")
	f.BoolVar(&opts.preview, "preview", false, "With --list-themes, show a sample in every theme")

	cmd.AddCommand(newCacheCmd())
	return cmd
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	closeLog, err := setupLogging(opts.logFile)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer closeLog()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	applyLabelColor(opts.color, stderr)

	path := opts.configPath
	if path == "" {
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	if opts.generateConfig {
		if err := config.WriteDefault(path, false); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %s\n", path)
		return nil
	}

	cfg, file, err := buildConfig(cmd, opts, path)
	if err != nil {
		return err
	}
	cfg.Stdout, cfg.Stderr, cfg.Stdin = stdout, stderr, cmd.InOrStdin()

	assetOpts, err := file.AssetOptions()
	if err != nil {
		return err
	}
	prov, err := pretty.LoadAssets(assetOpts)
	if err != nil {
		return err
	}
	cfg.Assets = prov

	switch {
	case opts.listLanguages:
		return printList(stdout, prov.SyntaxNames())
	case opts.listThemes && opts.preview:
		return previewThemes(cfg, prov)
	case opts.listThemes:
		return printList(stdout, prov.ThemeNames())
	}

	pp, err := pretty.New(cfg)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	if err := pp.Files(args...).Run(); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

// buildConfig layers defaults, the configuration file, the environment and
// the flags that were set on the command line.
func buildConfig(cmd *cobra.Command, opts *rootOptions, path string) (pretty.Config, *config.File, error) {
	cfg := pretty.DefaultConfig()
	file := &config.File{}
	if !opts.noConfig {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, nil, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "configuration", Err: err}
		}
		file = loaded
		for _, key := range file.Unknown {
			diag.Warn(cmd.ErrOrStderr(), "Unknown key '%s' in %s", key, file.Path)
		}
		file.Env(os.Getenv)
		if err := file.Apply(&cfg); err != nil {
			return cfg, nil, err
		}
	}

	flags := cmd.Flags()
	colorMode := "auto"
	if file.Color != nil {
		colorMode = *file.Color
	}
	if flags.Changed("color") {
		colorMode = opts.color
	}
	colored, err := config.ParseColor(colorMode, isTerminal(cmd.OutOrStdout()) && os.Getenv("NO_COLOR") == "")
	if err != nil {
		return cfg, nil, err
	}
	cfg.Colored = colored

	if flags.Changed("language") {
		cfg.Language = opts.language
	}
	if flags.Changed("theme") {
		cfg.Theme = opts.theme
	}
	if flags.Changed("tabs") {
		cfg.TabWidth = opts.tabs
	}
	if flags.Changed("terminal-width") {
		cfg.TermWidth = opts.termWidth
	}
	if flags.Changed("show-all") {
		cfg.ShowNonprintable = opts.showAll
	}
	if flags.Changed("true-color") {
		cfg.TrueColor = opts.trueColor
	}
	if flags.Changed("italic-text") {
		cfg.Italics = opts.italic
	}
	if flags.Changed("style") {
		c, err := pretty.ParseComponents(opts.style)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Components = c
	}
	if opts.number {
		cfg.Components = pretty.Numbers
	}
	if opts.plain > 0 {
		cfg.Components = pretty.Plain
	}
	if flags.Changed("wrap") {
		w, err := pretty.ParseWrapMode(opts.wrap)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Wrap = w
	}
	if flags.Changed("paging") {
		m, err := output.ParsePagingMode(opts.paging)
		if err != nil {
			return cfg, nil, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "paging", Err: err}
		}
		cfg.Paging = m
	}
	if opts.plain > 1 {
		cfg.Paging = output.Never
	}
	if flags.Changed("pager") {
		cfg.Pager = opts.pager
	}
	if len(opts.mapSyntax) > 0 {
		m, err := config.Mappings(cfg.Mapping, opts.mapSyntax)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Mapping = m
	}
	if len(opts.lineRanges) > 0 {
		ranges, err := pretty.ParseRanges(opts.lineRanges)
		if err != nil {
			return cfg, nil, err
		}
		cfg.Ranges = ranges
	}
	return cfg, file, cfg.Validate()
}

func printList(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			if pretty.IsBrokenPipe(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

// previewThemes prints the sample program once per theme, each under a header
// naming the theme.
func previewThemes(cfg pretty.Config, prov *assets.Provider) error {
	cfg.Components |= pretty.Header | pretty.Grid
	base, err := pretty.New(cfg)
	if err != nil {
		return err
	}
	for _, name := range prov.ThemeNames() {
		pp, err := base.Configure(func(c *pretty.Config) {
			c.Theme = name
			c.Paging = output.Never
		})
		if err != nil {
			return err
		}
		if err := pp.Run(pretty.Input(input.ThemePreview(), "Theme: "+name)); err != nil {
			return &reportedError{err: err}
		}
	}
	return nil
}
