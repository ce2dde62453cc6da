// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: assets/assets.go
// Summary: Syntax and theme sets, loaded once per run and shared read-only.
//
// Lookups consult, in order: user definitions, the on-disk cache (when it
// loaded) and the definitions bundled with chroma.

package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-enry/go-enry/v2"

	"github.com/framegrace/texelcat/input"
	"github.com/framegrace/texelcat/internal/diag"
	"github.com/framegrace/texelcat/syntaxmap"
)

// DefaultTheme is substituted for unknown theme names.
const DefaultTheme = "monokai"

// PlainTextName is the name of the universal fallback syntax.
const PlainTextName = "plaintext"

// ErrInvalidDefinition is wrapped when a user syntax or theme blob does not
// parse.
var ErrInvalidDefinition = errors.New("invalid definition")

// Origin tells where the bulk of the definitions came from.
type Origin int

const (
	OriginEmbedded Origin = iota
	OriginCache
)

func (o Origin) String() string {
	if o == OriginCache {
		return "cache"
	}
	return "embedded"
}

// Syntax is an immutable handle on a lexical grammar.
type Syntax struct {
	lexer chroma.Lexer
}

// Name is the grammar's display name.
func (s *Syntax) Name() string { return s.lexer.Config().Name }

// Lexer returns the chroma lexer.
func (s *Syntax) Lexer() chroma.Lexer { return s.lexer }

// Theme is an immutable handle on a colour scheme.
type Theme struct {
	style *chroma.Style
}

// Name is the theme's registered name.
func (t *Theme) Name() string { return t.style.Name }

// Style returns the chroma style.
func (t *Theme) Style() *chroma.Style { return t.style }

// LoadOptions controls Load.
type LoadOptions struct {
	// CacheDir holds the cache files. Empty means DefaultCacheDir.
	CacheDir string
	// NoCache skips the on-disk cache entirely.
	NoCache bool
	// Syntaxes and Themes are chroma XML documents added on top of the
	// bundled sets.
	Syntaxes [][]byte
	Themes   [][]byte
}

// Provider resolves syntaxes and themes.
type Provider struct {
	extra  *chroma.LexerRegistry
	cached *chroma.LexerRegistry
	base   *chroma.LexerRegistry

	themes map[string]*chroma.Style
	plain  *Syntax
	origin Origin
}

// Load builds a provider. Cache problems are logged and never returned; only
// unparseable user definitions are errors.
func Load(opts LoadOptions) (*Provider, error) {
	p := &Provider{
		extra:  chroma.NewLexerRegistry(),
		base:   lexers.GlobalLexerRegistry,
		themes: make(map[string]*chroma.Style, len(styles.Registry)),
	}
	for name, style := range styles.Registry {
		p.themes[name] = style
	}

	if !opts.NoCache {
		p.loadCache(opts.CacheDir)
	}

	for i, blob := range opts.Syntaxes {
		lexer, err := chroma.Unmarshal(blob)
		if err != nil {
			return nil, fmt.Errorf("%w: syntax #%d: %v", ErrInvalidDefinition, i+1, err)
		}
		p.extra.Register(lexer)
	}
	for i, blob := range opts.Themes {
		style, err := chroma.NewXMLStyle(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("%w: theme #%d: %v", ErrInvalidDefinition, i+1, err)
		}
		p.themes[style.Name] = style
	}

	plain := p.base.Get(PlainTextName)
	if plain == nil {
		plain = lexers.Fallback
	}
	p.plain = &Syntax{lexer: plain}
	return p, nil
}

func (p *Provider) loadCache(dir string) {
	if dir == "" {
		d, err := DefaultCacheDir()
		if err != nil {
			log.Printf("Assets: no cache dir: %v", err)
			return
		}
		dir = d
	}
	syntaxes, err := readSyntaxCache(filepath.Join(dir, SyntaxCacheFile))
	if err != nil {
		log.Printf("Assets: syntax cache unavailable, using embedded set: %v", err)
		return
	}
	themes, err := readThemeCache(filepath.Join(dir, ThemeCacheFile))
	if err != nil {
		log.Printf("Assets: theme cache unavailable, using embedded set: %v", err)
		return
	}
	p.cached = syntaxes
	for _, style := range themes {
		p.themes[style.Name] = style
	}
	p.origin = OriginCache
	log.Printf("Assets: loaded %d syntaxes and %d themes from %s", len(syntaxes.Lexers), len(themes), dir)
}

// Origin reports whether the cache was used.
func (p *Provider) Origin() Origin { return p.origin }

func (p *Provider) registries() []*chroma.LexerRegistry {
	regs := []*chroma.LexerRegistry{p.extra}
	if p.cached != nil {
		regs = append(regs, p.cached)
	}
	return append(regs, p.base)
}

// Syntax looks a token up by name, alias or extension.
func (p *Provider) Syntax(token string) (*Syntax, bool) {
	if token == "" {
		return nil, false
	}
	for _, reg := range p.registries() {
		if l := reg.Get(token); l != nil {
			return &Syntax{lexer: l}, true
		}
	}
	return nil, false
}

func (p *Provider) matchFilename(name string) *Syntax {
	for _, reg := range p.registries() {
		if l := reg.Match(name); l != nil {
			return &Syntax{lexer: l}
		}
	}
	return nil
}

func (p *Provider) analyse(text string) *Syntax {
	for _, reg := range p.registries() {
		if l := reg.Analyse(text); l != nil {
			return &Syntax{lexer: l}
		}
	}
	return nil
}

// PlainText is the universal fallback syntax.
func (p *Provider) PlainText() *Syntax { return p.plain }

// ResolveSyntax picks the grammar for an input: an explicit language, then
// the file name and extension (after mapping), then the first line, then
// plain text. Standard input only gets the first-line step.
func (p *Provider) ResolveSyntax(language string, src input.Source, firstLine []byte, m *syntaxmap.Mapping) *Syntax {
	if language != "" {
		if s, ok := p.Syntax(language); ok {
			return s
		}
		log.Printf("Assets: unknown language %q, using plain text", language)
		return p.plain
	}

	if name := src.Filename(); name != "" && src.Kind() != input.KindStdin {
		if s := p.byFilename(name, m); s != nil {
			return s
		}
	}

	if s := p.byFirstLine(firstLine); s != nil {
		return s
	}
	return p.plain
}

func (p *Provider) byFilename(name string, m *syntaxmap.Mapping) *Syntax {
	if mapped := m.Replace(name); mapped != name {
		if s, ok := p.Syntax(mapped); ok {
			return s
		}
	}
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext != "" {
		if mapped := m.Replace(ext); mapped != ext {
			if s, ok := p.Syntax(mapped); ok {
				return s
			}
		}
	}
	if s := p.matchFilename(name); s != nil {
		return s
	}
	if ext != "" {
		if s, ok := p.Syntax(ext); ok {
			return s
		}
	}
	return nil
}

func (p *Provider) byFirstLine(line []byte) *Syntax {
	if len(line) == 0 {
		return nil
	}
	if lang, _ := enry.GetLanguageByShebang(line); lang != "" {
		if s, ok := p.Syntax(lang); ok {
			return s
		}
	}
	if lang, _ := enry.GetLanguageByModeline(line); lang != "" {
		if s, ok := p.Syntax(lang); ok {
			return s
		}
	}
	return p.analyse(string(line))
}

// Theme looks a theme up by its exact name.
func (p *Provider) Theme(name string) (*Theme, bool) {
	style, ok := p.themes[name]
	if !ok {
		return nil, false
	}
	return &Theme{style: style}, true
}

// ResolveTheme returns the named theme. An unknown name produces one warning
// on diag and the default theme.
func (p *Provider) ResolveTheme(name string, diagOut io.Writer) *Theme {
	if name != "" {
		if t, ok := p.Theme(name); ok {
			return t
		}
		diag.Warn(diagOut, "Unknown theme '%s', using default.", name)
	}
	if t, ok := p.Theme(DefaultTheme); ok {
		return t
	}
	return &Theme{style: styles.Fallback}
}

// SyntaxNames lists every known syntax name, sorted.
func (p *Provider) SyntaxNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, reg := range p.registries() {
		for _, name := range reg.Names(false) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ThemeNames lists every known theme name, sorted.
func (p *Provider) ThemeNames() []string {
	names := make([]string, 0, len(p.themes))
	for name := range p.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lexers returns the effective set of lexers, one per name, preferring the
// earlier registries.
func (p *Provider) lexers() []chroma.Lexer {
	seen := make(map[string]struct{})
	var out []chroma.Lexer
	for _, reg := range p.registries() {
		for _, l := range reg.Lexers {
			name := l.Config().Name
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}
