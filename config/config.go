// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: The texelcat configuration file and how it overlays a print config.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/framegrace/texelcat/assets"
	"github.com/framegrace/texelcat/output"
	"github.com/framegrace/texelcat/pretty"
	"github.com/framegrace/texelcat/syntaxmap"
)

// File mirrors config.toml. Unset keys stay nil and leave the
// corresponding setting alone.
type File struct {
	Theme      *string  `toml:"theme"`
	Tabs       *int     `toml:"tabs"`
	Style      *string  `toml:"style"`
	Color      *string  `toml:"color"`
	TrueColor  *bool    `toml:"true_color"`
	ItalicText *bool    `toml:"italic_text"`
	Wrap       *string  `toml:"wrap"`
	Paging     *string  `toml:"paging"`
	Pager      *string  `toml:"pager"`
	ShowAll    *bool    `toml:"show_all"`
	MapSyntax  []string `toml:"map_syntax"`

	// Syntaxes and Themes are paths of chroma XML definition files.
	Syntaxes []string `toml:"syntaxes"`
	Themes   []string `toml:"themes"`
	CacheDir *string  `toml:"cache_dir"`

	// Path is where the file was read from; empty when it does not exist.
	Path string `toml:"-"`
	// Unknown lists keys that matched no setting.
	Unknown []string `toml:"-"`
}

// Load reads the configuration file at path. A missing file yields an empty
// File and no error.
func Load(path string) (*File, error) {
	f := &File{}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		log.Printf("Config: no config file at %s", path)
		return f, nil
	} else if err != nil {
		return f, fmt.Errorf("config file %s: %w", path, err)
	}

	md, err := toml.DecodeFile(path, f)
	if err != nil {
		return &File{}, fmt.Errorf("config file %s: %w", path, err)
	}
	f.Path = path
	for _, key := range md.Undecoded() {
		f.Unknown = append(f.Unknown, key.String())
	}
	log.Printf("Config: loaded %s", path)
	return f, nil
}

// Env overlays settings from the environment: TEXELCAT_THEME, then
// TEXELCAT_PAGER, falling back to PAGER.
func (f *File) Env(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("TEXELCAT_THEME"); v != "" {
		f.Theme = &v
	}
	if v := getenv("TEXELCAT_PAGER"); v != "" {
		f.Pager = &v
	} else if v := getenv("PAGER"); v != "" && f.Pager == nil {
		f.Pager = &v
	}
}

// Apply writes every set value into cfg. Values are checked the same way the
// matching command-line flags are.
func (f *File) Apply(cfg *pretty.Config) error {
	if f.Theme != nil {
		cfg.Theme = *f.Theme
	}
	if f.Tabs != nil {
		cfg.TabWidth = *f.Tabs
	}
	if f.Style != nil {
		c, err := pretty.ParseComponents(*f.Style)
		if err != nil {
			return err
		}
		cfg.Components = c
	}
	if f.Color != nil {
		colored, err := ParseColor(*f.Color, cfg.Colored)
		if err != nil {
			return err
		}
		cfg.Colored = colored
	}
	if f.TrueColor != nil {
		cfg.TrueColor = *f.TrueColor
	}
	if f.ItalicText != nil {
		cfg.Italics = *f.ItalicText
	}
	if f.Wrap != nil {
		w, err := pretty.ParseWrapMode(*f.Wrap)
		if err != nil {
			return err
		}
		cfg.Wrap = w
	}
	if f.Paging != nil {
		m, err := output.ParsePagingMode(*f.Paging)
		if err != nil {
			return &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "paging", Err: err}
		}
		cfg.Paging = m
	}
	if f.Pager != nil {
		cfg.Pager = *f.Pager
	}
	if f.ShowAll != nil {
		cfg.ShowNonprintable = *f.ShowAll
	}
	if len(f.MapSyntax) > 0 {
		m, err := Mappings(cfg.Mapping, f.MapSyntax)
		if err != nil {
			return err
		}
		cfg.Mapping = m
	}
	return nil
}

// ParseColor turns auto, always or never into the colored switch; auto keeps
// current.
func ParseColor(s string, current bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return current, nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "color", Err: fmt.Errorf("unknown value '%s'", s)}
}

// Mappings appends "glob:replacement" entries to a copy of base.
func Mappings(base *syntaxmap.Mapping, specs []string) (*syntaxmap.Mapping, error) {
	m := base.Clone()
	for _, spec := range specs {
		e, err := syntaxmap.Parse(spec)
		if err != nil {
			return nil, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "syntax mapping", Err: err}
		}
		if err := m.Insert(e.Pattern, e.Replacement); err != nil {
			return nil, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "syntax mapping", Err: err}
		}
	}
	return m, nil
}

// AssetOptions reads the user definition files named in the file.
func (f *File) AssetOptions() (assets.LoadOptions, error) {
	var opts assets.LoadOptions
	if f.CacheDir != nil {
		opts.CacheDir = *f.CacheDir
	}
	for _, p := range f.Syntaxes {
		data, err := os.ReadFile(p)
		if err != nil {
			return opts, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "syntaxes", Err: err}
		}
		opts.Syntaxes = append(opts.Syntaxes, data)
	}
	for _, p := range f.Themes {
		data, err := os.ReadFile(p)
		if err != nil {
			return opts, &pretty.Error{Kind: pretty.KindInvalidConfig, Field: "themes", Err: err}
		}
		opts.Themes = append(opts.Themes, data)
	}
	return opts, nil
}
