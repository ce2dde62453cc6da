// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelcat/output"
	"github.com/framegrace/texelcat/pretty"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestPathHonoursEnv(t *testing.T) {
	t.Setenv(PathEnv, "/tmp/elsewhere.toml")
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.toml", p)

	t.Setenv(PathEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err = Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "texelcat", "config.toml"), p)
}

func TestMissingFileIsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, f.Path)

	cfg := pretty.DefaultConfig()
	before := cfg
	require.NoError(t, f.Apply(&cfg))
	assert.Equal(t, before, cfg)
}

func TestLoadAndApply(t *testing.T) {
	path := writeFile(t, `
theme = "github"
tabs = 4
style = "numbers,grid"
color = "never"
italic_text = true
wrap = "character"
paging = "never"
pager = "less -S"
show_all = true
map_syntax = ["*.conf:ini"]
colour = "typo"
`)
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, []string{"colour"}, f.Unknown)

	cfg := pretty.DefaultConfig()
	require.NoError(t, f.Apply(&cfg))
	assert.Equal(t, "github", cfg.Theme)
	assert.Equal(t, 4, cfg.TabWidth)
	assert.Equal(t, pretty.Numbers|pretty.Grid, cfg.Components)
	assert.False(t, cfg.Colored)
	assert.True(t, cfg.Italics)
	assert.Equal(t, pretty.WrapCharacter, cfg.Wrap)
	assert.Equal(t, output.Never, cfg.Paging)
	assert.Equal(t, "less -S", cfg.Pager)
	assert.True(t, cfg.ShowNonprintable)
	assert.Equal(t, "ini", cfg.Mapping.Replace("app.conf"))
}

func TestBadValues(t *testing.T) {
	for _, body := range []string{
		`style = "sparkles"`,
		`color = "sometimes"`,
		`wrap = "word"`,
		`paging = "later"`,
		`map_syntax = ["nocolon"]`,
	} {
		f, err := Load(writeFile(t, body))
		require.NoError(t, err, body)
		cfg := pretty.DefaultConfig()
		assert.ErrorIs(t, f.Apply(&cfg), pretty.ErrInvalidConfig, body)
	}

	_, err := Load(writeFile(t, `theme = [`))
	assert.Error(t, err)
}

func TestEnvOverlay(t *testing.T) {
	env := map[string]string{"TEXELCAT_THEME": "dracula", "PAGER": "more"}
	f := &File{}
	f.Env(func(k string) string { return env[k] })
	require.NotNil(t, f.Theme)
	assert.Equal(t, "dracula", *f.Theme)
	require.NotNil(t, f.Pager)
	assert.Equal(t, "more", *f.Pager)

	env["TEXELCAT_PAGER"] = "less"
	f.Env(func(k string) string { return env[k] })
	assert.Equal(t, "less", *f.Pager)

	// PAGER does not override a pager from the file.
	pager := "bat-pager"
	f = &File{Pager: &pager}
	delete(env, "TEXELCAT_PAGER")
	f.Env(func(k string) string { return env[k] })
	assert.Equal(t, "bat-pager", *f.Pager)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, WriteDefault(path, false))
	assert.ErrorIs(t, WriteDefault(path, false), ErrExists)
	require.NoError(t, WriteDefault(path, true))

	var decoded map[string]any
	_, err := toml.DecodeFile(path, &decoded)
	require.NoError(t, err)
	assert.Empty(t, decoded, "every key in the default file is commented out")

	f, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, f.Unknown)
}

func TestAssetOptions(t *testing.T) {
	dir := t.TempDir()
	theme := filepath.Join(dir, "pikachu.xml")
	require.NoError(t, os.WriteFile(theme, []byte(`<style name="pikachu"><entry type="Text" style="#ffff00"/></style>`), 0o644))

	cache := "/tmp/cache"
	f := &File{Themes: []string{theme}, CacheDir: &cache}
	opts, err := f.AssetOptions()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cache", opts.CacheDir)
	require.Len(t, opts.Themes, 1)

	f.Syntaxes = []string{filepath.Join(dir, "missing.xml")}
	_, err = f.AssetOptions()
	assert.ErrorIs(t, err, pretty.ErrInvalidConfig)
}
