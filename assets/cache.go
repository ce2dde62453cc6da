// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: assets/cache.go
// Summary: SQLite-backed cache files holding serialized syntax and theme
// definitions.

package assets

import (
	"bytes"
	"database/sql"
	"encoding/xml"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	_ "modernc.org/sqlite"
)

// Cache file names inside the cache directory.
const (
	SyntaxCacheFile = "syntaxes.bin"
	ThemeCacheFile  = "themes.bin"
)

const cacheSchemaVersion = 1

const cacheSchema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS definitions (
    name TEXT PRIMARY KEY,
    body BLOB NOT NULL
);
`

const (
	kindSyntaxes = "syntaxes"
	kindThemes   = "themes"
)

var errCacheMissing = errors.New("cache file missing")

// DefaultCacheDir is the per-user cache location.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "texelcat"), nil
}

func openCache(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}
	return db, nil
}

// readDefinitions returns the rows of a cache file after checking its kind
// and schema version.
func readDefinitions(path, kind string) (map[string][]byte, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errCacheMissing
		}
		return nil, err
	}
	db, err := openCache(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var gotKind string
	var version int
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'kind'`).Scan(&gotKind); err != nil {
		return nil, fmt.Errorf("read cache kind: %w", err)
	}
	if err := db.QueryRow(`SELECT CAST(value AS INTEGER) FROM meta WHERE key = 'schema_version'`).Scan(&version); err != nil {
		return nil, fmt.Errorf("read cache version: %w", err)
	}
	if gotKind != kind || version != cacheSchemaVersion {
		return nil, fmt.Errorf("cache %s is %s v%d, want %s v%d", path, gotKind, version, kind, cacheSchemaVersion)
	}

	rows, err := db.Query(`SELECT name, body FROM definitions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}
	defer rows.Close()

	defs := make(map[string][]byte)
	for rows.Next() {
		var name string
		var body []byte
		if err := rows.Scan(&name, &body); err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		defs[name] = body
	}
	return defs, rows.Err()
}

func readSyntaxCache(path string) (*chroma.LexerRegistry, error) {
	defs, err := readDefinitions(path, kindSyntaxes)
	if err != nil {
		return nil, err
	}
	reg := chroma.NewLexerRegistry()
	for name, body := range defs {
		lexer, err := chroma.Unmarshal(body)
		if err != nil {
			log.Printf("Assets: cached syntax %q unusable: %v", name, err)
			continue
		}
		reg.Register(lexer)
	}
	return reg, nil
}

func readThemeCache(path string) ([]*chroma.Style, error) {
	defs, err := readDefinitions(path, kindThemes)
	if err != nil {
		return nil, err
	}
	themes := make([]*chroma.Style, 0, len(defs))
	for name, body := range defs {
		style, err := chroma.NewXMLStyle(bytes.NewReader(body))
		if err != nil {
			log.Printf("Assets: cached theme %q unusable: %v", name, err)
			continue
		}
		themes = append(themes, style)
	}
	return themes, nil
}

// writeDefinitions replaces path with a fresh cache file.
func writeDefinitions(path, kind string, defs map[string][]byte) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	db, err := openCache(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(cacheSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('kind', ?), ('schema_version', ?)`,
		kind, fmt.Sprint(cacheSchemaVersion)); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO definitions (name, body) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for name, body := range defs {
		if _, err := stmt.Exec(name, body); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// WriteCache dumps the provider's effective syntax and theme sets into dir.
// Lexers that chroma cannot serialize are skipped; they remain available from
// the bundled set.
func WriteCache(dir string, p *Provider) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	syntaxes := make(map[string][]byte)
	skipped := 0
	for _, l := range p.lexers() {
		rl, ok := l.(*chroma.RegexLexer)
		if !ok {
			skipped++
			continue
		}
		body, err := marshalLexer(rl)
		if err != nil {
			log.Printf("Assets: cannot serialize %s: %v", rl.Config().Name, err)
			skipped++
			continue
		}
		syntaxes[rl.Config().Name] = body
	}
	if skipped > 0 {
		log.Printf("Assets: %d syntaxes not cached", skipped)
	}

	themes := make(map[string][]byte, len(p.themes))
	for name, style := range p.themes {
		body, err := xml.Marshal(style)
		if err != nil {
			return fmt.Errorf("serialize theme %s: %w", name, err)
		}
		themes[name] = body
	}

	if err := writeDefinitions(filepath.Join(dir, SyntaxCacheFile), kindSyntaxes, syntaxes); err != nil {
		return fmt.Errorf("write syntax cache: %w", err)
	}
	if err := writeDefinitions(filepath.Join(dir, ThemeCacheFile), kindThemes, themes); err != nil {
		return fmt.Errorf("write theme cache: %w", err)
	}
	return nil
}

// ClearCache removes the cache files from dir. Missing files are fine.
func ClearCache(dir string) error {
	var errs []error
	for _, name := range []string{SyntaxCacheFile, ThemeCacheFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func marshalLexer(l *chroma.RegexLexer) (body []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("marshal panicked: %v", r)
		}
	}()
	return chroma.Marshal(l)
}
