// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/input.go
// Summary: Input sources and their display names.

package input

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/framegrace/texelcat/defaults"
)

// Kind identifies the variant of a Source.
type Kind int

const (
	KindFile Kind = iota
	KindStdin
	KindString
	KindThemePreview
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindStdin:
		return "stdin"
	case KindString:
		return "string"
	case KindThemePreview:
		return "theme-preview"
	}
	return "unknown"
}

// Labels used in headers for inputs without a file name.
const (
	StdinLabel        = "STDIN"
	StringLabel       = "STRING"
	ThemePreviewLabel = "THEME PREVIEW"
)

// Source is an immutable description of one input.
type Source struct {
	kind    Kind
	path    string
	content []byte
	title   string
}

// File reads the named path.
func File(path string) Source { return Source{kind: KindFile, path: path} }

// Stdin reads the process standard input, or whatever reader is handed to
// Open.
func Stdin() Source { return Source{kind: KindStdin} }

// String prints in-memory content. A non-empty title is shown in the header
// and used for syntax detection as if it were a file name.
func String(content, title string) Source {
	return Source{kind: KindString, content: []byte(content), title: title}
}

// ThemePreview is the embedded sample program used to preview themes.
func ThemePreview() Source {
	return Source{kind: KindThemePreview, content: defaults.ThemePreview(), title: defaults.PreviewName}
}

// Kind returns the variant.
func (s Source) Kind() Kind { return s.kind }

// Path is the file path of a KindFile source.
func (s Source) Path() string { return s.path }

// DisplayName is the name shown in headers.
func (s Source) DisplayName() string {
	switch s.kind {
	case KindFile:
		return s.path
	case KindStdin:
		return StdinLabel
	case KindThemePreview:
		return ThemePreviewLabel
	}
	if s.title != "" {
		return s.title
	}
	return StringLabel
}

// Filename is the base name used for syntax detection, or "" when the source
// has none.
func (s Source) Filename() string {
	switch s.kind {
	case KindFile:
		return filepath.Base(s.path)
	case KindString, KindThemePreview:
		return s.title
	}
	return ""
}

// LineCount returns the number of lines of in-memory content. It reports
// false for files and standard input.
func (s Source) LineCount() (int, bool) {
	if s.kind != KindString && s.kind != KindThemePreview {
		return 0, false
	}
	n := bytes.Count(s.content, []byte{'\n'})
	if len(s.content) > 0 && s.content[len(s.content)-1] != '\n' {
		n++
	}
	return n, true
}

// Open starts reading the source. stdin is used for KindStdin; nil means
// os.Stdin.
func (s Source) Open(stdin io.Reader) (*Reader, error) {
	switch s.kind {
	case KindFile:
		f, err := os.Open(s.path)
		if err != nil {
			return nil, err
		}
		if info, err := f.Stat(); err == nil && info.IsDir() {
			f.Close()
			return nil, &os.PathError{Op: "read", Path: s.path, Err: errIsDirectory}
		}
		return newReader(f, f, false)
	case KindStdin:
		if stdin == nil {
			stdin = os.Stdin
		}
		return newReader(stdin, nil, isStream(stdin))
	default:
		return newReader(bytes.NewReader(s.content), nil, false)
	}
}

// isStream reports whether r is a pipe, socket or terminal rather than a
// regular file.
func isStream(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && !info.Mode().IsRegular()
}
