// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelcat/logging.go
// Summary: Routes the diagnostic log and label colours.

package main

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// setupLogging sends log output to path, or discards it when path is empty.
// The returned function closes the file.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return func() {
		log.SetOutput(io.Discard)
		file.Close()
	}, nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// applyLabelColor sets whether warning and error labels are coloured.
func applyLabelColor(mode string, stderr io.Writer) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(stderr) || os.Getenv("NO_COLOR") != ""
	}
}
