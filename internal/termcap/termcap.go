// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/termcap/termcap.go
// Summary: Terminal capability probe: width, interactivity and colour depth.

package termcap

import (
	"log"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2/terminfo"
	_ "github.com/gdamore/tcell/v2/terminfo/extended" // registers the terminfo database
	"golang.org/x/term"

	"github.com/framegrace/texelcat/internal/ansi"
)

// Caps describes the terminal behind a file.
type Caps struct {
	Interactive bool
	Width       int
	Height      int
}

// Probe inspects f. A file that is not a terminal reports zero size.
func Probe(f *os.File) Caps {
	if f == nil {
		return Caps{}
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return Caps{}
	}
	caps := Caps{Interactive: true}
	w, h, err := term.GetSize(fd)
	if err != nil {
		log.Printf("Termcap: size of %s: %v", f.Name(), err)
		return caps
	}
	caps.Width, caps.Height = w, h
	return caps
}

// ColorLevel derives the colour depth from the environment. COLORTERM wins;
// otherwise the terminfo entry for TERM decides. Unknown terminals get 256
// colours.
func ColorLevel(getenv func(string) string) ansi.ColorMode {
	if getenv == nil {
		getenv = os.Getenv
	}
	switch strings.ToLower(getenv("COLORTERM")) {
	case "truecolor", "24bit":
		return ansi.ColorTrue
	}
	name := getenv("TERM")
	if name == "dumb" {
		return ansi.ColorNone
	}
	if name == "" {
		return ansi.Color256
	}
	ti, err := terminfo.LookupTerminfo(name)
	if err != nil {
		log.Printf("Termcap: no terminfo for %q: %v", name, err)
		return ansi.Color256
	}
	if ti.Colors >= 1<<24 {
		return ansi.ColorTrue
	}
	return ansi.Color256
}
