// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/diag/diag.go
// Summary: User-facing warnings and errors on the diagnostic stream.

package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	warnLabel  = color.New(color.FgYellow)
	errorLabel = color.New(color.FgRed, color.Bold)
)

// Warn writes a non-fatal warning line to w. A nil writer drops it.
func Warn(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	warnLabel.Fprint(w, "[texelcat warning]")
	fmt.Fprintf(w, ": "+format+"\n", args...)
}

// Error writes an error line to w. A nil writer drops it.
func Error(w io.Writer, err error) {
	if w == nil || err == nil {
		return
	}
	errorLabel.Fprint(w, "[texelcat error]")
	fmt.Fprintf(w, ": %v\n", err)
}
