// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelcat/main.go
// Summary: Entry point of the texelcat command.
// Usage: texelcat [flags] [FILE|-]...

package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/framegrace/texelcat/internal/diag"
)

func main() {
	ignoreBrokenPipe()
	if err := newRootCmd().Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			diag.Error(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// ignoreBrokenPipe turns SIGPIPE on stdout into EPIPE write errors, which
// the printer treats as the consumer going away.
func ignoreBrokenPipe() {
	signal.Ignore(syscall.SIGPIPE)
}

// reportedError marks failures already shown to the user while printing.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }
