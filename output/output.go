// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: output/output.go
// Summary: Output routing: direct stream, diagnostic stream or a pager
// subprocess fed through a pipe.

package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/shlex"
)

// DefaultPager is used when no pager command is configured.
const DefaultPager = "less"

// PagingMode selects the sink.
type PagingMode int

const (
	// Always pipes everything through the pager.
	Always PagingMode = iota
	// QuitIfOneScreen pages interactive output, letting the pager exit at
	// once when the content fits the screen.
	QuitIfOneScreen
	// Never writes straight to standard output.
	Never
	// ErrorStreamOnly writes every rendered byte to the diagnostic stream.
	ErrorStreamOnly
)

func (m PagingMode) String() string {
	switch m {
	case Always:
		return "always"
	case QuitIfOneScreen:
		return "auto"
	case Never:
		return "never"
	case ErrorStreamOnly:
		return "stderr"
	}
	return fmt.Sprintf("PagingMode(%d)", int(m))
}

// ParsePagingMode accepts always, auto (or quit-if-one-screen), never and
// stderr (or error-stream).
func ParsePagingMode(s string) (PagingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "always":
		return Always, nil
	case "auto", "quit-if-one-screen":
		return QuitIfOneScreen, nil
	case "never":
		return Never, nil
	case "stderr", "error-stream":
		return ErrorStreamOnly, nil
	}
	return 0, fmt.Errorf("unknown paging mode %q", s)
}

// ErrBrokenPipe is reported when the consumer went away mid-write.
var ErrBrokenPipe = errors.New("broken pipe")

// ErrPagerSpawn wraps failures to start the pager.
var ErrPagerSpawn = errors.New("cannot start pager")

// IsBrokenPipe reports whether err means the reading end has closed.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, ErrBrokenPipe) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, os.ErrClosed)
}

// Options configures Open.
type Options struct {
	Mode PagingMode
	// Pager is the command line of the pager; "" means DefaultPager.
	Pager string
	// Interactive tells whether Stdout is a terminal.
	Interactive bool

	Stdout io.Writer
	Stderr io.Writer
}

// Output owns the sink for one run. It must be closed on every path.
type Output struct {
	w      *bufio.Writer
	pipe   io.WriteCloser
	cmd    *exec.Cmd
	paged  bool
	closed bool
}

// Open selects and prepares the sink. A pager that cannot be started is an
// error wrapping ErrPagerSpawn; nothing has been written at that point.
func Open(opts Options) (*Output, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	switch opts.Mode {
	case ErrorStreamOnly:
		return direct(opts.Stderr), nil
	case Never:
		return direct(opts.Stdout), nil
	case QuitIfOneScreen:
		if !opts.Interactive {
			return direct(opts.Stdout), nil
		}
	}
	return spawn(opts)
}

func direct(w io.Writer) *Output {
	return &Output{w: bufio.NewWriter(w)}
}

// PagerArgs splits the pager command line and adds the flags less needs to
// show colours, and to quit on short input when mode asks for it.
func PagerArgs(command string, mode PagingMode) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultPager
	}
	args, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %q: %v", ErrPagerSpawn, command, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrPagerSpawn)
	}
	if filepath.Base(args[0]) == "less" && len(args) == 1 {
		args = append(args, "--RAW-CONTROL-CHARS")
		if mode == QuitIfOneScreen {
			args = append(args, "--quit-if-one-screen", "--no-init")
		}
	}
	return args, nil
}

func spawn(opts Options) (*Output, error) {
	args, err := PagerArgs(opts.Pager, opts.Mode)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Env = append(os.Environ(), "LESSCHARSET=UTF-8")
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	pipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPagerSpawn, args[0], err)
	}
	if err := cmd.Start(); err != nil {
		pipe.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrPagerSpawn, args[0], err)
	}
	log.Printf("Output: paging through %q", strings.Join(args, " "))
	return &Output{w: bufio.NewWriter(pipe), pipe: pipe, cmd: cmd, paged: true}, nil
}

// Writer is the buffered sink. Write errors after the pager quit satisfy
// IsBrokenPipe.
func (o *Output) Writer() io.Writer { return o.w }

// Paged reports whether output goes through a pager.
func (o *Output) Paged() bool { return o.paged }

// Flush pushes buffered bytes to the sink.
func (o *Output) Flush() error { return o.w.Flush() }

// Close flushes, closes the pipe and waits for the pager to exit. A consumer
// that closed early is not an error.
func (o *Output) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true

	err := o.w.Flush()
	if IsBrokenPipe(err) {
		err = nil
	}
	if o.pipe != nil {
		if cerr := o.pipe.Close(); cerr != nil && err == nil && !IsBrokenPipe(cerr) {
			err = cerr
		}
	}
	if o.cmd != nil {
		if werr := o.cmd.Wait(); werr != nil {
			var exitErr *exec.ExitError
			if errors.As(werr, &exitErr) {
				log.Printf("Output: pager exited: %v", werr)
			} else if err == nil {
				err = werr
			}
		}
	}
	return err
}
