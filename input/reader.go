// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: input/reader.go
// Summary: Line reader with first-line lookahead, UTF-16 transcoding and
// binary sniffing.

package input

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-enry/go-enry/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// SniffSize caps how many leading bytes are inspected for binary content.
const SniffSize = 8000

const bufferSize = 16 * 1024

var errIsDirectory = errors.New("is a directory")

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Reader yields the physical lines of a source. The first line is read
// ahead for syntax detection and replayed as the first ReadLine result.
type Reader struct {
	br     *bufio.Reader
	closer io.Closer

	first    []byte
	replayed bool
	binary   bool
	utf16    bool
	// stream is set for pipes and terminals, where more data may take
	// arbitrarily long to arrive.
	stream bool
}

func newReader(r io.Reader, closer io.Closer, stream bool) (*Reader, error) {
	rd := &Reader{closer: closer, stream: stream}
	br := bufio.NewReaderSize(r, bufferSize)

	if bom, _ := br.Peek(2); bytes.Equal(bom, bomUTF16LE) || bytes.Equal(bom, bomUTF16BE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		br = bufio.NewReaderSize(transform.NewReader(br, dec), bufferSize)
		rd.utf16 = true
	}
	rd.br = br

	first, err := br.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		rd.Close()
		return nil, fmt.Errorf("read: %w", err)
	}
	// Only what is already buffered is sniffed so a slow pipe is not
	// waited on.
	chunk := first
	if len(chunk) < SniffSize {
		ahead, _ := br.Peek(min(br.Buffered(), SniffSize-len(chunk)))
		chunk = append(append([]byte(nil), first...), ahead...)
	}
	rd.binary = len(chunk) > 0 && enry.IsBinary(chunk)
	rd.first = first
	return rd, nil
}

// FirstLine returns the first line including its terminator, or nil for
// empty input.
func (r *Reader) FirstLine() []byte { return r.first }

// Binary reports whether the content looks binary.
func (r *Reader) Binary() bool { return r.binary }

// Transcoded reports whether the input was UTF-16 and is being converted.
func (r *Reader) Transcoded() bool { return r.utf16 }

// ReadLine returns the next line including its "\n", if any. It returns
// io.EOF once the input is exhausted.
func (r *Reader) ReadLine() ([]byte, error) {
	if !r.replayed {
		r.replayed = true
		if len(r.first) > 0 {
			return r.first, nil
		}
		return nil, io.EOF
	}
	line, err := r.br.ReadBytes('\n')
	if len(line) > 0 {
		return line, nil
	}
	return nil, err
}

// Ready reports whether ReadLine can return a complete line without waiting
// on the underlying reader. Files and in-memory content are always ready.
func (r *Reader) Ready() bool {
	if !r.stream || !r.replayed {
		return true
	}
	buf, _ := r.br.Peek(r.br.Buffered())
	return bytes.IndexByte(buf, '\n') >= 0
}

// WriteTo copies everything not yet returned by ReadLine to w.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	if !r.replayed {
		r.replayed = true
		n, err := w.Write(r.first)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err := r.br.WriteTo(w)
	return total + n, err
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}
