// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"fmt"
	"io"
	"strings"
)

// LineReader decodes newline-terminated text lines from a byte stream.
type LineReader struct {
	r   io.Reader
	buf [1]byte

	// set after ErrLineTooLong until the rest of that line is consumed
	discarding bool
}

// NewLineReader creates a line reader over r. Reads are one byte at a time
// so no bytes past the newline are consumed.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: r}
}

// ReadLine returns the next line without its terminator.
//
// A line longer than MaxLineLength returns ErrLineTooLong, and the next call
// skips the rest of that line before collecting a new one. A read failure
// returns a *LineReadError and the partial line is dropped.
func (l *LineReader) ReadLine() (string, error) {
	for l.discarding {
		n, err := l.r.Read(l.buf[:])
		if n == 1 {
			if l.buf[0] == '\n' {
				l.discarding = false
			}
			continue
		}
		if err != nil {
			return "", &LineReadError{Err: err}
		}
	}

	var sb strings.Builder

	for sb.Len() < MaxLineLength {
		n, err := l.r.Read(l.buf[:])
		if n == 1 {
			if l.buf[0] == '\n' {
				return strings.TrimSuffix(sb.String(), "\r"), nil
			}
			sb.WriteByte(l.buf[0])
			continue
		}
		if err != nil {
			return "", &LineReadError{Partial: sb.Len(), Err: err}
		}
	}

	l.discarding = true
	return "", fmt.Errorf("%w: %d bytes without newline", ErrLineTooLong, sb.Len())
}
