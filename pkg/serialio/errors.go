// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package serialio

import (
	"errors"
	"fmt"
)

var (
	ErrChecksum      = errors.New("checksum mismatch")
	ErrLineTooLong   = errors.New("line exceeds maximum length")
	ErrShortFrame    = errors.New("frame too short")
	ErrShortRecord   = errors.New("record too short")
	ErrRecordType    = errors.New("unexpected record type")
	ErrNotStatusLine = errors.New("not a status line")
)

// ParseError reports a malformed panel input line.
type ParseError struct {
	Line   string
	Token  string
	Reason string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("malformed input line %q: %s (token %q)", e.Line, e.Reason, e.Token)
	}
	return fmt.Sprintf("malformed input line %q: %s", e.Line, e.Reason)
}

// LineReadError reports a read failure part way through a line. The partial
// line is discarded.
type LineReadError struct {
	Partial int // bytes discarded
	Err     error
}

// Error implements the error interface
func (e *LineReadError) Error() string {
	return fmt.Sprintf("line read failed after %d bytes: %v", e.Partial, e.Err)
}

// Unwrap returns the underlying read error
func (e *LineReadError) Unwrap() error {
	return e.Err
}
